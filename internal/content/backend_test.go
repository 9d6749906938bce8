package content

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// fakeBackend is an in-memory Backend that counts round trips, so tests can
// assert which operations did (or did not) reach the store.
type fakeBackend struct {
	mu     sync.Mutex
	nextID int
	rows   map[Kind][]Row
	calls  map[string]int
	fail   error // when set, every operation fails with it
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		rows:  make(map[Kind][]Row),
		calls: make(map[string]int),
	}
}

func (f *fakeBackend) count(op string) {
	f.calls[op]++
	f.calls["total"]++
}

func (f *fakeBackend) SelectAll(_ context.Context, kind Kind) ([]Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("select")
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]Row, len(f.rows[kind]))
	for i, r := range f.rows[kind] {
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out[i] = cp
	}
	sort.SliceStable(out, func(i, j int) bool {
		return num(out[i], "sort_order") < num(out[j], "sort_order")
	})
	return out, nil
}

func (f *fakeBackend) Insert(_ context.Context, kind Kind, row Row) (Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("insert")
	if f.fail != nil {
		return nil, f.fail
	}
	f.nextID++
	cp := make(Row, len(row)+1)
	for k, v := range row {
		cp[k] = v
	}
	cp["id"] = fmt.Sprintf("id-%d", f.nextID)
	f.rows[kind] = append(f.rows[kind], cp)
	return cp, nil
}

func (f *fakeBackend) Update(_ context.Context, kind Kind, id string, row Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("update")
	if f.fail != nil {
		return f.fail
	}
	for i, r := range f.rows[kind] {
		if r["id"] == id {
			cp := make(Row, len(row)+1)
			for k, v := range row {
				cp[k] = v
			}
			cp["id"] = id
			f.rows[kind][i] = cp
			return nil
		}
	}
	return &StoreError{Kind: kind, Op: "update", Err: fmt.Errorf("no row %q", id)}
}

func (f *fakeBackend) Delete(_ context.Context, kind Kind, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count("delete")
	if f.fail != nil {
		return f.fail
	}
	for i, r := range f.rows[kind] {
		if r["id"] == id {
			f.rows[kind] = append(f.rows[kind][:i], f.rows[kind][i+1:]...)
			return nil
		}
	}
	return &StoreError{Kind: kind, Op: "delete", Err: fmt.Errorf("no row %q", id)}
}
