package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saltware/website/internal/content"
)

// Compile-time contract assertion: the store is the content backend.
var _ content.Backend = (*Store)(nil)

var (
	// ErrUnauthorized is returned when a mutation lacks an admin session.
	// The check runs here, server-side, regardless of any client state.
	ErrUnauthorized = errors.New("administrator session required")
	// ErrNotFound is returned when an update or delete matches no row.
	ErrNotFound = errors.New("record not found")
)

// tables lists the editable columns per collection, in form order. The Kind
// doubles as the table name and is validated against this registry before it
// reaches any query string.
var tables = map[content.Kind][]string{
	content.KindServices:   {"icon", "title", "description", "sort_order"},
	content.KindEmployees:  {"name", "position", "photo_url", "sort_order"},
	content.KindProjects:   {"title", "description", "image_url", "link", "sort_order"},
	content.KindIndustries: {"icon", "title", "sort_order"},
	content.KindStats:      {"value", "label", "sort_order"},
}

// SelectAll returns every row of the collection ordered by sort_order
// ascending. Reads are public.
func (s *Store) SelectAll(ctx context.Context, kind content.Kind) ([]content.Row, error) {
	cols, ok := tables[kind]
	if !ok {
		return nil, s.fail(kind, "select", fmt.Errorf("unknown collection %q", kind))
	}
	opsTotal.WithLabelValues(string(kind), "select").Inc()

	q := fmt.Sprintf("SELECT id, %s FROM %s ORDER BY sort_order", strings.Join(cols, ", "), kind)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, s.fail(kind, "select", err)
	}
	defer rows.Close()

	all := append([]string{"id"}, cols...)
	out := []content.Row{}
	for rows.Next() {
		vals := make([]any, len(all))
		ptrs := make([]any, len(all))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, s.fail(kind, "select", err)
		}
		row := make(content.Row, len(all))
		for i, c := range all {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(kind, "select", err)
	}
	return out, nil
}

// Insert creates a row with a store-assigned uuid and returns it.
func (s *Store) Insert(ctx context.Context, kind content.Kind, row content.Row) (content.Row, error) {
	cols, ok := tables[kind]
	if !ok {
		return nil, s.fail(kind, "insert", fmt.Errorf("unknown collection %q", kind))
	}
	opsTotal.WithLabelValues(string(kind), "insert").Inc()
	if err := s.requireAdmin(ctx); err != nil {
		return nil, s.fail(kind, "insert", err)
	}

	id := uuid.NewString()
	args := make([]any, 0, len(cols)+1)
	args = append(args, id)
	for _, c := range cols {
		args = append(args, row[c])
	}
	q := fmt.Sprintf("INSERT INTO %s (id, %s) VALUES (%s)",
		kind, strings.Join(cols, ", "), placeholders(len(cols)+1))
	if _, err := s.db.ExecContext(ctx, s.rebind(q), args...); err != nil {
		return nil, s.fail(kind, "insert", err)
	}

	created := make(content.Row, len(row)+1)
	for k, v := range row {
		created[k] = v
	}
	created["id"] = id
	return created, nil
}

// Update replaces every editable column of the row at id.
func (s *Store) Update(ctx context.Context, kind content.Kind, id string, row content.Row) error {
	cols, ok := tables[kind]
	if !ok {
		return s.fail(kind, "update", fmt.Errorf("unknown collection %q", kind))
	}
	opsTotal.WithLabelValues(string(kind), "update").Inc()
	if err := s.requireAdmin(ctx); err != nil {
		return s.fail(kind, "update", err)
	}

	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for _, c := range cols {
		sets = append(sets, c+" = ?")
		args = append(args, row[c])
	}
	args = append(args, id)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", kind, strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, s.rebind(q), args...)
	if err != nil {
		return s.fail(kind, "update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.fail(kind, "update", ErrNotFound)
	}
	return nil
}

// Delete removes the row at id. A missing id is an error, not a no-op.
func (s *Store) Delete(ctx context.Context, kind content.Kind, id string) error {
	if _, ok := tables[kind]; !ok {
		return s.fail(kind, "delete", fmt.Errorf("unknown collection %q", kind))
	}
	opsTotal.WithLabelValues(string(kind), "delete").Inc()
	if err := s.requireAdmin(ctx); err != nil {
		return s.fail(kind, "delete", err)
	}

	q := fmt.Sprintf("DELETE FROM %s WHERE id = ?", kind)
	res, err := s.db.ExecContext(ctx, s.rebind(q), id)
	if err != nil {
		return s.fail(kind, "delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.fail(kind, "delete", ErrNotFound)
	}
	return nil
}

// requireAdmin resolves the actor token from the context and checks the
// administrator role against a live, unexpired session.
func (s *Store) requireAdmin(ctx context.Context) error {
	token := content.ActorToken(ctx)
	if token == "" {
		return ErrUnauthorized
	}
	var role string
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT u.role FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.token = ? AND s.expires_at > ?`),
		token, time.Now().Unix()).Scan(&role)
	if err != nil || role != "admin" {
		return ErrUnauthorized
	}
	return nil
}

func (s *Store) fail(kind content.Kind, op string, err error) error {
	opErrors.WithLabelValues(string(kind), op).Inc()
	return &content.StoreError{Kind: kind, Op: op, Err: err}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
