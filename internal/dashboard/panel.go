package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/saltware/website/internal/content"
)

// ListItem is one row of a panel's list view.
type ListItem struct {
	ID    string
	Label string
	Sub   string
}

// FormField is one input of the active edit form.
type FormField struct {
	Name     string
	Label    string
	Value    string
	Textarea bool
}

// Panel is one collection's slice of the dashboard: its cached list plus at
// most one edit session.
type Panel interface {
	Kind() content.Kind
	Reload(ctx context.Context) error
	Items() []ListItem
	BeginCreate()
	BeginEdit(id string) error
	Editing() bool
	IsNew() bool
	Form() []FormField
	SetField(name, value string)
	Commit(ctx context.Context) error
	Cancel()
	Delete(ctx context.Context, id string) error
}

type panel[T content.Record] struct {
	log    *zap.Logger
	col    content.Collection[T]
	client *content.Client[T]
	cache  *content.Cache[T]

	mu   sync.Mutex
	edit *content.EditSession[T]
}

func newPanel[T content.Record](backend content.Backend, col content.Collection[T], log *zap.Logger) *panel[T] {
	client := content.NewClient(backend, col)
	return &panel[T]{log: log, col: col, client: client, cache: content.NewCache(client)}
}

func (p *panel[T]) Kind() content.Kind { return p.col.Kind }

func (p *panel[T]) Reload(ctx context.Context) error {
	return p.cache.Reload(ctx)
}

func (p *panel[T]) Items() []ListItem {
	items := p.cache.Items()
	out := make([]ListItem, 0, len(items))
	for _, it := range items {
		label, sub := p.col.Display(it)
		out = append(out, ListItem{ID: it.RecordID(), Label: label, Sub: sub})
	}
	return out
}

// BeginCreate opens a fresh draft, silently discarding any unsaved one. The
// rank defaults to the current list length plus one.
func (p *panel[T]) BeginCreate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edit = content.BeginCreate(p.col, p.cache.Len()+1)
}

// BeginEdit opens a draft over the cached record at id, discarding any
// unsaved draft. Editing a record the cache has never seen is an error.
func (p *panel[T]) BeginEdit(id string) error {
	for _, it := range p.cache.Items() {
		if it.RecordID() == id {
			p.mu.Lock()
			p.edit = content.BeginEdit(p.col, it)
			p.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("%s: no record %q", p.col.Kind, id)
}

func (p *panel[T]) Editing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edit != nil
}

func (p *panel[T]) IsNew() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edit != nil && p.edit.Mode() == content.ModeNew
}

func (p *panel[T]) Form() []FormField {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.edit == nil {
		return nil
	}
	row := p.col.Encode(p.edit.Draft())
	fields := make([]FormField, 0, len(p.col.Fields))
	for _, f := range p.col.Fields {
		fields = append(fields, FormField{
			Name:     f.Column,
			Label:    f.Label,
			Value:    formValue(row[f.Column]),
			Textarea: f.Textarea,
		})
	}
	return fields
}

func (p *panel[T]) SetField(name, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.edit != nil {
		p.edit.SetField(name, value)
	}
}

// Commit pushes the active draft and, on success, drops the session and
// reloads the list. A failed reload keeps the stale list; the commit itself
// still counts.
func (p *panel[T]) Commit(ctx context.Context) error {
	p.mu.Lock()
	edit := p.edit
	p.mu.Unlock()
	if edit == nil {
		return errors.New("no active edit")
	}
	if err := edit.Commit(ctx, p.client); err != nil {
		return err
	}
	p.mu.Lock()
	p.edit = nil
	p.mu.Unlock()
	p.reload(ctx, "commit")
	return nil
}

// Cancel discards the draft unconditionally.
func (p *panel[T]) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edit = nil
}

// Delete removes the record and reloads the list.
func (p *panel[T]) Delete(ctx context.Context, id string) error {
	if err := p.client.Delete(ctx, id); err != nil {
		return err
	}
	p.reload(ctx, "delete")
	return nil
}

func (p *panel[T]) reload(ctx context.Context, after string) {
	if err := p.cache.Reload(ctx); err != nil {
		p.log.Warn("list reload failed",
			zap.String("collection", string(p.col.Kind)),
			zap.String("after", after),
			zap.Error(err))
	}
}

func formValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}
