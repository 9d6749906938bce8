package content

import (
	"context"
	"strings"
)

// Mode discriminates a draft for a brand-new record from one editing an
// existing row.
type Mode int

const (
	ModeNew Mode = iota
	ModeExisting
)

// EditSession is a single mutable draft: the full candidate record for
// either "create new" or "edit existing". Field edits touch only the draft;
// nothing reaches the backend until Commit.
type EditSession[T Record] struct {
	col   Collection[T]
	mode  Mode
	id    string // identity under edit, empty in ModeNew
	draft T
}

// BeginCreate opens a session for a new record with the collection's default
// field values at the given rank.
func BeginCreate[T Record](col Collection[T], rank int) *EditSession[T] {
	return &EditSession[T]{col: col, mode: ModeNew, draft: col.New(rank)}
}

// BeginEdit opens a session over a copy of an existing record.
func BeginEdit[T Record](col Collection[T], rec T) *EditSession[T] {
	return &EditSession[T]{col: col, mode: ModeExisting, id: rec.RecordID(), draft: rec}
}

func (s *EditSession[T]) Mode() Mode { return s.mode }

func (s *EditSession[T]) Draft() T { return s.draft }

// SetField writes one form field into the draft, coercing numeric columns.
func (s *EditSession[T]) SetField(column, value string) {
	s.col.Set(&s.draft, column, value)
}

// Validate checks required fields. It never touches the backend.
func (s *EditSession[T]) Validate() error {
	row := s.col.Encode(s.draft)
	for _, f := range s.col.Fields {
		if !f.Required {
			continue
		}
		if v, _ := row[f.Column].(string); strings.TrimSpace(v) == "" {
			return &ValidationError{Message: f.Label + " is required"}
		}
	}
	return nil
}

// Commit pushes the draft: insert in ModeNew, full-record update otherwise.
// On error the session stays usable so the user can fix the draft and retry;
// the owner clears it only when Commit returns nil.
func (s *EditSession[T]) Commit(ctx context.Context, client *Client[T]) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.mode == ModeNew {
		_, err := client.Insert(ctx, s.draft)
		return err
	}
	return client.Update(ctx, s.id, s.draft)
}
