package content

import (
	"context"
	"fmt"
)

// StoreError wraps any failure from a collection operation: a transport
// error, a server-side policy denial, or a missing row on update/delete.
type StoreError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ValidationError is raised locally, before any backend call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type ctxKey string

const actorKey ctxKey = "actor"

// WithActor attaches the caller's session token to the context. The backend
// authorizes mutations against it.
func WithActor(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, actorKey, token)
}

// ActorToken returns the session token attached by WithActor, if any.
func ActorToken(ctx context.Context) string {
	if token, ok := ctx.Value(actorKey).(string); ok {
		return token
	}
	return ""
}
