package content

import "context"

// Client is a thin typed accessor over one collection. Every call is a live
// round trip to the backend; caching belongs to Cache.
type Client[T Record] struct {
	backend Backend
	col     Collection[T]
}

func NewClient[T Record](backend Backend, col Collection[T]) *Client[T] {
	return &Client[T]{backend: backend, col: col}
}

// List returns the collection ordered by rank ascending. An empty collection
// is an empty, non-nil slice.
func (c *Client[T]) List(ctx context.Context) ([]T, error) {
	rows, err := c.backend.SelectAll(ctx, c.col.Kind)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, c.col.Decode(r))
	}
	return out, nil
}

// Insert creates the record and returns it with its store-assigned identity.
func (c *Client[T]) Insert(ctx context.Context, rec T) (T, error) {
	row, err := c.backend.Insert(ctx, c.col.Kind, c.col.Encode(rec))
	if err != nil {
		var zero T
		return zero, err
	}
	return c.col.Decode(row), nil
}

// Update replaces the record at id wholesale with rec.
func (c *Client[T]) Update(ctx context.Context, id string, rec T) error {
	return c.backend.Update(ctx, c.col.Kind, id, c.col.Encode(rec))
}

func (c *Client[T]) Delete(ctx context.Context, id string) error {
	return c.backend.Delete(ctx, c.col.Kind, id)
}
