// Package reqid carries a per-request identifier through contexts.
package reqid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header used to propagate request ids.
const Header = "X-Request-Id"

// key is the context key for the request ID.
type key struct{}

// entry is allocated once per WithID call, so its address tells requests
// apart even when clients send the same id.
type entry struct{ id string }

// NewContext returns a copy of parent with a new random request ID stored.
// It also returns the generated ID.
func NewContext(parent context.Context) (context.Context, string) {
	id := uuid.NewString()
	return WithID(parent, id), id
}

// WithID stores a caller supplied id, such as one received in Header.
func WithID(parent context.Context, id string) context.Context {
	return context.WithValue(parent, key{}, &entry{id: id})
}

// FromContext extracts the request ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (string, bool) {
	e, ok := ctx.Value(key{}).(*entry)
	if !ok {
		return "", false
	}
	return e.id, true
}

// Scope returns a comparable value naming the request stored in ctx. Each
// WithID or NewContext call yields a distinct scope, even for equal ids.
func Scope(ctx context.Context) (any, bool) {
	e, ok := ctx.Value(key{}).(*entry)
	if !ok {
		return nil, false
	}
	return e, true
}
