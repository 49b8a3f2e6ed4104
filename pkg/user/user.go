package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

// OwnerKey carries the acting owner's id through the request context.
// Authentication itself happens upstream; the API only receives the
// already-resolved identity via the X-User-Id header.
const OwnerKey contextKey = "owner"

var ErrNoOwner = errors.New("owner not found")

// CurrentId retrieves the current owner's ID from the context. Returns ErrNoOwner if not present.
func CurrentId(ctx context.Context) (int, error) {
	id, ok := ctx.Value(OwnerKey).(int)
	if !ok {
		log.Trace("owner not found in context")
		return 0, ErrNoOwner
	}
	return id, nil
}

func WithOwner(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, OwnerKey, id)
}
