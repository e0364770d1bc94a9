package user

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("user not found")

// Summary is the denormalized projection of a user embedded in order
// responses: just enough to render who placed the order.
type Summary struct {
	ID       string
	UserName string
	Email    string
}

// Repository defines the read-only user lookups the order core depends on.
type Repository interface {
	GetSummary(ctx context.Context, id string) (*Summary, error)
}
