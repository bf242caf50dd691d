package shared

import (
	"context"
	"time"
)

// Transactor runs fn inside a ledger transaction carried by the context passed
// to fn. Nested calls join the outer transaction. Returning an error rolls the
// whole unit back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock returns the current instant. Services default to time.Now when unset.
type Clock func() time.Time
