package graphs

import (
	"context"
	"errors"
	"fmt"
)

// Opener creates a graph store connection.
type Opener func(ctx context.Context) (GraphStore, error)

// Use opens a store, verifies connectivity and runs fn with it. The store is
// closed exactly once on every path, including when fn fails or panics. A
// close error is joined with the error of fn.
//
// Errors from open are returned as is; openers wrap ErrConnectivity
// themselves when the server cannot be reached. A failed VerifyConnectivity
// always yields ErrConnectivity.
func Use(ctx context.Context, open Opener, fn func(ctx context.Context, store GraphStore) error) (err error) {
	store, err := open(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close graph store: %w", closeErr))
		}
	}()

	if err := store.VerifyConnectivity(ctx); err != nil {
		if errors.Is(err, ErrConnectivity) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrConnectivity, err)
	}

	return fn(ctx, store)
}
