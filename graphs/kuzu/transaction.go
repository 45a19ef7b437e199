package kuzu

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ExecTx runs statements in a single manual transaction and rolls it back on
// the first failure or when ctx is done. The connection is held for the whole
// transaction, so concurrent queries wait for it to finish.
func (k *Kuzu) ExecTx(ctx context.Context, statements ...string) error {
	k.queryMux.Lock()
	defer k.queryMux.Unlock()

	if _, err := k.run("BEGIN TRANSACTION", nil, 0); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i, stmt := range statements {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return errors.Join(err, k.rollback())
		}
		if _, err := k.run(stmt, nil, 0); err != nil {
			return errors.Join(fmt.Errorf("statement %d: %w", i+1, err), k.rollback())
		}
	}

	if _, err := k.run("COMMIT", nil, 0); err != nil {
		return errors.Join(fmt.Errorf("failed to commit transaction: %w", err), k.rollback())
	}
	return nil
}

func (k *Kuzu) rollback() error {
	if _, err := k.run("ROLLBACK", nil, 0); err != nil {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}
