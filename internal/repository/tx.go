package repository

import (
	"context"
	"database/sql"
	"fmt"
	"vct-survivor/internal/db"
)

// inTx runs fn inside a transaction. With _txlock=immediate the write lock is
// taken at BEGIN, so concurrent writers wait on busy_timeout.
func inTx(ctx context.Context, sqlDB *sql.DB, queries *db.Queries, fn func(*db.Queries) error) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(queries.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit()
}
