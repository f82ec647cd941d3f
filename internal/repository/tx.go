package repository

import (
	"context"
	"database/sql"

	"store_service/internal/domain"

	"github.com/sirupsen/logrus"
)

// runTx is the single transaction primitive shared by every repository:
// begin, run fn, roll back on error or panic, commit otherwise. A
// transaction is never left open.
func runTx(ctx context.Context, db *sql.DB, log *logrus.Logger, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Errorf("Failed to begin transaction: %v", err)
		return &domain.PersistenceError{Op: "begin", Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			log.Error("Recovered from panic, rolling back transaction")
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Errorf("Failed to rollback transaction: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Errorf("Failed to commit transaction: %v", err)
		return &domain.PersistenceError{Op: "commit", Err: err}
	}
	return nil
}

// rowsAffected verifies that a mutation touched exactly the intended row.
// Zero affected rows means the id does not exist.
func rowsAffected(result sql.Result, entity string, id int, log *logrus.Logger) error {
	n, err := result.RowsAffected()
	if err != nil {
		log.Errorf("Failed to read rows affected for %s id %d: %v", entity, id, err)
		return &domain.PersistenceError{Op: "rows affected", Err: err}
	}
	if n == 0 {
		log.Warnf("No rows affected for %s id %d", entity, id)
		return domain.NewNotFoundError(entity, id)
	}
	return nil
}
