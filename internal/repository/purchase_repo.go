package repository

import (
	"context"
	"database/sql"
	"errors"

	"store_service/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresPurchaseRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresPurchaseRepository(db *sql.DB, logger *logrus.Logger) domain.PurchaseRepository {
	return &postgresPurchaseRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresPurchaseRepository) CreatePurchase(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error) {
	created := &domain.Purchase{}
	err := runTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		var id int
		err := tx.QueryRowContext(ctx,
			`INSERT INTO compras (idUsuario, idProducto) VALUES ($1, $2) RETURNING idCompra`,
			purchase.UserID, purchase.ProductID).Scan(&id)
		if err != nil {
			return r.mapWriteError("create", err)
		}
		return tx.QueryRowContext(ctx,
			`SELECT idCompra, idUsuario, idProducto FROM compras WHERE idCompra = $1`,
			id).Scan(&created.ID, &created.UserID, &created.ProductID)
	})
	if err != nil {
		return nil, wrapUnclassified("create purchase", err)
	}
	r.log.Infof("Purchase created successfully with ID: %d (user %d, product %d)",
		created.ID, created.UserID, created.ProductID)
	return created, nil
}

func (r *postgresPurchaseRepository) GetPurchaseByID(ctx context.Context, id int) (*domain.Purchase, error) {
	purchase := &domain.Purchase{}
	err := r.db.QueryRowContext(ctx,
		`SELECT idCompra, idUsuario, idProducto FROM compras WHERE idCompra = $1`,
		id).Scan(&purchase.ID, &purchase.UserID, &purchase.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Purchase with ID %d not found", id)
			return nil, domain.NewNotFoundError("purchase", id)
		}
		r.log.Errorf("Failed to get purchase by ID %d: %v", id, err)
		return nil, &domain.PersistenceError{Op: "get purchase", Err: err}
	}
	return purchase, nil
}

func (r *postgresPurchaseRepository) UpdatePurchase(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error) {
	updated := &domain.Purchase{}
	err := runTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE compras SET idUsuario = $1, idProducto = $2 WHERE idCompra = $3`,
			purchase.UserID, purchase.ProductID, purchase.ID)
		if err != nil {
			return r.mapWriteError("update", err)
		}
		if err := rowsAffected(result, "purchase", purchase.ID, r.log); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx,
			`SELECT idCompra, idUsuario, idProducto FROM compras WHERE idCompra = $1`,
			purchase.ID).Scan(&updated.ID, &updated.UserID, &updated.ProductID)
	})
	if err != nil {
		return nil, wrapUnclassified("update purchase", err)
	}
	r.log.Infof("Purchase updated successfully with ID: %d", updated.ID)
	return updated, nil
}

func (r *postgresPurchaseRepository) DeletePurchase(ctx context.Context, id int) error {
	err := runTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM compras WHERE idCompra = $1`, id)
		if err != nil {
			r.log.Errorf("Failed to delete purchase ID %d: %v", id, err)
			return &domain.PersistenceError{Op: "delete purchase", Err: err}
		}
		return rowsAffected(result, "purchase", id, r.log)
	})
	if err != nil {
		return wrapUnclassified("delete purchase", err)
	}
	r.log.Infof("Purchase deleted successfully with ID: %d", id)
	return nil
}

func (r *postgresPurchaseRepository) ListPurchases(ctx context.Context) ([]domain.Purchase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT idCompra, idUsuario, idProducto FROM compras ORDER BY idCompra ASC`)
	if err != nil {
		r.log.Errorf("Failed to list purchases: %v", err)
		return nil, &domain.PersistenceError{Op: "list purchases", Err: err}
	}
	defer rows.Close()

	purchases := []domain.Purchase{}
	for rows.Next() {
		var purchase domain.Purchase
		if err := rows.Scan(&purchase.ID, &purchase.UserID, &purchase.ProductID); err != nil {
			r.log.Errorf("Failed to scan purchase row: %v", err)
			return nil, &domain.PersistenceError{Op: "scan purchase", Err: err}
		}
		purchases = append(purchases, purchase)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during purchases list iteration: %v", err)
		return nil, &domain.PersistenceError{Op: "iterate purchases", Err: err}
	}
	return purchases, nil
}

func (r *postgresPurchaseRepository) mapWriteError(op string, err error) error {
	if pqErr, ok := asPQError(err); ok && pqErr.Code == "23503" {
		r.log.Warnf("Purchase %s referenced a non-existent user or product: %s", op, pqErr.Detail)
		return domain.NewValidationError("referenced user or product does not exist")
	}
	r.log.Errorf("Failed to %s purchase: %v", op, err)
	return &domain.PersistenceError{Op: op + " purchase", Err: err}
}
