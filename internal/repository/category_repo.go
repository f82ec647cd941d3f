package repository

import (
	"context"
	"database/sql"
	"errors"

	"store_service/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresCategoryRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCategoryRepository(db *sql.DB, logger *logrus.Logger) domain.CategoryRepository {
	return &postgresCategoryRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCategoryRepository) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	created := &domain.Category{}
	err := runTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		var id int
		err := tx.QueryRowContext(ctx,
			`INSERT INTO categorias (nombreCategoria) VALUES ($1) RETURNING idCategoria`,
			category.Name).Scan(&id)
		if err != nil {
			if pqErr, ok := asPQError(err); ok && pqErr.Code == "23505" {
				r.log.Warnf("Attempted to create category with duplicate name: %s", category.Name)
				return &domain.ConflictError{Reason: "category with name '" + category.Name + "' already exists"}
			}
			r.log.Errorf("Failed to create category '%s': %v", category.Name, err)
			return &domain.PersistenceError{Op: "create category", Err: err}
		}
		return tx.QueryRowContext(ctx,
			`SELECT idCategoria, nombreCategoria FROM categorias WHERE idCategoria = $1`,
			id).Scan(&created.ID, &created.Name)
	})
	if err != nil {
		return nil, wrapUnclassified("create category", err)
	}
	r.log.Infof("Category created successfully with ID: %d, Name: %s", created.ID, created.Name)
	return created, nil
}

func (r *postgresCategoryRepository) GetCategoryByID(ctx context.Context, id int) (*domain.Category, error) {
	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx,
		`SELECT idCategoria, nombreCategoria FROM categorias WHERE idCategoria = $1`,
		id).Scan(&category.ID, &category.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with ID %d not found", id)
			return nil, domain.NewNotFoundError("category", id)
		}
		r.log.Errorf("Failed to get category by ID %d: %v", id, err)
		return nil, &domain.PersistenceError{Op: "get category", Err: err}
	}
	return category, nil
}

func (r *postgresCategoryRepository) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	updated := &domain.Category{}
	err := runTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE categorias SET nombreCategoria = $1 WHERE idCategoria = $2`,
			category.Name, category.ID)
		if err != nil {
			if pqErr, ok := asPQError(err); ok && pqErr.Code == "23505" {
				r.log.Warnf("Attempted to update category ID %d with duplicate name: %s", category.ID, category.Name)
				return &domain.ConflictError{Reason: "category with name '" + category.Name + "' already exists"}
			}
			r.log.Errorf("Failed to update category ID %d: %v", category.ID, err)
			return &domain.PersistenceError{Op: "update category", Err: err}
		}
		if err := rowsAffected(result, "category", category.ID, r.log); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx,
			`SELECT idCategoria, nombreCategoria FROM categorias WHERE idCategoria = $1`,
			category.ID).Scan(&updated.ID, &updated.Name)
	})
	if err != nil {
		return nil, wrapUnclassified("update category", err)
	}
	r.log.Infof("Category updated successfully with ID: %d", updated.ID)
	return updated, nil
}

func (r *postgresCategoryRepository) DeleteCategory(ctx context.Context, id int) error {
	err := runTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM categorias WHERE idCategoria = $1`, id)
		if err != nil {
			if pqErr, ok := asPQError(err); ok && pqErr.Code == "23503" {
				r.log.Warnf("Attempted to delete category ID %d still referenced by products", id)
				return &domain.ConflictError{Reason: "category is still referenced by existing products"}
			}
			r.log.Errorf("Failed to delete category ID %d: %v", id, err)
			return &domain.PersistenceError{Op: "delete category", Err: err}
		}
		return rowsAffected(result, "category", id, r.log)
	})
	if err != nil {
		return wrapUnclassified("delete category", err)
	}
	r.log.Infof("Category deleted successfully with ID: %d", id)
	return nil
}

func (r *postgresCategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT idCategoria, nombreCategoria FROM categorias ORDER BY idCategoria ASC`)
	if err != nil {
		r.log.Errorf("Failed to list categories: %v", err)
		return nil, &domain.PersistenceError{Op: "list categories", Err: err}
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			r.log.Errorf("Failed to scan category row: %v", err)
			return nil, &domain.PersistenceError{Op: "scan category", Err: err}
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during categories list iteration: %v", err)
		return nil, &domain.PersistenceError{Op: "iterate categories", Err: err}
	}
	return categories, nil
}

// asPQError unwraps a *pq.Error so constraint codes stay checkable after
// wrapping.
func asPQError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

// wrapUnclassified keeps tagged domain errors as-is and folds anything
// else (driver errors from in-tx re-fetch scans) into a PersistenceError.
func wrapUnclassified(op string, err error) error {
	var vErr *domain.ValidationError
	var nfErr *domain.NotFoundError
	var cErr *domain.ConflictError
	var pErr *domain.PersistenceError
	if errors.As(err, &vErr) || errors.As(err, &nfErr) || errors.As(err, &cErr) || errors.As(err, &pErr) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}
