package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"store_service/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

const productColumns = `idProducto, cantidad, descripcion, precio, unidad, urlImagen, idCategoria`

func scanProduct(row *sql.Row, product *domain.Product) error {
	var categoryID sql.NullInt64
	err := row.Scan(
		&product.ID,
		&product.Quantity,
		&product.Description,
		&product.Price,
		&product.Unit,
		&product.ImagePath,
		&categoryID,
	)
	if err != nil {
		return err
	}
	if categoryID.Valid {
		product.CategoryID = int(categoryID.Int64)
	}
	return nil
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	created := &domain.Product{}
	err := runTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		var id int
		err := tx.QueryRowContext(ctx,
			`INSERT INTO productos (cantidad, descripcion, precio, unidad, urlImagen, idCategoria)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING idProducto`,
			product.Quantity, product.Description, product.Price, product.Unit,
			product.ImagePath, product.CategoryID).Scan(&id)
		if err != nil {
			return r.mapWriteError("create", product.CategoryID, err)
		}
		return scanProduct(tx.QueryRowContext(ctx,
			`SELECT `+productColumns+` FROM productos WHERE idProducto = $1`, id), created)
	})
	if err != nil {
		return nil, wrapUnclassified("create product", err)
	}
	r.log.Infof("Product created successfully with ID: %d, Description: %s", created.ID, created.Description)
	return created, nil
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id int) (*domain.Product, error) {
	product := &domain.Product{}
	err := scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM productos WHERE idProducto = $1`, id), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product with ID %d not found", id)
			return nil, domain.NewNotFoundError("product", id)
		}
		r.log.Errorf("Failed to get product by ID %d: %v", id, err)
		return nil, &domain.PersistenceError{Op: "get product", Err: err}
	}
	return product, nil
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	updated := &domain.Product{}
	err := runTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE productos
			 SET cantidad = $1, descripcion = $2, precio = $3, unidad = $4, urlImagen = $5, idCategoria = $6
			 WHERE idProducto = $7`,
			product.Quantity, product.Description, product.Price, product.Unit,
			product.ImagePath, product.CategoryID, product.ID)
		if err != nil {
			return r.mapWriteError("update", product.CategoryID, err)
		}
		if err := rowsAffected(result, "product", product.ID, r.log); err != nil {
			return err
		}
		return scanProduct(tx.QueryRowContext(ctx,
			`SELECT `+productColumns+` FROM productos WHERE idProducto = $1`, product.ID), updated)
	})
	if err != nil {
		return nil, wrapUnclassified("update product", err)
	}
	r.log.Infof("Product updated successfully with ID: %d", updated.ID)
	return updated, nil
}

func (r *postgresProductRepository) DeleteProduct(ctx context.Context, id int) error {
	err := runTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM productos WHERE idProducto = $1`, id)
		if err != nil {
			if pqErr, ok := asPQError(err); ok && pqErr.Code == "23503" {
				r.log.Warnf("Attempted to delete product ID %d still referenced by purchases", id)
				return &domain.ConflictError{Reason: "product is still referenced by existing purchases"}
			}
			r.log.Errorf("Failed to delete product ID %d: %v", id, err)
			return &domain.PersistenceError{Op: "delete product", Err: err}
		}
		return rowsAffected(result, "product", id, r.log)
	})
	if err != nil {
		return wrapUnclassified("delete product", err)
	}
	r.log.Infof("Product deleted successfully with ID: %d", id)
	return nil
}

func (r *postgresProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM productos ORDER BY idProducto ASC`)
	if err != nil {
		r.log.Errorf("Failed to list products: %v", err)
		return nil, &domain.PersistenceError{Op: "list products", Err: err}
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var product domain.Product
		var categoryID sql.NullInt64
		if err := rows.Scan(&product.ID, &product.Quantity, &product.Description,
			&product.Price, &product.Unit, &product.ImagePath, &categoryID); err != nil {
			r.log.Errorf("Failed to scan product row: %v", err)
			return nil, &domain.PersistenceError{Op: "scan product", Err: err}
		}
		if categoryID.Valid {
			product.CategoryID = int(categoryID.Int64)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during products list iteration: %v", err)
		return nil, &domain.PersistenceError{Op: "iterate products", Err: err}
	}
	return products, nil
}

func (r *postgresProductRepository) mapWriteError(op string, categoryID int, err error) error {
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case "23503":
			r.log.Warnf("Product %s referenced non-existent category ID: %d", op, categoryID)
			return domain.NewValidationError("category with id %d does not exist", categoryID)
		case "23514":
			r.log.Warnf("Check constraint violation on product %s: %s", op, pqErr.Message)
			return domain.NewValidationError("product data constraint violation: %s", pqErr.Message)
		}
	}
	r.log.Errorf("Failed to %s product: %v", op, err)
	return &domain.PersistenceError{Op: fmt.Sprintf("%s product", op), Err: err}
}
