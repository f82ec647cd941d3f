package repository

import (
	"context"
	"database/sql"
	"errors"

	"store_service/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresUserRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresUserRepository(db *sql.DB, logger *logrus.Logger) domain.UserRepository {
	return &postgresUserRepository{
		db:  db,
		log: logger,
	}
}

const userColumns = `idUsuario, nombre, apellido, urlImagen, documento, contrasena`

func scanUser(row *sql.Row, user *domain.User) error {
	return row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.ImagePath,
		&user.Document,
		&user.PasswordHash,
	)
}

func (r *postgresUserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	created := &domain.User{}
	err := runTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		var id int
		err := tx.QueryRowContext(ctx,
			`INSERT INTO usuarios (nombre, apellido, urlImagen, documento, contrasena)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING idUsuario`,
			user.FirstName, user.LastName, user.ImagePath, user.Document, user.PasswordHash).Scan(&id)
		if err != nil {
			return r.mapWriteError("create", user.Document, err)
		}
		return scanUser(tx.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM usuarios WHERE idUsuario = $1`, id), created)
	})
	if err != nil {
		return nil, wrapUnclassified("create user", err)
	}
	r.log.Infof("User created successfully with ID: %d, Document: %s", created.ID, created.Document)
	return created, nil
}

func (r *postgresUserRepository) GetUserByID(ctx context.Context, id int) (*domain.User, error) {
	user := &domain.User{}
	err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM usuarios WHERE idUsuario = $1`, id), user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("User with ID %d not found", id)
			return nil, domain.NewNotFoundError("user", id)
		}
		r.log.Errorf("Failed to get user by ID %d: %v", id, err)
		return nil, &domain.PersistenceError{Op: "get user", Err: err}
	}
	return user, nil
}

func (r *postgresUserRepository) GetUserByDocument(ctx context.Context, document string) (*domain.User, error) {
	user := &domain.User{}
	err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM usuarios WHERE documento = $1`, document), user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("User with document %s not found", document)
			return nil, &domain.NotFoundError{Entity: "user", Key: "document " + document}
		}
		r.log.Errorf("Failed to get user by document %s: %v", document, err)
		return nil, &domain.PersistenceError{Op: "get user by document", Err: err}
	}
	return user, nil
}

func (r *postgresUserRepository) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	updated := &domain.User{}
	err := runTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE usuarios
			 SET nombre = $1, apellido = $2, urlImagen = $3, documento = $4, contrasena = $5
			 WHERE idUsuario = $6`,
			user.FirstName, user.LastName, user.ImagePath, user.Document, user.PasswordHash, user.ID)
		if err != nil {
			return r.mapWriteError("update", user.Document, err)
		}
		if err := rowsAffected(result, "user", user.ID, r.log); err != nil {
			return err
		}
		return scanUser(tx.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM usuarios WHERE idUsuario = $1`, user.ID), updated)
	})
	if err != nil {
		return nil, wrapUnclassified("update user", err)
	}
	r.log.Infof("User updated successfully with ID: %d", updated.ID)
	return updated, nil
}

func (r *postgresUserRepository) DeleteUser(ctx context.Context, id int) error {
	err := runTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM usuarios WHERE idUsuario = $1`, id)
		if err != nil {
			if pqErr, ok := asPQError(err); ok && pqErr.Code == "23503" {
				r.log.Warnf("Attempted to delete user ID %d still referenced by purchases", id)
				return &domain.ConflictError{Reason: "user is still referenced by existing purchases"}
			}
			r.log.Errorf("Failed to delete user ID %d: %v", id, err)
			return &domain.PersistenceError{Op: "delete user", Err: err}
		}
		return rowsAffected(result, "user", id, r.log)
	})
	if err != nil {
		return wrapUnclassified("delete user", err)
	}
	r.log.Infof("User deleted successfully with ID: %d", id)
	return nil
}

func (r *postgresUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM usuarios ORDER BY idUsuario ASC`)
	if err != nil {
		r.log.Errorf("Failed to list users: %v", err)
		return nil, &domain.PersistenceError{Op: "list users", Err: err}
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.FirstName, &user.LastName,
			&user.ImagePath, &user.Document, &user.PasswordHash); err != nil {
			r.log.Errorf("Failed to scan user row: %v", err)
			return nil, &domain.PersistenceError{Op: "scan user", Err: err}
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during users list iteration: %v", err)
		return nil, &domain.PersistenceError{Op: "iterate users", Err: err}
	}
	return users, nil
}

func (r *postgresUserRepository) mapWriteError(op, document string, err error) error {
	if pqErr, ok := asPQError(err); ok && pqErr.Code == "23505" {
		r.log.Warnf("User %s with duplicate document: %s", op, document)
		return &domain.ConflictError{Reason: "user with document '" + document + "' already exists"}
	}
	r.log.Errorf("Failed to %s user: %v", op, err)
	return &domain.PersistenceError{Op: op + " user", Err: err}
}
