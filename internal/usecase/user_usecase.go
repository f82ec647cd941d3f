package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"store_service/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// UserInput carries the scalar fields of a user mutation. Password is the
// plaintext from the request; it is hashed before it reaches the repository.
type UserInput struct {
	FirstName string
	LastName  string
	Document  string
	Password  string
}

type UserUseCase interface {
	CreateUser(ctx context.Context, in UserInput, file *domain.FileUpload) (*domain.User, error)
	GetUserByID(ctx context.Context, id int) (*domain.User, error)
	UpdateUser(ctx context.Context, id int, in UserInput, file *domain.FileUpload) (*domain.User, error)
	DeleteUser(ctx context.Context, id int) error
	ListUsers(ctx context.Context) ([]domain.User, error)
	AuthenticateUser(ctx context.Context, document, password string) (*domain.AuthResponse, error)
}

// userUseCase mirrors the product coordinator: same file-before-row save
// order on writes, same delete-after-commit order on removals.
type userUseCase struct {
	userRepo domain.UserRepository
	assets   domain.AssetStore
	locks    *keyedMutex
	log      *logrus.Logger
	timeout  time.Duration
}

func NewUserUseCase(repo domain.UserRepository, assets domain.AssetStore,
	logger *logrus.Logger, timeout time.Duration) UserUseCase {
	return &userUseCase{
		userRepo: repo,
		assets:   assets,
		locks:    newKeyedMutex(),
		log:      logger,
		timeout:  timeout,
	}
}

func validateUserInput(in *UserInput) error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Document = strings.TrimSpace(in.Document)

	if in.FirstName == "" {
		return domain.NewValidationError("user first name cannot be empty")
	}
	if in.LastName == "" {
		return domain.NewValidationError("user last name cannot be empty")
	}
	if in.Document == "" {
		return domain.NewValidationError("user document cannot be empty")
	}
	if in.Password == "" {
		return domain.NewValidationError("user password cannot be empty")
	}
	return nil
}

func (uc *userUseCase) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password: %v", err)
		return "", &domain.PersistenceError{Op: "hash password", Err: err}
	}
	return string(hash), nil
}

func (uc *userUseCase) CreateUser(ctx context.Context, in UserInput, file *domain.FileUpload) (*domain.User, error) {
	if err := validateUserInput(&in); err != nil {
		uc.log.Warnf("Use Case: Invalid user payload: %v", err)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	imagePath := ""
	if file != nil {
		if err := uc.assets.Validate(file); err != nil {
			uc.log.Warnf("Use Case: Rejected user image '%s': %v", file.Filename, err)
			return nil, err
		}
		path, err := uc.assets.Save(ctx, file)
		if err != nil {
			uc.log.Errorf("Use Case: Failed to save user image '%s': %v", file.Filename, err)
			return nil, err
		}
		imagePath = path
	}

	hash, err := uc.hashPassword(in.Password)
	if err != nil {
		if imagePath != "" {
			uc.assets.Delete(imagePath)
		}
		return nil, err
	}

	user := &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		ImagePath:    imagePath,
		Document:     in.Document,
		PasswordHash: hash,
	}

	created, err := uc.userRepo.CreateUser(ctx, user)
	if err != nil {
		if imagePath != "" {
			uc.log.Warnf("Use Case: User insert failed, removing orphaned image %s", imagePath)
			uc.assets.Delete(imagePath)
		}
		uc.log.Errorf("Use Case: Repository failed to create user '%s': %v", in.Document, err)
		return nil, err
	}

	uc.log.Infof("Use Case: User registered successfully. ID: %d, Document: %s", created.ID, created.Document)
	return created, nil
}

func (uc *userUseCase) GetUserByID(ctx context.Context, id int) (*domain.User, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("invalid user ID")
	}
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.userRepo.GetUserByID(ctx, id)
}

func (uc *userUseCase) UpdateUser(ctx context.Context, id int, in UserInput, file *domain.FileUpload) (*domain.User, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("invalid user ID for update")
	}
	if err := validateUserInput(&in); err != nil {
		uc.log.Warnf("Use Case: Invalid user payload for update ID %d: %v", id, err)
		return nil, err
	}

	unlock := uc.locks.lock(id)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	current, err := uc.userRepo.GetUserByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: User ID %d not found for update: %v", id, err)
		return nil, err
	}

	newPath := ""
	if file != nil {
		if err := uc.assets.Validate(file); err != nil {
			uc.log.Warnf("Use Case: Rejected replacement image '%s' for user %d: %v", file.Filename, id, err)
			return nil, err
		}
		path, err := uc.assets.Save(ctx, file)
		if err != nil {
			uc.log.Errorf("Use Case: Failed to save replacement image for user %d: %v", id, err)
			return nil, err
		}
		newPath = path
	}

	imagePath := current.ImagePath
	if newPath != "" {
		imagePath = newPath
	}

	hash, err := uc.hashPassword(in.Password)
	if err != nil {
		if newPath != "" {
			uc.assets.Delete(newPath)
		}
		return nil, err
	}

	user := &domain.User{
		ID:           id,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		ImagePath:    imagePath,
		Document:     in.Document,
		PasswordHash: hash,
	}

	updated, err := uc.userRepo.UpdateUser(ctx, user)
	if err != nil {
		if newPath != "" {
			uc.log.Warnf("Use Case: User update failed, removing unreferenced image %s", newPath)
			uc.assets.Delete(newPath)
		}
		uc.log.Errorf("Use Case: Repository failed to update user ID %d: %v", id, err)
		return nil, err
	}

	// Old image removed only once the row points at the new one.
	if newPath != "" && current.ImagePath != "" && current.ImagePath != newPath {
		uc.assets.Delete(current.ImagePath)
	}

	uc.log.Infof("Use Case: User updated successfully for ID %d", updated.ID)
	return updated, nil
}

func (uc *userUseCase) DeleteUser(ctx context.Context, id int) error {
	if id <= 0 {
		return domain.NewValidationError("invalid user ID for delete")
	}

	unlock := uc.locks.lock(id)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	current, err := uc.userRepo.GetUserByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: User ID %d not found for delete: %v", id, err)
		return err
	}

	if err := uc.userRepo.DeleteUser(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete user ID %d: %v", id, err)
		return err
	}

	if current.ImagePath != "" {
		uc.assets.Delete(current.ImagePath)
	}

	uc.log.Infof("Use Case: User deleted successfully for ID %d", id)
	return nil
}

func (uc *userUseCase) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.userRepo.ListUsers(ctx)
}

// AuthenticateUser verifies a document/password pair. Wrong credentials
// are a result, not an error; only infrastructure failures propagate.
func (uc *userUseCase) AuthenticateUser(ctx context.Context, document, password string) (*domain.AuthResponse, error) {
	document = strings.TrimSpace(document)
	uc.log.Infof("Use Case: Attempting authentication for document: %s", document)

	if document == "" || password == "" {
		return &domain.AuthResponse{Authenticated: false}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	user, err := uc.userRepo.GetUserByDocument(ctx, document)
	if err != nil {
		var nfErr *domain.NotFoundError
		if errors.As(err, &nfErr) {
			uc.log.Warnf("Use Case: Auth failed - user not found: %s", document)
			return &domain.AuthResponse{Authenticated: false}, nil
		}
		uc.log.Errorf("Use Case: Error retrieving user %s during auth: %v", document, err)
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			uc.log.Warnf("Use Case: Auth failed - incorrect password for user %s (ID: %d)", document, user.ID)
			return &domain.AuthResponse{Authenticated: false}, nil
		}
		uc.log.Errorf("Use Case: Error comparing password hash for user %s: %v", document, err)
		return nil, &domain.PersistenceError{Op: "compare password", Err: err}
	}

	token := uuid.NewString()
	uc.log.Infof("Use Case: Authentication successful for user %s (ID: %d)", document, user.ID)
	return &domain.AuthResponse{
		Authenticated: true,
		Token:         token,
		UserID:        user.ID,
	}, nil
}
