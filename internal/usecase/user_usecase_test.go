package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"store_service/internal/domain"
	"store_service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubUserRepo struct {
	users     map[int]domain.User
	nextID    int
	createErr error
	docErr    error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[int]domain.User{}}
}

func (s *stubUserRepo) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	for _, existing := range s.users {
		if existing.Document == user.Document {
			return nil, &domain.ConflictError{Reason: "a user with this document already exists"}
		}
	}
	s.nextID++
	cp := *user
	cp.ID = s.nextID
	s.users[cp.ID] = cp
	return &cp, nil
}

func (s *stubUserRepo) GetUserByID(_ context.Context, id int) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user", id)
	}
	cp := user
	return &cp, nil
}

func (s *stubUserRepo) GetUserByDocument(_ context.Context, document string) (*domain.User, error) {
	if s.docErr != nil {
		return nil, s.docErr
	}
	for _, user := range s.users {
		if user.Document == document {
			cp := user
			return &cp, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "user", Key: "document " + document}
}

func (s *stubUserRepo) UpdateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := s.users[user.ID]; !ok {
		return nil, domain.NewNotFoundError("user", user.ID)
	}
	cp := *user
	s.users[cp.ID] = cp
	return &cp, nil
}

func (s *stubUserRepo) DeleteUser(_ context.Context, id int) error {
	if _, ok := s.users[id]; !ok {
		return domain.NewNotFoundError("user", id)
	}
	delete(s.users, id)
	return nil
}

func (s *stubUserRepo) ListUsers(_ context.Context) ([]domain.User, error) {
	out := []domain.User{}
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func newUserFixture(t *testing.T) (UserUseCase, *stubUserRepo, string) {
	t.Helper()
	root := t.TempDir()
	logger := testLogger()
	assets := storage.NewLocalAssetStore(root, "users", storage.DefaultImagePolicy(0), logger)
	repo := newStubUserRepo()
	uc := NewUserUseCase(repo, assets, logger, 5*time.Second)
	return uc, repo, root
}

func validUserInput() UserInput {
	return UserInput{
		FirstName: "Ana",
		LastName:  "Gomez",
		Document:  "10203040",
		Password:  "s3cret",
	}
}

func userFiles(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(root, "users"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := []string{}
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestCreateUserHashesPassword(t *testing.T) {
	uc, repo, _ := newUserFixture(t)

	in := validUserInput()
	created, err := uc.CreateUser(context.Background(), in, nil)
	require.NoError(t, err)

	stored := repo.users[created.ID]
	assert.NotEqual(t, in.Password, stored.PasswordHash, "plaintext must never be stored")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(in.Password)))
}

func TestCreateUserWithImage(t *testing.T) {
	uc, repo, root := newUserFixture(t)

	file := &domain.FileUpload{Filename: "avatar.jpg", Content: []byte("jpg-bytes")}
	created, err := uc.CreateUser(context.Background(), validUserInput(), file)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ImagePath)
	assert.Len(t, userFiles(t, root), 1)
	assert.Equal(t, created.ImagePath, repo.users[created.ID].ImagePath)
}

func TestCreateUserInsertFailureRemovesSavedImage(t *testing.T) {
	uc, _, root := newUserFixture(t)

	_, err := uc.CreateUser(context.Background(), validUserInput(), nil)
	require.NoError(t, err)

	// Same document again: the conflict must not leave the second image behind.
	file := &domain.FileUpload{Filename: "avatar.png", Content: []byte("png-bytes")}
	_, err = uc.CreateUser(context.Background(), validUserInput(), file)

	var cErr *domain.ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Empty(t, userFiles(t, root))
}

func TestCreateUserMissingFields(t *testing.T) {
	uc, repo, _ := newUserFixture(t)

	in := validUserInput()
	in.Password = ""
	_, err := uc.CreateUser(context.Background(), in, nil)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, repo.users)
}

func TestUpdateUserReplacesImage(t *testing.T) {
	uc, repo, root := newUserFixture(t)

	file := &domain.FileUpload{Filename: "avatar.jpg", Content: []byte("jpg-bytes")}
	created, err := uc.CreateUser(context.Background(), validUserInput(), file)
	require.NoError(t, err)

	replacement := &domain.FileUpload{Filename: "avatar.png", Content: []byte("png-bytes")}
	updated, err := uc.UpdateUser(context.Background(), created.ID, validUserInput(), replacement)
	require.NoError(t, err)

	assert.NotEqual(t, created.ImagePath, updated.ImagePath)
	assert.Len(t, userFiles(t, root), 1, "the stale avatar must be removed")
	assert.Equal(t, updated.ImagePath, repo.users[created.ID].ImagePath)
}

func TestDeleteUserRemovesRowThenImage(t *testing.T) {
	uc, repo, root := newUserFixture(t)

	file := &domain.FileUpload{Filename: "avatar.jpg", Content: []byte("jpg-bytes")}
	created, err := uc.CreateUser(context.Background(), validUserInput(), file)
	require.NoError(t, err)

	require.NoError(t, uc.DeleteUser(context.Background(), created.ID))

	assert.Empty(t, repo.users)
	assert.Empty(t, userFiles(t, root))
}

func TestAuthenticateUser(t *testing.T) {
	uc, _, _ := newUserFixture(t)

	in := validUserInput()
	_, err := uc.CreateUser(context.Background(), in, nil)
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		resp, err := uc.AuthenticateUser(context.Background(), in.Document, in.Password)
		require.NoError(t, err)
		assert.True(t, resp.Authenticated)
		assert.NotEmpty(t, resp.Token)
		assert.NotZero(t, resp.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, err := uc.AuthenticateUser(context.Background(), in.Document, "wrong")
		require.NoError(t, err)
		assert.False(t, resp.Authenticated)
		assert.Empty(t, resp.Token)
	})

	t.Run("unknown document", func(t *testing.T) {
		resp, err := uc.AuthenticateUser(context.Background(), "00000000", in.Password)
		require.NoError(t, err)
		assert.False(t, resp.Authenticated)
	})

	t.Run("empty credentials", func(t *testing.T) {
		resp, err := uc.AuthenticateUser(context.Background(), "", "")
		require.NoError(t, err)
		assert.False(t, resp.Authenticated)
	})
}

func TestAuthenticateUserRepositoryFailure(t *testing.T) {
	uc, repo, _ := newUserFixture(t)
	repo.docErr = &domain.PersistenceError{Op: "get user by document", Err: errors.New("connection reset")}

	_, err := uc.AuthenticateUser(context.Background(), "10203040", "s3cret")

	var pErr *domain.PersistenceError
	require.ErrorAs(t, err, &pErr)
}
