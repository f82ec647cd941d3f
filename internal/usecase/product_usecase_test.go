package usecase

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"store_service/internal/domain"
	"store_service/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProductRepo struct {
	products  map[int]domain.Product
	nextID    int
	createErr error
	updateErr error
	deleteErr error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: map[int]domain.Product{}}
}

func (s *stubProductRepo) CreateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	cp := *product
	cp.ID = s.nextID
	s.products[cp.ID] = cp
	return &cp, nil
}

func (s *stubProductRepo) GetProductByID(_ context.Context, id int) (*domain.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, domain.NewNotFoundError("product", id)
	}
	cp := product
	return &cp, nil
}

func (s *stubProductRepo) UpdateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	if _, ok := s.products[product.ID]; !ok {
		return nil, domain.NewNotFoundError("product", product.ID)
	}
	cp := *product
	s.products[cp.ID] = cp
	return &cp, nil
}

func (s *stubProductRepo) DeleteProduct(_ context.Context, id int) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.products[id]; !ok {
		return domain.NewNotFoundError("product", id)
	}
	delete(s.products, id)
	return nil
}

func (s *stubProductRepo) ListProducts(_ context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, product := range s.products {
		out = append(out, product)
	}
	return out, nil
}

type stubCategoryRepo struct {
	ids map[int]bool
}

func (s *stubCategoryRepo) GetCategoryByID(_ context.Context, id int) (*domain.Category, error) {
	if !s.ids[id] {
		return nil, domain.NewNotFoundError("category", id)
	}
	return &domain.Category{ID: id, Name: "stub"}, nil
}

func (s *stubCategoryRepo) CreateCategory(_ context.Context, category *domain.Category) (*domain.Category, error) {
	return category, nil
}

func (s *stubCategoryRepo) UpdateCategory(_ context.Context, category *domain.Category) (*domain.Category, error) {
	return category, nil
}

func (s *stubCategoryRepo) DeleteCategory(_ context.Context, _ int) error { return nil }

func (s *stubCategoryRepo) ListCategories(_ context.Context) ([]domain.Category, error) {
	return nil, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newProductFixture(t *testing.T) (ProductUseCase, *stubProductRepo, string) {
	t.Helper()
	root := t.TempDir()
	logger := testLogger()
	assets := storage.NewLocalAssetStore(root, "products", storage.DefaultImagePolicy(0), logger)
	repo := newStubProductRepo()
	categories := &stubCategoryRepo{ids: map[int]bool{1: true}}
	uc := NewProductUseCase(repo, categories, assets, logger, 5*time.Second)
	return uc, repo, root
}

func validProductInput() ProductInput {
	return ProductInput{
		Quantity:    3,
		Description: "widget",
		Price:       9.99,
		Unit:        "pcs",
		CategoryID:  1,
	}
}

func pngUpload() *domain.FileUpload {
	return &domain.FileUpload{
		Filename:    "widget.png",
		Content:     []byte("png-bytes"),
		ContentType: "image/png",
	}
}

func savedFiles(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(root, "products"))
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

func assetExists(t *testing.T, root, relPath string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(relPath)))
	if err == nil {
		return true
	}
	require.True(t, os.IsNotExist(err))
	return false
}

func TestCreateProductWithImage(t *testing.T) {
	uc, repo, root := newProductFixture(t)

	created, err := uc.CreateProduct(context.Background(), validProductInput(), pngUpload())
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.NotEmpty(t, created.ImagePath)
	assert.True(t, strings.HasSuffix(created.ImagePath, ".png"))
	assert.True(t, assetExists(t, root, created.ImagePath))
	assert.Equal(t, created.ImagePath, repo.products[created.ID].ImagePath)
}

func TestCreateProductWithoutImage(t *testing.T) {
	uc, _, root := newProductFixture(t)

	created, err := uc.CreateProduct(context.Background(), validProductInput(), nil)
	require.NoError(t, err)

	assert.Empty(t, created.ImagePath)
	assert.Empty(t, savedFiles(t, root))
}

func TestCreateProductInvalidImage(t *testing.T) {
	uc, repo, root := newProductFixture(t)

	exe := &domain.FileUpload{Filename: "tool.exe", Content: []byte("nope")}
	_, err := uc.CreateProduct(context.Background(), validProductInput(), exe)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, repo.products, "no row may be inserted")
	assert.Empty(t, savedFiles(t, root), "no file may be written")
}

func TestCreateProductMissingFields(t *testing.T) {
	uc, repo, _ := newProductFixture(t)

	in := validProductInput()
	in.Description = "  "
	_, err := uc.CreateProduct(context.Background(), in, nil)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, repo.products)
}

func TestCreateProductUnknownCategory(t *testing.T) {
	uc, repo, root := newProductFixture(t)

	in := validProductInput()
	in.CategoryID = 99
	_, err := uc.CreateProduct(context.Background(), in, pngUpload())

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, repo.products)
	assert.Empty(t, savedFiles(t, root))
}

func TestCreateProductInsertFailureRemovesSavedImage(t *testing.T) {
	uc, repo, root := newProductFixture(t)
	repo.createErr = &domain.PersistenceError{Op: "create product", Err: errors.New("constraint violation")}

	_, err := uc.CreateProduct(context.Background(), validProductInput(), pngUpload())

	var pErr *domain.PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.Empty(t, savedFiles(t, root), "compensation must remove the orphaned file")
}

func seedProductWithImage(t *testing.T, repo *stubProductRepo, root string) domain.Product {
	t.Helper()
	dir := filepath.Join(root, "products")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.png"), []byte("old"), 0o644))

	repo.nextID++
	product := domain.Product{
		ID:          repo.nextID,
		Quantity:    3,
		Description: "widget",
		Price:       9.99,
		Unit:        "pcs",
		ImagePath:   "products/old.png",
		CategoryID:  1,
	}
	repo.products[product.ID] = product
	return product
}

func TestUpdateProductReplacesImageOnlyAfterCommit(t *testing.T) {
	uc, repo, root := newProductFixture(t)
	seeded := seedProductWithImage(t, repo, root)

	updated, err := uc.UpdateProduct(context.Background(), seeded.ID, validProductInput(), pngUpload())
	require.NoError(t, err)

	assert.NotEqual(t, seeded.ImagePath, updated.ImagePath)
	assert.True(t, assetExists(t, root, updated.ImagePath), "new file must exist")
	assert.False(t, assetExists(t, root, seeded.ImagePath), "old file must be gone")
}

func TestUpdateProductPersistenceFailureKeepsOldImage(t *testing.T) {
	uc, repo, root := newProductFixture(t)
	seeded := seedProductWithImage(t, repo, root)
	repo.updateErr = &domain.PersistenceError{Op: "update product", Err: errors.New("boom")}

	_, err := uc.UpdateProduct(context.Background(), seeded.ID, validProductInput(), pngUpload())

	var pErr *domain.PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.True(t, assetExists(t, root, seeded.ImagePath), "old file must survive")
	assert.Equal(t, []string{"old.png"}, savedFiles(t, root), "the failed replacement must be removed")
	assert.Equal(t, seeded.ImagePath, repo.products[seeded.ID].ImagePath)
}

func TestUpdateProductInvalidNewImageMutatesNothing(t *testing.T) {
	uc, repo, root := newProductFixture(t)
	seeded := seedProductWithImage(t, repo, root)

	exe := &domain.FileUpload{Filename: "tool.exe", Content: []byte("nope")}
	_, err := uc.UpdateProduct(context.Background(), seeded.ID, validProductInput(), exe)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"old.png"}, savedFiles(t, root))
	assert.Equal(t, seeded, repo.products[seeded.ID])
}

func TestUpdateProductWithoutFileKeepsImage(t *testing.T) {
	uc, repo, root := newProductFixture(t)
	seeded := seedProductWithImage(t, repo, root)

	in := validProductInput()
	in.Price = 19.99
	updated, err := uc.UpdateProduct(context.Background(), seeded.ID, in, nil)
	require.NoError(t, err)

	assert.Equal(t, seeded.ImagePath, updated.ImagePath)
	assert.True(t, assetExists(t, root, seeded.ImagePath))
	assert.Equal(t, 19.99, updated.Price)
}

func TestUpdateProductNotFound(t *testing.T) {
	uc, _, root := newProductFixture(t)

	_, err := uc.UpdateProduct(context.Background(), 42, validProductInput(), pngUpload())

	var nfErr *domain.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Empty(t, savedFiles(t, root), "no file may be saved for a missing row")
}

func TestDeleteProductRemovesRowThenImage(t *testing.T) {
	uc, repo, root := newProductFixture(t)
	seeded := seedProductWithImage(t, repo, root)

	require.NoError(t, uc.DeleteProduct(context.Background(), seeded.ID))

	assert.Empty(t, repo.products)
	assert.False(t, assetExists(t, root, seeded.ImagePath))
}

func TestDeleteProductRowFailureKeepsImage(t *testing.T) {
	uc, repo, root := newProductFixture(t)
	seeded := seedProductWithImage(t, repo, root)
	repo.deleteErr = &domain.PersistenceError{Op: "delete product", Err: errors.New("boom")}

	err := uc.DeleteProduct(context.Background(), seeded.ID)

	var pErr *domain.PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.True(t, assetExists(t, root, seeded.ImagePath), "a failed row delete must not destroy the file")
}

func TestDeleteProductNotFound(t *testing.T) {
	uc, _, root := newProductFixture(t)

	err := uc.DeleteProduct(context.Background(), 42)

	var nfErr *domain.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Empty(t, savedFiles(t, root))
}
