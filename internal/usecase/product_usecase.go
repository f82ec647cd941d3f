package usecase

import (
	"context"
	"strings"
	"time"

	"store_service/internal/domain"

	"github.com/sirupsen/logrus"
)

// ProductInput carries the scalar fields of a product mutation. The image
// travels separately as an optional *domain.FileUpload.
type ProductInput struct {
	Quantity    int
	Description string
	Price       float64
	Unit        string
	CategoryID  int
}

type ProductUseCase interface {
	CreateProduct(ctx context.Context, in ProductInput, file *domain.FileUpload) (*domain.Product, error)
	GetProductByID(ctx context.Context, id int) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int, in ProductInput, file *domain.FileUpload) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// productUseCase coordinates the product row and its image file. The two
// backing stores share no transaction, so every mutation follows a fixed
// order: new file saved before the row mutation, stale or orphaned files
// deleted only after the row mutation has demonstrably committed or
// demonstrably failed.
type productUseCase struct {
	productRepo  domain.ProductRepository
	categoryRepo domain.CategoryRepository
	assets       domain.AssetStore
	locks        *keyedMutex
	log          *logrus.Logger
	timeout      time.Duration
}

func NewProductUseCase(pRepo domain.ProductRepository, cRepo domain.CategoryRepository,
	assets domain.AssetStore, logger *logrus.Logger, timeout time.Duration) ProductUseCase {
	return &productUseCase{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		assets:       assets,
		locks:        newKeyedMutex(),
		log:          logger,
		timeout:      timeout,
	}
}

func validateProductInput(in *ProductInput) error {
	in.Description = strings.TrimSpace(in.Description)
	in.Unit = strings.TrimSpace(in.Unit)

	if in.Description == "" {
		return domain.NewValidationError("product description cannot be empty")
	}
	if in.Price <= 0 {
		return domain.NewValidationError("product price must be positive")
	}
	if in.Unit == "" {
		return domain.NewValidationError("product unit cannot be empty")
	}
	if in.CategoryID <= 0 {
		return domain.NewValidationError("product requires a valid idCategoria")
	}
	if in.Quantity < 0 {
		return domain.NewValidationError("product quantity cannot be negative")
	}
	return nil
}

func (uc *productUseCase) CreateProduct(ctx context.Context, in ProductInput, file *domain.FileUpload) (*domain.Product, error) {
	if err := validateProductInput(&in); err != nil {
		uc.log.Warnf("Use Case: Invalid product payload: %v", err)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	if _, err := uc.categoryRepo.GetCategoryByID(ctx, in.CategoryID); err != nil {
		uc.log.Warnf("Use Case: Category ID %d not found during product creation: %v", in.CategoryID, err)
		return nil, domain.NewValidationError("category with id %d does not exist", in.CategoryID)
	}

	// The file is validated before anything touches disk and saved before
	// the row insert, so a failed insert only ever leaves a file we still
	// know how to remove.
	imagePath := ""
	if file != nil {
		if err := uc.assets.Validate(file); err != nil {
			uc.log.Warnf("Use Case: Rejected product image '%s': %v", file.Filename, err)
			return nil, err
		}
		path, err := uc.assets.Save(ctx, file)
		if err != nil {
			uc.log.Errorf("Use Case: Failed to save product image '%s': %v", file.Filename, err)
			return nil, err
		}
		imagePath = path
	}

	product := &domain.Product{
		Quantity:    in.Quantity,
		Description: in.Description,
		Price:       in.Price,
		Unit:        in.Unit,
		ImagePath:   imagePath,
		CategoryID:  in.CategoryID,
	}

	created, err := uc.productRepo.CreateProduct(ctx, product)
	if err != nil {
		if imagePath != "" {
			uc.log.Warnf("Use Case: Product insert failed, removing orphaned image %s", imagePath)
			uc.assets.Delete(imagePath)
		}
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", in.Description, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product '%s' created successfully with ID %d", created.Description, created.ID)
	return created, nil
}

func (uc *productUseCase) GetProductByID(ctx context.Context, id int) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("invalid product ID")
	}
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.productRepo.GetProductByID(ctx, id)
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, id int, in ProductInput, file *domain.FileUpload) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("invalid product ID for update")
	}
	if err := validateProductInput(&in); err != nil {
		uc.log.Warnf("Use Case: Invalid product payload for update ID %d: %v", id, err)
		return nil, err
	}

	unlock := uc.locks.lock(id)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	current, err := uc.productRepo.GetProductByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Product ID %d not found for update: %v", id, err)
		return nil, err
	}

	if _, err := uc.categoryRepo.GetCategoryByID(ctx, in.CategoryID); err != nil {
		uc.log.Warnf("Use Case: Category ID %d not found during product update: %v", in.CategoryID, err)
		return nil, domain.NewValidationError("category with id %d does not exist", in.CategoryID)
	}

	// A rejected replacement must leave the current file and row intact.
	newPath := ""
	if file != nil {
		if err := uc.assets.Validate(file); err != nil {
			uc.log.Warnf("Use Case: Rejected replacement image '%s' for product %d: %v", file.Filename, id, err)
			return nil, err
		}
		path, err := uc.assets.Save(ctx, file)
		if err != nil {
			uc.log.Errorf("Use Case: Failed to save replacement image for product %d: %v", id, err)
			return nil, err
		}
		newPath = path
	}

	imagePath := current.ImagePath
	if newPath != "" {
		imagePath = newPath
	}

	product := &domain.Product{
		ID:          id,
		Quantity:    in.Quantity,
		Description: in.Description,
		Price:       in.Price,
		Unit:        in.Unit,
		ImagePath:   imagePath,
		CategoryID:  in.CategoryID,
	}

	updated, err := uc.productRepo.UpdateProduct(ctx, product)
	if err != nil {
		// The row still references the old file, so only the unreferenced
		// replacement may be removed.
		if newPath != "" {
			uc.log.Warnf("Use Case: Product update failed, removing unreferenced image %s", newPath)
			uc.assets.Delete(newPath)
		}
		uc.log.Errorf("Use Case: Repository failed to update product ID %d: %v", id, err)
		return nil, err
	}

	// Stale file removal happens strictly after the commit; deleting any
	// earlier would lose the old image if the row mutation failed.
	if newPath != "" && current.ImagePath != "" && current.ImagePath != newPath {
		uc.assets.Delete(current.ImagePath)
	}

	uc.log.Infof("Use Case: Product updated successfully for ID %d", updated.ID)
	return updated, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id int) error {
	if id <= 0 {
		return domain.NewValidationError("invalid product ID for delete")
	}

	unlock := uc.locks.lock(id)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	current, err := uc.productRepo.GetProductByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Product ID %d not found for delete: %v", id, err)
		return err
	}

	if err := uc.productRepo.DeleteProduct(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete product ID %d: %v", id, err)
		return err
	}

	// The image goes only after the row delete affected a row.
	if current.ImagePath != "" {
		uc.assets.Delete(current.ImagePath)
	}

	uc.log.Infof("Use Case: Product deleted successfully for ID %d", id)
	return nil
}

func (uc *productUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.productRepo.ListProducts(ctx)
}
