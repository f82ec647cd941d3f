package usecase

import (
	"context"
	"strings"
	"time"

	"store_service/internal/domain"

	"github.com/sirupsen/logrus"
)

type CategoryUseCase interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type categoryUseCase struct {
	categoryRepo domain.CategoryRepository
	log          *logrus.Logger
	timeout      time.Duration
}

func NewCategoryUseCase(repo domain.CategoryRepository, logger *logrus.Logger, timeout time.Duration) CategoryUseCase {
	return &categoryUseCase{
		categoryRepo: repo,
		log:          logger,
		timeout:      timeout,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		uc.log.Warn("Use Case: Attempted to create category with empty name")
		return nil, domain.NewValidationError("category name cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	created, err := uc.categoryRepo.CreateCategory(ctx, category)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create category '%s': %v", category.Name, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Category '%s' created successfully with ID %d", created.Name, created.ID)
	return created, nil
}

func (uc *categoryUseCase) GetCategoryByID(ctx context.Context, id int) (*domain.Category, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("invalid category ID")
	}
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.categoryRepo.GetCategoryByID(ctx, id)
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ID <= 0 {
		return nil, domain.NewValidationError("invalid category ID for update")
	}
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		uc.log.Warnf("Use Case: Attempted to update category ID %d with empty name", category.ID)
		return nil, domain.NewValidationError("category name cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	updated, err := uc.categoryRepo.UpdateCategory(ctx, category)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to update category ID %d: %v", category.ID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Category updated successfully for ID %d", updated.ID)
	return updated, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id int) error {
	if id <= 0 {
		return domain.NewValidationError("invalid category ID for delete")
	}
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	if err := uc.categoryRepo.DeleteCategory(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete category ID %d: %v", id, err)
		return err
	}
	uc.log.Infof("Use Case: Category deleted successfully for ID %d", id)
	return nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.categoryRepo.ListCategories(ctx)
}
