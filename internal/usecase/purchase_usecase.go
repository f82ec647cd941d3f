package usecase

import (
	"context"
	"time"

	"store_service/internal/domain"

	"github.com/sirupsen/logrus"
)

type PurchaseUseCase interface {
	CreatePurchase(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error)
	GetPurchaseByID(ctx context.Context, id int) (*domain.Purchase, error)
	UpdatePurchase(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error)
	DeletePurchase(ctx context.Context, id int) error
	ListPurchases(ctx context.Context) ([]domain.Purchase, error)
}

type purchaseUseCase struct {
	purchaseRepo domain.PurchaseRepository
	log          *logrus.Logger
	timeout      time.Duration
}

func NewPurchaseUseCase(repo domain.PurchaseRepository, logger *logrus.Logger, timeout time.Duration) PurchaseUseCase {
	return &purchaseUseCase{
		purchaseRepo: repo,
		log:          logger,
		timeout:      timeout,
	}
}

func validatePurchase(purchase *domain.Purchase) error {
	if purchase.UserID <= 0 {
		return domain.NewValidationError("purchase requires a valid idUsuario")
	}
	if purchase.ProductID <= 0 {
		return domain.NewValidationError("purchase requires a valid idProducto")
	}
	return nil
}

func (uc *purchaseUseCase) CreatePurchase(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error) {
	if err := validatePurchase(purchase); err != nil {
		uc.log.Warnf("Use Case: Invalid purchase payload: %v", err)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	created, err := uc.purchaseRepo.CreatePurchase(ctx, purchase)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create purchase (user %d, product %d): %v",
			purchase.UserID, purchase.ProductID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Purchase created successfully with ID %d", created.ID)
	return created, nil
}

func (uc *purchaseUseCase) GetPurchaseByID(ctx context.Context, id int) (*domain.Purchase, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("invalid purchase ID")
	}
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.purchaseRepo.GetPurchaseByID(ctx, id)
}

func (uc *purchaseUseCase) UpdatePurchase(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error) {
	if purchase.ID <= 0 {
		return nil, domain.NewValidationError("invalid purchase ID for update")
	}
	if err := validatePurchase(purchase); err != nil {
		uc.log.Warnf("Use Case: Invalid purchase payload for update ID %d: %v", purchase.ID, err)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	updated, err := uc.purchaseRepo.UpdatePurchase(ctx, purchase)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to update purchase ID %d: %v", purchase.ID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Purchase updated successfully for ID %d", updated.ID)
	return updated, nil
}

func (uc *purchaseUseCase) DeletePurchase(ctx context.Context, id int) error {
	if id <= 0 {
		return domain.NewValidationError("invalid purchase ID for delete")
	}
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	if err := uc.purchaseRepo.DeletePurchase(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete purchase ID %d: %v", id, err)
		return err
	}
	uc.log.Infof("Use Case: Purchase deleted successfully for ID %d", id)
	return nil
}

func (uc *purchaseUseCase) ListPurchases(ctx context.Context) ([]domain.Purchase, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.purchaseRepo.ListPurchases(ctx)
}
