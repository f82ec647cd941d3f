package domain

import "context"

type PurchaseRepository interface {
	CreatePurchase(ctx context.Context, purchase *Purchase) (*Purchase, error)
	GetPurchaseByID(ctx context.Context, id int) (*Purchase, error)
	UpdatePurchase(ctx context.Context, purchase *Purchase) (*Purchase, error)
	DeletePurchase(ctx context.Context, id int) error
	ListPurchases(ctx context.Context) ([]Purchase, error)
}
