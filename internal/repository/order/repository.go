package order

import (
	"context"

	"pcparts-backend/internal/domain"
)

// ListFilter narrows the admin order listing.
type ListFilter struct {
	domain.ListParams
	UserID        string
	Status        string
	PaymentStatus string
	From          string
	To            string
}

type Repository interface {
	// Create persists the order, its items and the per-variant stock
	// decrements in a single transaction. A failed decrement rolls the
	// whole order back and surfaces as *domain.StockError.
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f ListFilter) ([]domain.Order, int, error)
	// UpdateStatus applies a partial status/paymentStatus change together
	// with its stock side effects (restock on cancel, re-reserve on
	// un-cancel) in one transaction.
	UpdateStatus(ctx context.Context, id string, status, paymentStatus *string) (*domain.Order, error)
}
