package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pcparts-backend/internal/domain"
	cartrepo "pcparts-backend/internal/repository/cart"
	orderrepo "pcparts-backend/internal/repository/order"
)

type Service struct {
	repo     orderRepo
	products productRepo
	carts    cartCleaner
	logger   zerolog.Logger
}

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f orderrepo.ListFilter) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, id string, status, paymentStatus *string) (*domain.Order, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type cartCleaner interface {
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	RemoveItems(ctx context.Context, cartID string, refs []cartrepo.LineRef) error
}

func New(repo orderrepo.Repository, products productRepo, carts cartCleaner, logger zerolog.Logger) *Service {
	return &Service{repo: repo, products: products, carts: carts, logger: logger}
}

type ItemInput struct {
	ProductID  string `json:"productId"`
	VariantSKU string `json:"variantSku"`
	Quantity   int    `json:"quantity"`
}

type CreateInput struct {
	UserID          *string                `json:"-"`
	GuestInfo       *domain.GuestInfo      `json:"guestInfo"`
	Items           []ItemInput            `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	Notes           string                 `json:"notes"`
}

// Create prices and places an order. Items are resolved in submission order;
// the first failing item aborts the whole order. Prices come from the current
// catalog with the product discount applied, never from the client. The
// repository write reserves stock atomically with the insert.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, domain.Invalid("order must contain at least one item")
	}
	if !domain.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.Invalid("unknown payment method %q", in.PaymentMethod)
	}
	if err := validateShipping(in.ShippingAddress); err != nil {
		return nil, err
	}
	if in.GuestInfo != nil && strings.TrimSpace(in.GuestInfo.Email) == "" {
		return nil, domain.Invalid("guest email required")
	}

	o := domain.Order{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		IsGuest:         in.UserID == nil,
		GuestInfo:       in.GuestInfo,
		Status:          domain.OrderPending,
		PaymentStatus:   domain.PaymentUnpaid,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Notes:           strings.TrimSpace(in.Notes),
		IsActive:        true,
	}
	if err := o.ValidateParty(); err != nil {
		return nil, err
	}

	for _, item := range in.Items {
		if item.Quantity < 1 {
			return nil, domain.Invalid("quantity must be at least 1")
		}
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("product %s: %w", item.ProductID, domain.ErrNotFound)
			}
			return nil, err
		}
		if !product.IsActive {
			return nil, domain.Invalid("product %q is not available", product.Name)
		}
		variant := product.FindVariant(item.VariantSKU)
		if variant == nil {
			return nil, domain.Invalid("variant %q not found for product %q", item.VariantSKU, product.Name)
		}
		if variant.Stock < item.Quantity {
			return nil, &domain.StockError{ProductName: product.Name, SKU: variant.SKU, Available: variant.Stock}
		}
		o.Items = append(o.Items, domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			VariantSKU:  variant.SKU,
			Quantity:    item.Quantity,
			PriceCents:  domain.DiscountedPriceCents(variant.PriceCents, product.DiscountPercent),
		})
	}
	o.RecomputeTotal()

	created, err := s.repo.Create(ctx, o)
	if err != nil {
		return nil, err
	}

	if in.UserID != nil {
		s.cleanCart(ctx, *in.UserID, in.Items)
	}
	return created, nil
}

// cleanCart removes the ordered lines from the buyer's active cart. The order
// is already placed, so failures here are logged and swallowed.
func (s *Service) cleanCart(ctx context.Context, userID string, items []ItemInput) {
	cart, err := s.carts.GetActiveByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("cart cleanup: load failed")
		}
		return
	}
	refs := make([]cartrepo.LineRef, 0, len(items))
	for _, it := range items {
		refs = append(refs, cartrepo.LineRef{ProductID: it.ProductID, VariantSKU: it.VariantSKU})
	}
	if err := s.carts.RemoveItems(ctx, cart.ID, refs); err != nil {
		s.logger.Warn().Err(err).Str("cart_id", cart.ID).Msg("cart cleanup: remove failed")
	}
}

type StatusInput struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"paymentStatus"`
}

// UpdateStatus applies a partial status change. Stock side effects of moving
// into or out of cancelled happen inside the repository transaction.
func (s *Service) UpdateStatus(ctx context.Context, id string, in StatusInput) (*domain.Order, error) {
	if in.Status == nil && in.PaymentStatus == nil {
		return nil, domain.Invalid("status or paymentStatus required")
	}
	if in.Status != nil && !domain.ValidOrderStatus(*in.Status) {
		return nil, domain.Invalid("unknown order status %q", *in.Status)
	}
	if in.PaymentStatus != nil && !domain.ValidPaymentStatus(*in.PaymentStatus) {
		return nil, domain.Invalid("unknown payment status %q", *in.PaymentStatus)
	}
	return s.repo.UpdateStatus(ctx, id, in.Status, in.PaymentStatus)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f orderrepo.ListFilter) (domain.Page[domain.Order], error) {
	f.Normalize(10)
	if f.Status != "" && !domain.ValidOrderStatus(f.Status) {
		return domain.Page[domain.Order]{}, domain.Invalid("unknown order status %q", f.Status)
	}
	if f.PaymentStatus != "" && !domain.ValidPaymentStatus(f.PaymentStatus) {
		return domain.Page[domain.Order]{}, domain.Invalid("unknown payment status %q", f.PaymentStatus)
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}
	return domain.NewPage(items, total, f.ListParams), nil
}

// ListByUser pages the authenticated user's own orders.
func (s *Service) ListByUser(ctx context.Context, userID string, p domain.ListParams) (domain.Page[domain.Order], error) {
	p.Normalize(10)
	items, total, err := s.repo.List(ctx, orderrepo.ListFilter{ListParams: p, UserID: userID})
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}
	return domain.NewPage(items, total, p), nil
}

func validateShipping(a domain.ShippingAddress) error {
	switch {
	case strings.TrimSpace(a.Street) == "":
		return domain.Invalid("shipping street required")
	case strings.TrimSpace(a.City) == "":
		return domain.Invalid("shipping city required")
	case strings.TrimSpace(a.Country) == "":
		return domain.Invalid("shipping country required")
	case strings.TrimSpace(a.RecipientName) == "":
		return domain.Invalid("shipping recipient name required")
	}
	return nil
}
