package cart

import (
	"context"

	"pcparts-backend/internal/domain"
	cartrepo "pcparts-backend/internal/repository/cart"
)

type Service struct {
	repo     cartRepo
	products productRepo
}

type cartRepo interface {
	Create(ctx context.Context, c domain.Cart) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	List(ctx context.Context, p domain.ListParams) ([]domain.Cart, int, error)
	ReplaceItems(ctx context.Context, cartID string, items []domain.CartItem) error
	RemoveItems(ctx context.Context, cartID string, refs []cartrepo.LineRef) error
	Delete(ctx context.Context, id string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartrepo.Repository, products productRepo) *Service {
	return &Service{repo: repo, products: products}
}

type AddInput struct {
	ProductID  string `json:"productId"`
	VariantSKU string `json:"variantSku"`
	Quantity   int    `json:"quantity"`
}

type SyncItem struct {
	ProductID  string `json:"productId"`
	VariantSKU string `json:"variantSku"`
	Quantity   int    `json:"quantity"`
}

// AddToCart validates the variant and stock, then merges the line into the
// user's single active cart, creating one when absent. Prices are always
// snapshotted server-side.
func (s *Service) AddToCart(ctx context.Context, userID string, in AddInput) (*domain.Cart, error) {
	if in.Quantity < 1 {
		return nil, domain.Invalid("quantity must be at least 1")
	}
	product, variant, err := s.lookupVariant(ctx, in.ProductID, in.VariantSKU)
	if err != nil {
		return nil, err
	}
	if variant.Stock < in.Quantity {
		return nil, &domain.StockError{ProductName: product.Name, SKU: variant.SKU, Available: variant.Stock}
	}

	cart, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		if err != domain.ErrNotFound {
			return nil, err
		}
		return s.repo.Create(ctx, domain.Cart{
			UserID: userID,
			Items: []domain.CartItem{{
				ProductID:       in.ProductID,
				VariantSKU:      in.VariantSKU,
				Quantity:        in.Quantity,
				PriceAtAddCents: variant.PriceCents,
			}},
		})
	}

	merged := false
	for i := range cart.Items {
		it := &cart.Items[i]
		if it.ProductID == in.ProductID && it.VariantSKU == in.VariantSKU {
			newQty := it.Quantity + in.Quantity
			if newQty > variant.Stock {
				return nil, &domain.StockError{ProductName: product.Name, SKU: variant.SKU, Available: variant.Stock}
			}
			it.Quantity = newQty
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:       in.ProductID,
			VariantSKU:      in.VariantSKU,
			Quantity:        in.Quantity,
			PriceAtAddCents: variant.PriceCents,
		})
	}

	if err := s.repo.ReplaceItems(ctx, cart.ID, cart.Items); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

// Sync merges guest-submitted line items into the user's cart. Every item is
// validated up front; the first invalid item rejects the whole sync. Matching
// lines merge by summing quantities; the summed quantity is deliberately not
// re-checked against stock.
func (s *Service) Sync(ctx context.Context, userID string, items []SyncItem) (*domain.Cart, error) {
	if len(items) == 0 {
		return nil, domain.Invalid("items required")
	}

	prices := make(map[string]int64, len(items))
	for _, in := range items {
		if in.Quantity < 1 {
			return nil, domain.Invalid("quantity must be at least 1")
		}
		product, variant, err := s.lookupVariant(ctx, in.ProductID, in.VariantSKU)
		if err != nil {
			return nil, err
		}
		if variant.Stock < in.Quantity {
			return nil, &domain.StockError{ProductName: product.Name, SKU: variant.SKU, Available: variant.Stock}
		}
		prices[in.ProductID+"/"+in.VariantSKU] = variant.PriceCents
	}

	cart, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		if err != domain.ErrNotFound {
			return nil, err
		}
		fresh := domain.Cart{UserID: userID}
		for _, in := range items {
			fresh.Items = append(fresh.Items, domain.CartItem{
				ProductID:       in.ProductID,
				VariantSKU:      in.VariantSKU,
				Quantity:        in.Quantity,
				PriceAtAddCents: prices[in.ProductID+"/"+in.VariantSKU],
			})
		}
		return s.repo.Create(ctx, fresh)
	}

	for _, in := range items {
		merged := false
		for i := range cart.Items {
			it := &cart.Items[i]
			if it.ProductID == in.ProductID && it.VariantSKU == in.VariantSKU {
				it.Quantity += in.Quantity
				merged = true
				break
			}
		}
		if !merged {
			cart.Items = append(cart.Items, domain.CartItem{
				ProductID:       in.ProductID,
				VariantSKU:      in.VariantSKU,
				Quantity:        in.Quantity,
				PriceAtAddCents: prices[in.ProductID+"/"+in.VariantSKU],
			})
		}
	}

	if err := s.repo.ReplaceItems(ctx, cart.ID, cart.Items); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

func (s *Service) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.repo.GetActiveByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Cart, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, p domain.ListParams) (domain.Page[domain.Cart], error) {
	p.Normalize(10)
	items, total, err := s.repo.List(ctx, p)
	if err != nil {
		return domain.Page[domain.Cart]{}, err
	}
	return domain.NewPage(items, total, p), nil
}

// RemoveItem drops one (product, sku) line from the user's active cart.
func (s *Service) RemoveItem(ctx context.Context, userID, productID, variantSKU string) (*domain.Cart, error) {
	cart, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItems(ctx, cart.ID, []cartrepo.LineRef{{ProductID: productID, VariantSKU: variantSKU}}); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

// Clear empties the user's active cart.
func (s *Service) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceItems(ctx, cart.ID, nil); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) lookupVariant(ctx context.Context, productID, sku string) (*domain.Product, *domain.Variant, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	variant := product.FindVariant(sku)
	if variant == nil {
		return nil, nil, domain.ErrNotFound
	}
	return product, variant, nil
}
