package cart

import (
	"context"
	"errors"
	"testing"

	"pcparts-backend/internal/domain"
	cartrepo "pcparts-backend/internal/repository/cart"
)

type stubCartRepo struct {
	carts map[string]*domain.Cart // keyed by cart id
	byUser map[string]string
	nextID int
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{carts: map[string]*domain.Cart{}, byUser: map[string]string{}}
}

func (s *stubCartRepo) Create(_ context.Context, c domain.Cart) (*domain.Cart, error) {
	s.nextID++
	c.ID = string(rune('a' + s.nextID))
	c.IsActive = true
	c.RecomputeTotal()
	s.carts[c.ID] = &c
	s.byUser[c.UserID] = c.ID
	return &c, nil
}

func (s *stubCartRepo) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	c, ok := s.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *stubCartRepo) GetActiveByUser(_ context.Context, userID string) (*domain.Cart, error) {
	id, ok := s.byUser[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.carts[id], nil
}

func (s *stubCartRepo) List(context.Context, domain.ListParams) ([]domain.Cart, int, error) {
	return nil, 0, nil
}

func (s *stubCartRepo) ReplaceItems(_ context.Context, cartID string, items []domain.CartItem) error {
	c, ok := s.carts[cartID]
	if !ok {
		return domain.ErrNotFound
	}
	c.Items = items
	c.RecomputeTotal()
	return nil
}

func (s *stubCartRepo) RemoveItems(_ context.Context, cartID string, refs []cartrepo.LineRef) error {
	c, ok := s.carts[cartID]
	if !ok {
		return domain.ErrNotFound
	}
	drop := map[cartrepo.LineRef]bool{}
	for _, ref := range refs {
		drop[ref] = true
	}
	var kept []domain.CartItem
	for _, it := range c.Items {
		if !drop[cartrepo.LineRef{ProductID: it.ProductID, VariantSKU: it.VariantSKU}] {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	c.RecomputeTotal()
	return nil
}

func (s *stubCartRepo) Delete(_ context.Context, id string) error {
	delete(s.carts, id)
	return nil
}

type stubProductRepo struct {
	products map[string]*domain.Product
}

func (s *stubProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func testProducts() *stubProductRepo {
	return &stubProductRepo{products: map[string]*domain.Product{
		"p1": {
			ID:   "p1",
			Name: "Ryzen 7 9700X",
			Variants: []domain.Variant{
				{SKU: "CPU-9700X", PriceCents: 35900, Stock: 5},
			},
		},
		"p2": {
			ID:   "p2",
			Name: "RTX 4070",
			Variants: []domain.Variant{
				{SKU: "GPU-4070-12G", PriceCents: 59900, Stock: 2},
			},
		},
	}}
}

func TestAddToCartCreatesCart(t *testing.T) {
	repo := newStubCartRepo()
	svc := New(repo, testProducts())

	cart, err := svc.AddToCart(context.Background(), "u1", AddInput{ProductID: "p1", VariantSKU: "CPU-9700X", Quantity: 2})
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(cart.Items))
	}
	if cart.Items[0].PriceAtAddCents != 35900 {
		t.Errorf("priceAtAdd = %d, want 35900", cart.Items[0].PriceAtAddCents)
	}
	if cart.TotalCents != 71800 {
		t.Errorf("total = %d, want 71800", cart.TotalCents)
	}
}

func TestAddToCartMergesExistingLine(t *testing.T) {
	repo := newStubCartRepo()
	svc := New(repo, testProducts())
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, "u1", AddInput{ProductID: "p1", VariantSKU: "CPU-9700X", Quantity: 2}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := svc.AddToCart(ctx, "u1", AddInput{ProductID: "p1", VariantSKU: "CPU-9700X", Quantity: 3})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("items = %d, want 1 merged line", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", cart.Items[0].Quantity)
	}
}

func TestAddToCartRejectsMergedQuantityOverStock(t *testing.T) {
	repo := newStubCartRepo()
	svc := New(repo, testProducts())
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, "u1", AddInput{ProductID: "p2", VariantSKU: "GPU-4070-12G", Quantity: 2}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	_, err := svc.AddToCart(ctx, "u1", AddInput{ProductID: "p2", VariantSKU: "GPU-4070-12G", Quantity: 1})
	var stockErr *domain.StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("err = %v, want StockError", err)
	}
	if stockErr.Available != 2 {
		t.Errorf("available = %d, want 2", stockErr.Available)
	}
}

func TestAddToCartUnknownVariant(t *testing.T) {
	svc := New(newStubCartRepo(), testProducts())

	_, err := svc.AddToCart(context.Background(), "u1", AddInput{ProductID: "p1", VariantSKU: "NOPE", Quantity: 1})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSyncRejectsAllOnSingleInvalidItem(t *testing.T) {
	repo := newStubCartRepo()
	svc := New(repo, testProducts())

	_, err := svc.Sync(context.Background(), "u1", []SyncItem{
		{ProductID: "p1", VariantSKU: "CPU-9700X", Quantity: 1},
		{ProductID: "p2", VariantSKU: "GPU-4070-12G", Quantity: 3}, // only 2 in stock
	})
	var stockErr *domain.StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("err = %v, want StockError", err)
	}
	if len(repo.carts) != 0 {
		t.Errorf("no cart should have been created, got %d", len(repo.carts))
	}
}

func TestSyncMergesWithoutRecheck(t *testing.T) {
	repo := newStubCartRepo()
	svc := New(repo, testProducts())
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, "u1", AddInput{ProductID: "p2", VariantSKU: "GPU-4070-12G", Quantity: 2}); err != nil {
		t.Fatalf("seed add: %v", err)
	}
	// Each side individually fits stock; the merged quantity does not, and
	// sync accepts it anyway.
	cart, err := svc.Sync(ctx, "u1", []SyncItem{
		{ProductID: "p2", VariantSKU: "GPU-4070-12G", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if cart.Items[0].Quantity != 4 {
		t.Errorf("quantity = %d, want 4", cart.Items[0].Quantity)
	}
}

func TestSyncCreatesCartWithServerPrices(t *testing.T) {
	repo := newStubCartRepo()
	svc := New(repo, testProducts())

	cart, err := svc.Sync(context.Background(), "u1", []SyncItem{
		{ProductID: "p1", VariantSKU: "CPU-9700X", Quantity: 1},
		{ProductID: "p2", VariantSKU: "GPU-4070-12G", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(cart.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(cart.Items))
	}
	if cart.TotalCents != 35900+59900 {
		t.Errorf("total = %d, want %d", cart.TotalCents, 35900+59900)
	}
}

func TestRemoveItem(t *testing.T) {
	repo := newStubCartRepo()
	svc := New(repo, testProducts())
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, "u1", AddInput{ProductID: "p1", VariantSKU: "CPU-9700X", Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.AddToCart(ctx, "u1", AddInput{ProductID: "p2", VariantSKU: "GPU-4070-12G", Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart, err := svc.RemoveItem(ctx, "u1", "p1", "CPU-9700X")
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != "p2" {
		t.Fatalf("unexpected items after remove: %+v", cart.Items)
	}
	if cart.TotalCents != 59900 {
		t.Errorf("total = %d, want 59900", cart.TotalCents)
	}
}
