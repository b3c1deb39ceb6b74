package product

import (
	"context"
	"strings"

	"pcparts-backend/internal/domain"
	brandrepo "pcparts-backend/internal/repository/brand"
	categoryrepo "pcparts-backend/internal/repository/category"
	productrepo "pcparts-backend/internal/repository/product"
)

type Service struct {
	repo       productrepo.Repository
	categories categoryRepo
	brands     brandRepo
}

type categoryRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

type brandRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Brand, error)
}

func New(repo productrepo.Repository, categories categoryrepo.Repository, brands brandrepo.Repository) *Service {
	return &Service{repo: repo, categories: categories, brands: brands}
}

type VariantInput struct {
	SKU        string            `json:"sku"`
	PriceCents int64             `json:"priceCents"`
	Stock      int               `json:"stock"`
	Attributes map[string]string `json:"attributes"`
	Images     []string          `json:"images"`
}

type Input struct {
	Name              string         `json:"name"`
	BrandID           string         `json:"brandId"`
	CategoryID        string         `json:"categoryId"`
	ProductType       string         `json:"productType"`
	Description       string         `json:"description"`
	AllowedAttributes []string       `json:"allowedAttributes"`
	Images            []string       `json:"images"`
	DiscountPercent   int            `json:"discount"`
	IsActive          *bool          `json:"isActive"`
	Variants          []VariantInput `json:"variants"`
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	p, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, *p)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	p, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return s.repo.Update(ctx, *p)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) List(ctx context.Context, p domain.ListParams) (domain.Page[domain.Product], error) {
	p.Normalize(10)
	items, total, err := s.repo.List(ctx, productrepo.ListFilter{ListParams: p})
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}
	return domain.NewPage(items, total, p), nil
}

// ListActive backs the public storefront listing.
func (s *Service) ListActive(ctx context.Context, p domain.ListParams) (domain.Page[domain.Product], error) {
	p.Normalize(10)
	items, total, err := s.repo.List(ctx, productrepo.ListFilter{ListParams: p, ActiveOnly: true})
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}
	return domain.NewPage(items, total, p), nil
}

// ListByCategorySlug resolves a category slug and pages its products.
func (s *Service) ListByCategorySlug(ctx context.Context, slug string, p domain.ListParams) (domain.Page[domain.Product], error) {
	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}
	p.Normalize(10)
	items, total, err := s.repo.List(ctx, productrepo.ListFilter{ListParams: p, CategoryID: category.ID, ActiveOnly: true})
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}
	return domain.NewPage(items, total, p), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.SetActive(ctx, id, false)
}

// build validates references and variant attributes and derives slugs.
func (s *Service) build(ctx context.Context, in Input) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("product name required")
	}
	if !domain.ValidProductType(in.ProductType) {
		return nil, domain.Invalid("unknown product type %q", in.ProductType)
	}
	if in.DiscountPercent < 0 || in.DiscountPercent > 100 {
		return nil, domain.Invalid("discount must be between 0 and 100")
	}
	if len(in.Variants) == 0 {
		return nil, domain.Invalid("at least one variant required")
	}

	if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if _, err := s.brands.GetByID(ctx, in.BrandID); err != nil {
		return nil, err
	}

	p := domain.Product{
		Name:              name,
		Slug:              domain.Slugify(name),
		BrandID:           in.BrandID,
		CategoryID:        in.CategoryID,
		ProductType:       in.ProductType,
		Description:       strings.TrimSpace(in.Description),
		AllowedAttributes: in.AllowedAttributes,
		Images:            in.Images,
		DiscountPercent:   in.DiscountPercent,
		IsActive:          true,
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	seen := make(map[string]bool, len(in.Variants))
	for _, v := range in.Variants {
		sku := strings.TrimSpace(v.SKU)
		if sku == "" {
			return nil, domain.Invalid("variant sku required")
		}
		if seen[sku] {
			return nil, domain.Invalid("duplicate variant sku %q", sku)
		}
		seen[sku] = true
		if v.PriceCents < 0 {
			return nil, domain.Invalid("variant %q price must not be negative", sku)
		}
		if v.Stock < 0 {
			return nil, domain.Invalid("variant %q stock must not be negative", sku)
		}
		p.Variants = append(p.Variants, domain.Variant{
			SKU:        sku,
			Slug:       domain.Slugify(sku),
			PriceCents: v.PriceCents,
			Stock:      v.Stock,
			Attributes: v.Attributes,
			Images:     v.Images,
		})
	}

	if err := p.ValidateAttributes(); err != nil {
		return nil, err
	}
	return &p, nil
}
