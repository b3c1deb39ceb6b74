package category

import (
	"context"
	"strings"

	"pcparts-backend/internal/domain"
	categoryrepo "pcparts-backend/internal/repository/category"
)

type Service struct {
	repo categoryrepo.Repository
}

func New(repo categoryrepo.Repository) *Service {
	return &Service{repo: repo}
}

type Input struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ParentID    *string `json:"parentId"`
	SortOrder   int     `json:"sortOrder"`
	IsActive    *bool   `json:"isActive"`
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Category, error) {
	c, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, *c)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Category, error) {
	c, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return s.repo.Update(ctx, *c)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) List(ctx context.Context, p domain.ListParams) (domain.Page[domain.Category], error) {
	p.Normalize(10)
	items, total, err := s.repo.List(ctx, p)
	if err != nil {
		return domain.Page[domain.Category]{}, err
	}
	return domain.NewPage(items, total, p), nil
}

// ListWithProductCounts backs the public category listing.
func (s *Service) ListWithProductCounts(ctx context.Context, p domain.ListParams) (domain.Page[domain.CategoryWithCount], error) {
	p.Normalize(100)
	items, total, err := s.repo.ListWithProductCounts(ctx, p)
	if err != nil {
		return domain.Page[domain.CategoryWithCount]{}, err
	}
	return domain.NewPage(items, total, p), nil
}

// Delete soft-disables the category.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.SetActive(ctx, id, false)
}

// build validates input and derives slug and level. A parent must exist and
// the resulting level may not exceed the three-level maximum.
func (s *Service) build(ctx context.Context, in Input) (*domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("category name required")
	}

	level := 0
	if in.ParentID != nil && *in.ParentID != "" {
		parent, err := s.repo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		level = parent.Level + 1
		if level > domain.MaxCategoryLevel {
			return nil, domain.Invalid("category nesting exceeds %d levels", domain.MaxCategoryLevel+1)
		}
	} else {
		in.ParentID = nil
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	sortOrder := in.SortOrder
	if sortOrder == 0 {
		sortOrder = 1
	}

	return &domain.Category{
		Name:        name,
		Slug:        domain.Slugify(name),
		Description: strings.TrimSpace(in.Description),
		ParentID:    in.ParentID,
		Level:       level,
		SortOrder:   sortOrder,
		IsActive:    active,
	}, nil
}
