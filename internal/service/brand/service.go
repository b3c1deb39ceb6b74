package brand

import (
	"context"
	"strings"

	"pcparts-backend/internal/domain"
	brandrepo "pcparts-backend/internal/repository/brand"
)

type Service struct {
	repo brandrepo.Repository
}

func New(repo brandrepo.Repository) *Service {
	return &Service{repo: repo}
}

type Input struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Brand, error) {
	b, err := build(in)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, *b)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Brand, error) {
	b, err := build(in)
	if err != nil {
		return nil, err
	}
	b.ID = id
	return s.repo.Update(ctx, *b)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Brand, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, p domain.ListParams) (domain.Page[domain.Brand], error) {
	p.Normalize(10)
	items, total, err := s.repo.List(ctx, p)
	if err != nil {
		return domain.Page[domain.Brand]{}, err
	}
	return domain.NewPage(items, total, p), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.SetActive(ctx, id, false)
}

func build(in Input) (*domain.Brand, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("brand name required")
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &domain.Brand{
		Name:        name,
		Slug:        domain.Slugify(name),
		Description: strings.TrimSpace(in.Description),
		IsActive:    active,
	}, nil
}
