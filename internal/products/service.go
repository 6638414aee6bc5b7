package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
)

// Service wraps product persistence with input normalisation.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Create(ctx context.Context, req UpsertProductRequest) (Product, error) {
	p, err := fromRequest(0, req)
	if err != nil {
		return Product{}, err
	}
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpsertProductRequest) (Product, error) {
	p, err := fromRequest(id, req)
	if err != nil {
		return Product{}, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func fromRequest(id int64, req UpsertProductRequest) (Product, error) {
	if req.UnitPrice.IsNegative() {
		return Product{}, fmt.Errorf("%w: unit_price must not be negative", httpx.ErrValidation)
	}
	if req.TaxRate.IsNegative() {
		return Product{}, fmt.Errorf("%w: tax_rate must not be negative", httpx.ErrValidation)
	}
	return Product{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		SKU:         strings.TrimSpace(req.SKU),
		Description: strings.TrimSpace(req.Description),
		UnitPrice:   req.UnitPrice,
		TaxRate:     req.TaxRate,
		HSNCode:     strings.TrimSpace(req.HSNCode),
	}, nil
}
