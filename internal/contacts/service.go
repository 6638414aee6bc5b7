package contacts

import (
	"context"
	"strings"
)

// Service wraps contact persistence with input normalisation.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (Contact, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListContactsRequest) ([]Contact, int, error) {
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Create(ctx context.Context, req UpsertContactRequest) (Contact, error) {
	id, err := s.repo.Create(ctx, fromRequest(0, req))
	if err != nil {
		return Contact{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpsertContactRequest) (Contact, error) {
	if err := s.repo.Update(ctx, fromRequest(id, req)); err != nil {
		return Contact{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func fromRequest(id int64, req UpsertContactRequest) Contact {
	return Contact{
		ID:        id,
		Name:      strings.TrimSpace(req.Name),
		Kind:      ContactKind(req.Kind),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		TaxNumber: strings.TrimSpace(req.TaxNumber),
	}
}
