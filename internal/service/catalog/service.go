package catalog

import (
	"context"
	"strings"
	"time"

	"plugdrop/internal/domain"
	"plugdrop/internal/event"
	productrepo "plugdrop/internal/repository/product"
)

// Service covers the public product listing and the admin panel's product
// management. Every committed mutation lands on the change feed.
type Service struct {
	repo   productrepo.Repository
	events event.Publisher
}

func New(repo productrepo.Repository, events event.Publisher) *Service {
	if events == nil {
		events = event.Nop{}
	}
	return &Service{repo: repo, events: events}
}

// ProductInput carries admin-editable product fields.
type ProductInput struct {
	Name        string `json:"name"`
	PriceCents  int64  `json:"priceCents"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
	Stock       int    `json:"stock"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.ValidationError{Reason: "name required"}
	}
	if in.PriceCents < 0 {
		return domain.ValidationError{Reason: "price must not be negative"}
	}
	if in.Stock < 0 {
		return domain.ValidationError{Reason: "stock must not be negative"}
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor domain.User, in ProductInput) (*domain.Product, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.AuthorizationError{Reason: "only admins manage the catalog"}
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, domain.Product{
		Name:        strings.TrimSpace(in.Name),
		PriceCents:  in.PriceCents,
		Unit:        strings.TrimSpace(in.Unit),
		Description: strings.TrimSpace(in.Description),
		Stock:       in.Stock,
		Category:    strings.TrimSpace(in.Category),
		Subcategory: strings.TrimSpace(in.Subcategory),
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, created.ID, event.ActionCreated)
	return created, nil
}

// Update replaces the editable fields, stock included. An admin stock edit
// is a plain write, not a reservation; checkout and cancel are the only
// paths that reserve or release.
func (s *Service) Update(ctx context.Context, actor domain.User, id string, in ProductInput) (*domain.Product, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.AuthorizationError{Reason: "only admins manage the catalog"}
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		PriceCents:  in.PriceCents,
		Unit:        strings.TrimSpace(in.Unit),
		Description: strings.TrimSpace(in.Description),
		Stock:       in.Stock,
		Category:    strings.TrimSpace(in.Category),
		Subcategory: strings.TrimSpace(in.Subcategory),
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, updated.ID, event.ActionUpdated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actor domain.User, id string) error {
	if actor.Role != domain.RoleAdmin {
		return domain.AuthorizationError{Reason: "only admins manage the catalog"}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, event.ActionDeleted)
	return nil
}

func (s *Service) publish(ctx context.Context, id string, action event.Action) {
	_ = s.events.Publish(ctx, event.Change{
		Entity: event.EntityProduct,
		ID:     id,
		Action: action,
		At:     time.Now().UTC(),
	})
}
