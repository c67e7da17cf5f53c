package catalog

import (
	"context"
	"errors"
	"testing"

	"plugdrop/internal/domain"
	"plugdrop/internal/event"
	productrepo "plugdrop/internal/repository/product"
)

type capturePublisher struct {
	changes []event.Change
}

func (c *capturePublisher) Publish(_ context.Context, ch event.Change) error {
	c.changes = append(c.changes, ch)
	return nil
}

var (
	admin    = domain.User{ID: "adm-1", Role: domain.RoleAdmin}
	customer = domain.User{ID: "cust-1", Role: domain.RoleCustomer}
)

func TestCreateUpdateDeletePublishChanges(t *testing.T) {
	repo := productrepo.NewMemory()
	events := &capturePublisher{}
	svc := New(repo, events)
	ctx := context.Background()

	created, err := svc.Create(ctx, admin, ProductInput{Name: "  Green ", PriceCents: 700, Unit: "g", Stock: 20})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Green" {
		t.Errorf("name = %q, want trimmed", created.Name)
	}

	updated, err := svc.Update(ctx, admin, created.ID, ProductInput{Name: "Green", PriceCents: 900, Unit: "g", Stock: 15})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PriceCents != 900 || updated.Stock != 15 {
		t.Errorf("updated = %+v, want price 900 stock 15", updated)
	}

	if err := svc.Delete(ctx, admin, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("get after delete: got %v, want ErrNotFound", err)
	}

	want := []event.Action{event.ActionCreated, event.ActionUpdated, event.ActionDeleted}
	if len(events.changes) != len(want) {
		t.Fatalf("changes = %d, want %d", len(events.changes), len(want))
	}
	for i, ch := range events.changes {
		if ch.Entity != event.EntityProduct || ch.Action != want[i] {
			t.Errorf("change[%d] = %+v, want product %s", i, ch, want[i])
		}
	}
}

func TestMutationsRequireAdmin(t *testing.T) {
	repo := productrepo.NewMemory()
	svc := New(repo, nil)
	ctx := context.Background()

	var aerr domain.AuthorizationError
	if _, err := svc.Create(ctx, customer, ProductInput{Name: "Green", PriceCents: 700}); !errors.As(err, &aerr) {
		t.Errorf("create: got %v, want AuthorizationError", err)
	}
	if _, err := svc.Update(ctx, customer, "x", ProductInput{Name: "Green"}); !errors.As(err, &aerr) {
		t.Errorf("update: got %v, want AuthorizationError", err)
	}
	if err := svc.Delete(ctx, customer, "x"); !errors.As(err, &aerr) {
		t.Errorf("delete: got %v, want AuthorizationError", err)
	}
}

func TestInputValidation(t *testing.T) {
	svc := New(productrepo.NewMemory(), nil)
	ctx := context.Background()

	cases := []struct {
		name string
		in   ProductInput
	}{
		{"blank name", ProductInput{Name: "  ", PriceCents: 100}},
		{"negative price", ProductInput{Name: "Green", PriceCents: -1}},
		{"negative stock", ProductInput{Name: "Green", PriceCents: 100, Stock: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var verr domain.ValidationError
			if _, err := svc.Create(ctx, admin, tc.in); !errors.As(err, &verr) {
				t.Errorf("got %v, want ValidationError", err)
			}
		})
	}
}

func TestListIsPublic(t *testing.T) {
	repo := productrepo.NewMemory()
	svc := New(repo, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, admin, ProductInput{Name: "Green", PriceCents: 700, Stock: 20}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, admin, ProductInput{Name: "White", PriceCents: 8000, Stock: 10}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("list returned %d products, want 2", len(got))
	}
}
