package user

import (
	"context"
	"errors"
	"testing"

	"plugdrop/internal/domain"
)

func TestCreateAndLookup(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created, err := m.Create(ctx, domain.User{Username: "Maria", PasswordHash: "hash", Role: domain.RoleCustomer})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("create assigned no id")
	}
	if created.Username != "maria" {
		t.Errorf("username = %q, want lowercased", created.Username)
	}

	byID, err := m.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Username != "maria" {
		t.Errorf("get by id = %+v, want the created user", byID)
	}

	// Lookup is case-insensitive.
	byName, err := m.GetByUsername(ctx, "MARIA")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != created.ID {
		t.Errorf("get by username resolved %s, want %s", byName.ID, created.ID)
	}
}

func TestDuplicateUsernameRejected(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Create(ctx, domain.User{Username: "maria", PasswordHash: "x", Role: domain.RoleCustomer}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := m.Create(ctx, domain.User{Username: "Maria", PasswordHash: "y", Role: domain.RoleCourier}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("duplicate: got %v, want ErrAlreadyExists", err)
	}
}

func TestMissingUserIsNotFound(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("get by id: got %v, want ErrNotFound", err)
	}
	if _, err := m.GetByUsername(ctx, "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("get by username: got %v, want ErrNotFound", err)
	}
}
