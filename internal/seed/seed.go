// Package seed loads the demo storefront: three accounts, one per role,
// and a small catalog. Used by cmd/seed against Postgres and by the API
// process when it starts on the memory backend.
package seed

import (
	"context"
	"errors"
	"io"
	"log"

	"plugdrop/internal/domain"
	productrepo "plugdrop/internal/repository/product"
	userrepo "plugdrop/internal/repository/user"

	"golang.org/x/crypto/bcrypt"
)

type account struct {
	username string
	password string
	role     domain.Role
}

var accounts = []account{
	{username: "maria", password: "password123", role: domain.RoleCustomer},
	{username: "jonas", password: "password123", role: domain.RoleCourier},
	{username: "admin", password: "password123", role: domain.RoleAdmin},
}

var products = []domain.Product{
	{Name: "Green", PriceCents: 700, Unit: "g", Description: "House blend", Stock: 20, Category: "flower", Subcategory: "hybrid"},
	{Name: "White", PriceCents: 8000, Unit: "g", Description: "Top shelf", Stock: 10, Category: "concentrate"},
	{Name: "Brownie", PriceCents: 1200, Unit: "pc", Description: "Baked fresh", Stock: 15, Category: "edible"},
	{Name: "Gummies", PriceCents: 1500, Unit: "pack", Stock: 25, Category: "edible"},
	{Name: "Pre-roll", PriceCents: 900, Unit: "pc", Stock: 30, Category: "flower", Subcategory: "sativa"},
}

// Apply inserts the demo data. Rows that already exist are left alone, so
// seeding is safe to run repeatedly.
func Apply(ctx context.Context, users userrepo.Repository, catalog productrepo.Repository, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		_, err = users.Create(ctx, domain.User{
			Username:     a.username,
			PasswordHash: string(hash),
			Role:         a.role,
		})
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				logger.Printf("seed: user %s already present", a.username)
				continue
			}
			return err
		}
		logger.Printf("seed: created user %s (%s)", a.username, a.role)
	}

	existing, err := catalog.List(ctx)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[p.Name] = true
	}
	for _, p := range products {
		if have[p.Name] {
			logger.Printf("seed: product %s already present", p.Name)
			continue
		}
		created, err := catalog.Create(ctx, p)
		if err != nil {
			return err
		}
		logger.Printf("seed: created product %s id=%s", created.Name, created.ID)
	}
	return nil
}
