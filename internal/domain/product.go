package domain

import "time"

// LowStockThreshold is the stock level below which the storefront flags a
// product as running out.
const LowStockThreshold = 6

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PriceCents  int64     `json:"priceCents"`
	Unit        string    `json:"unit"`
	Description string    `json:"description,omitempty"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category,omitempty"`
	Subcategory string    `json:"subcategory,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p Product) SoldOut() bool { return p.Stock == 0 }

func (p Product) LowStock() bool { return p.Stock > 0 && p.Stock < LowStockThreshold }
