package domain

// CartLine is a customer's in-progress selection of a single product.
// Quantities are validated against live catalog stock, not a snapshot;
// checkout re-validates them at commit time.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
