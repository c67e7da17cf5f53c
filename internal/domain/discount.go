package domain

import "math"

// Crypto discount tiers over the order subtotal, in cents. Upper bounds are
// inclusive: a 100.00 subtotal still earns the top rate. Above the last
// bound the 5% floor applies.
const (
	tierSmallCents  = 10_000
	tierMediumCents = 25_000
	tierLargeCents  = 50_000
)

// DiscountRate maps a subtotal and payment method to a discount rate.
// Cash payments never earn a discount.
func DiscountRate(subtotalCents int64, method PaymentMethod) float64 {
	if method != PayCrypto || subtotalCents <= 0 {
		return 0
	}
	switch {
	case subtotalCents <= tierSmallCents:
		return 0.15
	case subtotalCents <= tierMediumCents:
		return 0.10
	case subtotalCents <= tierLargeCents:
		return 0.08
	default:
		return 0.05
	}
}

// FinalPriceCents applies a discount rate to a subtotal, rounding to whole
// cents.
func FinalPriceCents(subtotalCents int64, rate float64) int64 {
	return int64(math.Round(float64(subtotalCents) * (1 - rate)))
}
