package meds

import "errors"

var ErrInvalidAmount = errors.New("invalid refill amount")

// LowStockThreshold is the stock ratio at or below which a medication is
// considered low on stock.
const LowStockThreshold = 0.25

// Consume deducts one unit from the medication's inventory, floored at zero.
// Consuming an empty inventory is a no-op, not an error.
func Consume(m Medication) Medication {
	if m.CurrentQuantity > 0 {
		m.CurrentQuantity--
	}
	return m
}

// Replenish adds amount units to the medication's inventory. Amounts that are
// not positive are rejected and the medication is returned unchanged.
func Replenish(m Medication, amount int) (Medication, error) {
	if amount <= 0 {
		return m, ErrInvalidAmount
	}
	m.CurrentQuantity += amount
	return m, nil
}

// StockRatio is currentQuantity over initialQuantity clamped to [0,1].
// A medication with no reference package size has ratio 0.
func StockRatio(m Medication) float64 {
	if m.InitialQuantity <= 0 {
		return 0
	}
	r := float64(m.CurrentQuantity) / float64(m.InitialQuantity)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// LowStock reports whether the medication has crossed the low-stock threshold.
func LowStock(m Medication) bool {
	return StockRatio(m) <= LowStockThreshold
}
