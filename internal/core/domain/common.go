package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// MoneyPrecision is the number of decimal places money is rounded to at every boundary.
const MoneyPrecision int32 = 2

// Epsilon is the smallest amount treated as a non-zero balance.
var Epsilon = decimal.New(1, -MoneyPrecision)

// RoundMoney rounds an amount to MoneyPrecision decimal places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPrecision)
}

// IsNegligible reports whether |d| is below Epsilon.
func IsNegligible(d decimal.Decimal) bool {
	return d.Abs().LessThan(Epsilon)
}
