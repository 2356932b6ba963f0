package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Movimientos-api/internal/domain/ledger"
)

// Money importe en la moneda del comercio. En JSON viaja siempre con
// ledger.CurrencyPlaces decimales ("10.00"), nunca recortado ("10").
type Money struct {
	decimal.Decimal
}

// NewMoney envuelve un decimal como importe.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(ledger.CurrencyPlaces) + `"`), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	return m.Decimal.UnmarshalJSON(b)
}
