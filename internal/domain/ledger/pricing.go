package ledger

import "github.com/shopspring/decimal"

const (
	// CurrencyPlaces precisión monetaria de subtotales y totales.
	CurrencyPlaces = 2
	// DiscountPlaces decimales de discount_percent (NUMERIC(7,4)).
	DiscountPlaces = 4
)

var (
	hundred     = decimal.NewFromInt(100)
	maxDiscount = hundred
)

// SubtotalCalculator calcula el subtotal de una línea (servicio de dominio).
// Subtotal = PrecioUnitario * Cantidad * (1 - Descuento/100), redondeado a CurrencyPlaces.
func SubtotalCalculator(unitPrice decimal.Decimal, quantity int64, discountPercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))
	return unitPrice.Mul(decimal.NewFromInt(quantity)).Mul(factor).Round(CurrencyPlaces)
}

// ValidDiscount indica si el descuento está en [0, 100) y no tiene más de DiscountPlaces
// decimales significativos: lo que se guarda es exactamente lo que se usó para el subtotal.
func ValidDiscount(d decimal.Decimal) bool {
	if !d.Equal(d.Round(DiscountPlaces)) {
		return false
	}
	return !d.IsNegative() && d.LessThan(maxDiscount)
}

// ClampZero evita que un agregado corrido quede negativo por deriva de redondeo.
func ClampZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
