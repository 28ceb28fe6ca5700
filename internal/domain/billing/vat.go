// Package billing contiene el cálculo monetario de facturas (IVA y total).
package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/parqueo-api/internal/domain"
)

// MoneyPlaces decimales de los montos almacenados.
const MoneyPlaces = 2

// DefaultVATRate tasa de IVA por defecto (12%).
var DefaultVATRate = decimal.RequireFromString("0.12")

// ComputeVAT calcula IVA = round(subtotal × tasa, 2) y total = round(subtotal + IVA, 2).
// decimal.Round redondea la mitad alejándose de cero.
func ComputeVAT(subtotal, rate decimal.Decimal) (vat, total decimal.Decimal) {
	vat = subtotal.Mul(rate).Round(MoneyPlaces)
	total = subtotal.Add(vat).Round(MoneyPlaces)
	return vat, total
}

// ValidateRate exige 0 <= tasa <= 1.
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: vatRate debe estar entre 0 y 1", domain.ErrInvalidInput)
	}
	return nil
}

// ManualTotals arma los montos cuando el cálculo automático está desactivado:
// el total lo envía el cliente y el IVA es el enviado o la diferencia total - subtotal.
func ManualTotals(subtotal, total decimal.Decimal, vat *decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if vat != nil {
		return vat.Round(MoneyPlaces), total.Round(MoneyPlaces)
	}
	return total.Sub(subtotal).Round(MoneyPlaces), total.Round(MoneyPlaces)
}
