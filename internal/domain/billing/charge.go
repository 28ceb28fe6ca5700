package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParkingCharge monto de una estadía: horas iniciadas × tarifa por hora, con tope de
// dailyRate por cada día (24 h) iniciado. Replica el trigger reservations_compute_total.
func ParkingCharge(entry, exit time.Time, hourlyRate decimal.Decimal, dailyRate *decimal.Decimal) decimal.Decimal {
	if !exit.After(entry) {
		return decimal.Zero
	}
	d := exit.Sub(entry)
	hours := int64(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}

	if dailyRate == nil {
		return hourlyRate.Mul(decimal.NewFromInt(hours)).Round(MoneyPlaces)
	}
	days, rest := hours/24, hours%24
	fullDay := decimal.Min(*dailyRate, hourlyRate.Mul(decimal.NewFromInt(24)))
	partial := decimal.Min(hourlyRate.Mul(decimal.NewFromInt(rest)), *dailyRate)
	return fullDay.Mul(decimal.NewFromInt(days)).Add(partial).Round(MoneyPlaces)
}
