package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/parqueo-api/internal/application/dto"
	"github.com/jhoicas/parqueo-api/internal/domain"
)

// VATDefaults valores de calculateVat y vatRate cuando el request no los envía.
type VATDefaults struct {
	Calculate bool
	Rate      decimal.Decimal
}

// pathID lee el parámetro :id como entero.
func pathID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id debe ser entero (recibido %q)", domain.ErrInvalidInput, raw)
	}
	return id, nil
}

// queryID lee un id opcional del query string. Vacío -> nil.
func queryID(c *fiber.Ctx, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser entero (recibido %q)", domain.ErrInvalidInput, name, raw)
	}
	return &id, nil
}

func queryString(c *fiber.Ctx, name string) *string {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	return &raw
}

// vatOptions combina ?calculateVat= y ?vatRate= con los valores por defecto.
func vatOptions(c *fiber.Ctx, def VATDefaults) (dto.VATOptions, error) {
	opts := dto.VATOptions{Calculate: def.Calculate, Rate: def.Rate}
	if raw := strings.TrimSpace(c.Query("calculateVat")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("%w: calculateVat debe ser true o false", domain.ErrInvalidInput)
		}
		opts.Calculate = b
	}
	if raw := strings.TrimSpace(c.Query("vatRate")); raw != "" {
		r, err := decimal.NewFromString(raw)
		if err != nil {
			return opts, fmt.Errorf("%w: vatRate debe ser numérico", domain.ErrInvalidInput)
		}
		opts.Rate = r
	}
	return opts, nil
}
