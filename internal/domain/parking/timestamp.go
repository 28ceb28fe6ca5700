package parking

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/parqueo-api/internal/domain"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp interpreta una fecha ISO-8601. Sin zona horaria se asume UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha inválida %q", s)
}

// TimestampPolicy decide qué hacer con una fecha mal formada.
// Permisiva (Strict=false): la fecha se convierte en null.
// Estricta: la fecha se rechaza con ErrInvalidInput.
type TimestampPolicy struct {
	Strict bool
}

// Resolve convierte el valor recibido. coerced es true cuando una fecha mal formada se descartó.
func (p TimestampPolicy) Resolve(field string, raw *string) (ts *time.Time, coerced bool, err error) {
	if raw == nil {
		return nil, false, nil
	}
	t, perr := ParseTimestamp(*raw)
	if perr != nil {
		if p.Strict {
			return nil, false, fmt.Errorf("%w: %s no es una fecha ISO-8601 válida", domain.ErrInvalidInput, field)
		}
		return nil, true, nil
	}
	return &t, false, nil
}
