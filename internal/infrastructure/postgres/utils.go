package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/parqueo-api/internal/domain"
)

// SQLSTATE usados para clasificar errores del driver.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeNotNullViolation     = "23502"
	codeCheckViolation       = "23514"
	codeInvalidDatetime      = "22007"
	codeDatetimeOverflow     = "22008"
	codeInvalidText          = "22P02"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// isRetryable fallos de serialización o deadlock: la transacción completa puede reintentarse.
func isRetryable(err error) bool {
	code := pgCode(err)
	return code == codeSerializationFailure || code == codeDeadlockDetected
}

// classifyWrite traduce el error de un INSERT/UPDATE a un error de dominio.
// Los errores no clasificados se devuelven envueltos con op y conservan el *pgconn.PgError.
func classifyWrite(op string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, constraintLabel(pgErr))
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s no existe", domain.ErrInvalidReference, constraintField(pgErr))
	case codeNotNullViolation:
		return fmt.Errorf("%w: %s es requerido", domain.ErrInvalidInput, snakeToCamel(pgErr.ColumnName))
	case codeCheckViolation, codeInvalidDatetime, codeDatetimeOverflow, codeInvalidText:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, pgErr.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// classifyDelete como classifyWrite, pero una violación de FK significa que la fila está referenciada.
func classifyDelete(op string, err error) error {
	if pgCode(err) == codeForeignKeyViolation {
		var pgErr *pgconn.PgError
		errors.As(err, &pgErr)
		return fmt.Errorf("%w (restricción %s)", domain.ErrInUse, pgErr.ConstraintName)
	}
	return classifyWrite(op, err)
}

// constraintField deduce el campo JSON de una FK: "reservations_spot_id_fkey" -> "spotId".
func constraintField(pgErr *pgconn.PgError) string {
	name := strings.TrimSuffix(pgErr.ConstraintName, "_fkey")
	name = strings.TrimPrefix(name, pgErr.TableName+"_")
	if name == "" {
		return "referencia"
	}
	return snakeToCamel(name)
}

func constraintLabel(pgErr *pgconn.PgError) string {
	if pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	return pgErr.Message
}

func snakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
