package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/parqueo-api/internal/domain"
)

func TestClassifyWrite(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    error
		message string
	}{
		{
			name:    "unique",
			err:     &pgconn.PgError{Code: "23505", ConstraintName: "spots_company_id_name_key"},
			want:    domain.ErrDuplicate,
			message: "spots_company_id_name_key",
		},
		{
			name:    "fk en insert",
			err:     &pgconn.PgError{Code: "23503", TableName: "reservations", ConstraintName: "reservations_spot_id_fkey"},
			want:    domain.ErrInvalidReference,
			message: "spotId no existe",
		},
		{
			name:    "check",
			err:     &pgconn.PgError{Code: "23514", Message: "violates check constraint"},
			want:    domain.ErrInvalidInput,
			message: "violates check constraint",
		},
		{
			name: "fecha inválida",
			err:  &pgconn.PgError{Code: "22007"},
			want: domain.ErrInvalidInput,
		},
		{
			name:    "not null",
			err:     &pgconn.PgError{Code: "23502", ColumnName: "payment_state_id"},
			want:    domain.ErrInvalidInput,
			message: "paymentStateId es requerido",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyWrite("op", fmt.Errorf("wrap: %w", tt.err))
			assert.ErrorIs(t, got, tt.want)
			if tt.message != "" {
				assert.Contains(t, got.Error(), tt.message)
			}
		})
	}
}

func TestClassifyWrite_NoClasificadoConservaPgError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "40001"}
	got := classifyWrite("update reservation", pgErr)

	var target *pgconn.PgError
	assert.True(t, errors.As(got, &target))
	assert.True(t, isRetryable(got))
	assert.Contains(t, got.Error(), "update reservation")
}

func TestClassifyDelete_FKEsEnUso(t *testing.T) {
	got := classifyDelete("delete spot", &pgconn.PgError{Code: "23503", TableName: "spots", ConstraintName: "reservations_spot_id_fkey"})
	assert.ErrorIs(t, got, domain.ErrInUse)
	assert.Contains(t, got.Error(), "reservations_spot_id_fkey")

	got = classifyDelete("delete spot", errors.New("conn reset"))
	assert.NotErrorIs(t, got, domain.ErrInUse)
	assert.EqualError(t, got, "delete spot: conn reset")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(errors.New("23505 en el texto no cuenta")))
}

func TestSnakeToCamel(t *testing.T) {
	assert.Equal(t, "paymentMethodId", snakeToCamel("payment_method_id"))
	assert.Equal(t, "name", snakeToCamel("name"))
}
