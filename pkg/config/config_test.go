package config_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/parqueo-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.Billing.VATRate.Equal(decimal.RequireFromString("0.12")))
	assert.True(t, cfg.Billing.AutoVAT)
	assert.Equal(t, "Ocupado", cfg.Parking.OccupiedState)
	assert.Equal(t, "Libre", cfg.Parking.FreeState)
	assert.False(t, cfg.Parking.StrictDates)
	assert.Equal(t, 3, cfg.Parking.TxRetries)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "UTC", cfg.App.TimeZone)
	assert.False(t, cfg.DB.AutoMigrate)
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("BILLING_VAT_RATE", "0.15")
	t.Setenv("BILLING_AUTO_VAT", "false")
	t.Setenv("PARKING_STRICT_DATES", "true")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.Billing.VATRate.Equal(decimal.RequireFromString("0.15")))
	assert.False(t, cfg.Billing.AutoVAT)
	assert.True(t, cfg.Parking.StrictDates)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestLoad_TasaIVAFueraDeRango(t *testing.T) {
	t.Setenv("BILLING_VAT_RATE", "1.5")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "parqueo", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/parqueo?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
