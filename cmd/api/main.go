package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/parqueo-api/docs"
	"github.com/jhoicas/parqueo-api/internal/application/billing"
	"github.com/jhoicas/parqueo-api/internal/application/catalog"
	"github.com/jhoicas/parqueo-api/internal/application/occupancy"
	"github.com/jhoicas/parqueo-api/internal/application/reservation"
	"github.com/jhoicas/parqueo-api/internal/domain/parking"
	infrapdf "github.com/jhoicas/parqueo-api/internal/infrastructure/pdf"
	"github.com/jhoicas/parqueo-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/parqueo-api/internal/interfaces/http"
	"github.com/jhoicas/parqueo-api/pkg/config"
	"github.com/jhoicas/parqueo-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
	}

	reservationRepo := postgres.NewReservationRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	spotRepo := postgres.NewSpotRepository(pool)
	referenceRepo := postgres.NewReferenceRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Parking.TxRetries, log.Component("tx"))

	dates := parking.TimestampPolicy{Strict: cfg.Parking.StrictDates}
	propagator := occupancy.NewPropagator(occupancy.Config{
		OccupiedState: cfg.Parking.OccupiedState,
		FreeState:     cfg.Parking.FreeState,
	}, log.Component("occupancy"))

	reservationSvc := reservation.NewService(reservationRepo, txRunner, propagator, dates, log.Component("reservations"))
	invoiceSvc := billing.NewInvoiceService(invoiceRepo, txRunner, propagator, dates, log.Component("invoices"))

	// PDF: representación gráfica de la factura
	loc, err := time.LoadLocation(cfg.App.TimeZone)
	if err != nil {
		log.Warn().Err(err).Str("tz", cfg.App.TimeZone).Msg("zona horaria inválida, se usa UTC")
		loc = time.UTC
	}
	invoicePDFUC := billing.NewPDFUseCase(invoiceRepo, reservationRepo, infrapdf.NewMarotoPDFGenerator(loc), cfg.App.Name)

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	}, log.Component("http"))

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.App.DocsEnabled {
		if _, err := os.Stat(swaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: swaggerFile,
				Path:     "docs",
				Title:    "Parqueo API",
			}))
		} else {
			log.Warn().Str("file", swaggerFile).Msg("swagger UI deshabilitado: no se encontró el archivo")
		}
		app.Get("/openapi.json", func(c *fiber.Ctx) error {
			c.Type("json")
			return c.SendString(docs.SwaggerInfo.ReadDoc())
		})
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Reservations: reservationSvc,
		Invoices:     invoiceSvc,
		InvoicePDF:   invoicePDFUC,
		Spots:        catalog.NewSpotService(spotRepo),
		Transactions: catalog.NewTransactionService(transactionRepo, dates, log.Component("transactions")),
		References:   catalog.NewReferenceService(referenceRepo),
		VAT:          httpRouter.VATDefaults{Calculate: cfg.Billing.AutoVAT, Rate: cfg.Billing.VATRate},
		DB:           pool,
		ServiceName:  cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
