package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/jhoicas/parqueo-api/internal/application/billing"
	"github.com/jhoicas/parqueo-api/internal/application/catalog"
	"github.com/jhoicas/parqueo-api/internal/application/reservation"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Reservations *reservation.Service
	Invoices     *billing.InvoiceService
	InvoicePDF   *billing.PDFUseCase
	Spots        *catalog.SpotService
	Transactions *catalog.TransactionService
	References   *catalog.ReferenceService
	VAT          VATDefaults
	DB           Pinger
	ServiceName  string
}

// AppConfig opciones de la aplicación fiber.
type AppConfig struct {
	Name        string
	CORSOrigins string
}

// NewApp crea la aplicación fiber con log de peticiones, recover y CORS.
func NewApp(cfg AppConfig, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: errorHandler,
	})
	app.Use(RequestLogger(log))
	app.Use(recover.New())
	origins := cfg.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, " + HeaderRequestID,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", NewHealthHandler(deps.DB, deps.ServiceName).Check)

	api := app.Group("/api")

	// Reservaciones
	reservations := api.Group("/reservations")
	rh := NewReservationHandler(deps.Reservations)
	reservations.Get("/", rh.List)
	reservations.Post("/", rh.Create)
	reservations.Get("/:id", rh.GetByID)
	reservations.Put("/:id", rh.Update)
	reservations.Patch("/:id/close", rh.Close)
	reservations.Patch("/:id/cerrar", rh.Close)
	reservations.Delete("/:id", rh.Delete)

	// Facturas
	invoices := api.Group("/invoices")
	ih := NewInvoiceHandler(deps.Invoices, deps.InvoicePDF, deps.VAT)
	invoices.Get("/", ih.List)
	invoices.Post("/", ih.Create)
	invoices.Get("/:id", ih.GetByID)
	invoices.Get("/:id/pdf", ih.PDF)
	invoices.Put("/:id", ih.Update)
	invoices.Delete("/:id", ih.Delete)

	// Lugares
	spots := api.Group("/spots")
	sh := NewSpotHandler(deps.Spots)
	spots.Get("/", sh.List)
	spots.Post("/", sh.Create)
	spots.Get("/:id", sh.GetByID)
	spots.Put("/:id", sh.Update)
	spots.Delete("/:id", sh.Delete)

	// Transacciones
	transactions := api.Group("/transactions")
	th := NewTransactionHandler(deps.Transactions)
	transactions.Get("/", th.List)
	transactions.Post("/", th.Create)
	transactions.Get("/:id", th.GetByID)
	transactions.Delete("/:id", th.Delete)

	// Catálogos (solo lectura)
	refs := NewReferenceHandler(deps.References)
	api.Get("/spot-states", refs.SpotStates)
	api.Get("/payment-states", refs.PaymentStates)
	api.Get("/payment-methods", refs.PaymentMethods)
}
