package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/billing"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/numbering"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegisterAuthorization *numbering.RegisterAuthorizationUseCase
	IssueInvoice          *billing.IssueInvoiceUseCase
	VoidInvoice           *billing.VoidInvoiceUseCase
	InvoiceQueries        *billing.InvoiceQueryUseCase
	JWTSecret             string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Autorizaciones CAI (solo admin: registrar un CAI es una acción contable)
	fiscal := protected.Group("/fiscal", RequireRole(RoleAdmin))
	authzHandler := NewAuthorizationHandler(deps.RegisterAuthorization)
	fiscal.Post("/authorizations", authzHandler.Register)
	fiscal.Get("/authorizations", authzHandler.List)

	// Facturas (protegido)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.IssueInvoice, deps.VoidInvoice, deps.InvoiceQueries)
	invoices.Post("/", invoiceHandler.Issue)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Post("/:id/void", invoiceHandler.Void)

	// Reportes (protegido)
	reports := protected.Group("/reports")
	reports.Get("/invoices/stats", invoiceHandler.Stats)
}
