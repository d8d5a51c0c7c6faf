package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/billing"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/numbering"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/fiscal"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/infrastructure/notify"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/infrastructure/postgres"
	httpRouter "github.com/joseeliezerr7/pos-saas-backend-sub000/internal/interfaces/http"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/pkg/config"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
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

	rtnValidator, err := fiscal.NewRTNValidator(cfg.Fiscal.RTNPattern, fiscal.RTNWidth)
	if err != nil {
		log.Fatal().Err(err).Msg("patrón de RTN configurado")
	}

	authRepo := postgres.NewAuthorizationRepository(pool)
	corrRepo := postgres.NewCorrelativeRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Un solo notifier atiende ambos eventos fiscales (bajo suministro y
	// emisión); hoy publica al log estructurado.
	notifier := notify.New(log)

	generatePoolUC := numbering.NewGeneratePoolUseCase(
		authRepo, corrRepo, numbering.DefaultBatchSize, cfg.Fiscal.SequenceWidth)
	registerAuthorizationUC := numbering.NewRegisterAuthorizationUseCase(
		authRepo, generatePoolUC, cfg.Fiscal.SequenceWidth)

	issueInvoiceUC := billing.NewIssueInvoiceUseCase(
		txRunner, saleRepo, rtnValidator, notifier, notifier,
		billing.IssuerConfig{
			AlertThreshold: cfg.Fiscal.AlertThreshold,
			DefaultRTN:     cfg.Fiscal.DefaultRTN,
		})
	voidInvoiceUC := billing.NewVoidInvoiceUseCase(txRunner)
	invoiceQueriesUC := billing.NewInvoiceQueryUseCase(invoiceRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		RegisterAuthorization: registerAuthorizationUC,
		IssueInvoice:          issueInvoiceUC,
		VoidInvoice:           voidInvoiceUC,
		InvoiceQueries:        invoiceQueriesUC,
		JWTSecret:             cfg.JWT.Secret,
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
