package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Movimientos-api/internal/application/inventory"
	"github.com/jhoicas/Movimientos-api/internal/domain/ledger"
	"github.com/jhoicas/Movimientos-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Movimientos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Movimientos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Movimientos-api/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/Movimientos-api/internal/interfaces/http"
	"github.com/jhoicas/Movimientos-api/pkg/config"
	"github.com/jhoicas/Movimientos-api/pkg/logger"
)

const version = "1.0.0"

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
		Version: version,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Ledger.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()

	otel, err := telemetry.Setup(ctx, cfg.OTel, version)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar telemetría")
	}

	var txRunner inventory.TxRunner
	switch cfg.Ledger.Store {
	case config.StoreMemory:
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar y no hay catálogo de productos")
		txRunner = memory.New(cfg.Ledger.LockTimeout)
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migrar esquema")
		}
		txRunner = postgres.NewTxRunner(pool)
	}

	movementUC := inventory.NewMovementUseCase(
		txRunner,
		ledger.NewRandomLinkGenerator(cfg.Ledger.LinkLength),
		cfg.Ledger.OpenMaxAttempts,
		log,
		otel.Tracer(),
		otel.Meter(),
	)
	receiptUC := inventory.NewReceiptUseCase(txRunner, infrapdf.NewMarotoReceiptGenerator())
	sequences := inventory.NewSequenceAllocator(txRunner)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Movimientos API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger no disponible")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Ledger.Store})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements: movementUC,
		Receipts:  receiptUC,
		Sequences: sequences,
		JWTSecret: cfg.JWT.Secret,
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
	if err := otel.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de telemetría")
	}

	log.Info().Msg("aplicación detenida")
}
