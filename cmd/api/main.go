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
	"github.com/gofiber/fiber/v2/middleware/requestid"

	_ "github.com/jhoicas/inventario-ledger/docs"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/notify"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// @title        Inventario Ledger API
// @version      1.0
// @description  Libro de movimientos de stock con alertas de stock bajo y vencimiento.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Str("lock", cfg.Lock.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner  inventory.TxRunner
		itemRepo  repository.ItemRepository
		movRepo   repository.StockMovementRepository
		alertRepo repository.AlertRepository
		auditRepo repository.AuditRepository
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		txRunner, itemRepo, movRepo, alertRepo, auditRepo = store, store.Items(), store.Movements(), store.Alerts(), store.Audits()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, log.Zerolog()); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		txRunner = postgres.NewTxRunner(pool)
		itemRepo = postgres.NewItemRepository(pool)
		movRepo = postgres.NewMovementRepository(pool)
		alertRepo = postgres.NewAlertRepository(pool)
		auditRepo = postgres.NewAuditRepository(pool)
	}

	var locker inventory.ItemLocker
	switch cfg.Lock.Driver {
	case config.LockDriverRedis:
		redisCfg := lock.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Lock.TTL,
			Wait:     cfg.Lock.Wait,
		}
		rdb, err := lock.NewRedisClient(ctx, redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		redisLocker := lock.NewRedisLocker(rdb, redisCfg, log.Zerolog())
		defer redisLocker.Close()
		locker = redisLocker
	default:
		locker = lock.NewKeyedMutex()
	}

	evaluator := domaininv.NewAlertEvaluator(domaininv.AlertSettings{
		LowStockEnabled: cfg.Alerts.LowStockEnabled,
		ExpiryEnabled:   cfg.Alerts.ExpiryEnabled,
		ExpiryWindow:    cfg.Alerts.ExpiryWindow(),
	})
	ledger := inventory.NewLedgerService(
		txRunner, itemRepo, movRepo, alertRepo,
		locker, evaluator, notify.NewLogNotifier(log.Zerolog()), log.Zerolog(),
	)

	itemUC := usecase.NewItemUseCase(itemRepo, auditRepo, ledger, log.Zerolog())
	stockUC := usecase.NewStockUseCase(ledger)
	alertUC := usecase.NewAlertUseCase(alertRepo, ledger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Zerolog()))

	// Swagger UI: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Inventario Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:    itemUC,
		StockUC:   stockUC,
		AlertUC:   alertUC,
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

	log.Info().Msg("aplicación detenida")
}
