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

	"github.com/jhoicas/Catalogo-api/internal/application/catalog"
	"github.com/jhoicas/Catalogo-api/internal/application/compliance"
	"github.com/jhoicas/Catalogo-api/internal/application/inventory"
	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
	infraexcel "github.com/jhoicas/Catalogo-api/internal/infrastructure/excel"
	infrakafka "github.com/jhoicas/Catalogo-api/internal/infrastructure/kafka"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Catalogo-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Catalogo-api/internal/infrastructure/redis"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/xmlreport"
	httpRouter "github.com/jhoicas/Catalogo-api/internal/interfaces/http"
	"github.com/jhoicas/Catalogo-api/pkg/config"
	"github.com/jhoicas/Catalogo-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("catalog_source", cfg.Catalog.Source).
		Bool("strict_invariants", cfg.App.StrictInvariants).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Fuente del catálogo, inventario y persistencia de auditoría.
	var (
		source         repository.CatalogSource
		inventoryRepo  repository.InventoryRepository
		complianceRepo repository.ComplianceRepository
		dispatchOpts   []compliance.DispatcherOption
	)
	switch cfg.Catalog.Source {
	case "file":
		file, err := memory.ReadCatalogFile(cfg.Catalog.FilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("leer catálogo")
		}
		source = memory.NewFileCatalogSource(cfg.Catalog.FilePath)
		inventoryRepo = memory.NewInventoryRepository(file.ToStockRecords()...)
	default:
		applied, err := postgres.Migrate(ctx, cfg.DB.ConnectionString())
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Int("applied", applied).Msg("migraciones aplicadas")

		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		source = postgres.NewCatalogRepository(pool)
		inventoryRepo = postgres.NewInventoryRepository(pool)
		complianceRepo = postgres.NewComplianceRepository(pool)
		dispatchOpts = append(dispatchOpts, compliance.WithTxRunner(postgres.NewTxRunner(pool)))
	}

	store := catalog.NewStore(source, log.Component("catalog"))
	if err := store.Reload(ctx); err != nil {
		log.Fatal().Err(err).Msg("carga inicial del catálogo")
	}
	go store.RunRefresher(ctx, cfg.Catalog.RefreshInterval)

	// Caché de capas de inventario: Redis si está configurado, memoria si no.
	var cache inventory.Cache = memory.NewKVStore()
	if cfg.Inventory.RedisAddr != "" {
		client, err := infraredis.NewClient(ctx, cfg.Inventory.RedisAddr, cfg.Inventory.RedisPassword, cfg.Inventory.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		cache = infraredis.NewKVStore(client, cfg.App.Name+":inventory:")
	}
	synth := inventory.NewSynthesizer(inventoryRepo, cache, cfg.Inventory.CacheTTL, log.Component("inventory"))

	// Publicación de violaciones a Kafka (opcional).
	var publisher compliance.ViolationPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp := infrakafka.NewViolationPublisher(infrakafka.NewWriter(cfg.Kafka.Brokers), cfg.Kafka.Topic)
		defer kp.Close()
		publisher = kp
	}

	dispatcher := compliance.NewDispatcher(cfg.Compliance.DispatcherBuffer, complianceRepo, publisher, log.Component("dispatcher"), dispatchOpts...)
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	go dispatcher.Run(dispatchCtx)

	monitor := compliance.NewMonitor(compliance.Config{
		MaxAuditEntries:    cfg.Compliance.MaxAuditEntries,
		MaxViolations:      cfg.Compliance.MaxViolations,
		ViolationRetention: cfg.Compliance.ViolationRetention,
		StatusWindow:       cfg.Compliance.StatusWindow,
		WarningThreshold:   cfg.Compliance.WarningThreshold,
	}, log.Component("compliance"), compliance.WithSink(dispatcher))
	go monitor.RunPurger(ctx, cfg.Compliance.PurgeInterval)

	catalogUC := usecase.NewCatalogUseCase(store, synth, monitor, log.Component("catalog"), cfg.App.StrictInvariants)
	complianceUC := usecase.NewComplianceUseCase(store, monitor)
	inventoryUC := usecase.NewInventoryUseCase(store, inventoryRepo, synth, monitor, log.Component("inventory"))
	exportUC := compliance.NewExportUseCase(
		monitor,
		infrapdf.NewMarotoPDFGenerator(cfg.App.Name),
		xmlreport.NewExporter(cfg.App.Name),
		infraexcel.NewAuditExporter(),
		complianceRepo,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Catálogo API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{"status": "ok", "service": cfg.App.Name}
		if snap, err := store.Snapshot(); err == nil {
			body["catalog_version"] = snap.Version()
			body["catalog_loaded_at"] = snap.LoadedAt()
		}
		return c.JSON(body)
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CatalogUC:    catalogUC,
		ComplianceUC: complianceUC,
		InventoryUC:  inventoryUC,
		ExportUC:     exportUC,
		JWTSecret:    cfg.JWT.Secret,
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

	// Refresher y purga primero; el dispatcher drena la cola antes de cerrar pool y writer.
	stop()
	stopDispatch()
	dispatcher.Wait()
	if n := dispatcher.Dropped(); n > 0 {
		log.Warn().Uint64("dropped", n).Msg("eventos de auditoría descartados durante la ejecución")
	}

	log.Info().Msg("aplicación detenida")
}
