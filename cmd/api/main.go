package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/warehouse-orders/internal/application/inventory"
	"github.com/jhoicas/warehouse-orders/internal/application/order"
	"github.com/jhoicas/warehouse-orders/internal/application/usecase"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
	"github.com/jhoicas/warehouse-orders/internal/infrastructure/memory"
	"github.com/jhoicas/warehouse-orders/internal/infrastructure/messaging/kafka"
	"github.com/jhoicas/warehouse-orders/internal/infrastructure/messaging/rabbitmq"
	infrapdf "github.com/jhoicas/warehouse-orders/internal/infrastructure/pdf"
	"github.com/jhoicas/warehouse-orders/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/warehouse-orders/internal/interfaces/http"
	"github.com/jhoicas/warehouse-orders/pkg/config"
	"github.com/jhoicas/warehouse-orders/pkg/logger"
	"github.com/jhoicas/warehouse-orders/pkg/telemetry"
)

const version = "1.0.0"

// stores repositorios del driver elegido.
type stores struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	users    repository.UserRepository
	history  repository.InventoryTransactionRepository
	close    func()
}

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
		Str("storage", cfg.Storage.Driver).
		Str("events", cfg.Events.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer st.close()

	publisher, err := openPublisher(ctx, cfg.Events, log.Named("messaging"))
	if err != nil {
		log.Fatal().Err(err).Msg("conectar publicador de eventos")
	}
	defer publisher.Close()

	loc, err := cfg.Orders.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria de pedidos")
	}

	audit := inventory.NewAsyncAuditSink(st.history, 0, log.Named("audit"))
	ledger := inventory.NewLedger(st.products, audit, cfg.Orders.LockWait, log.Named("inventory"))
	orderSvc := order.NewService(
		st.orders, st.users, st.history, ledger,
		order.NewNumberGenerator(st.orders, loc),
		order.NewProductPriceCatalog(st.products),
		publisher, cfg.Orders.LockWait, log.Named("order"),
	)
	packingSlip := order.NewPackingSlipUseCase(st.orders, st.users, infrapdf.NewPackingSlipGenerator())
	productUC := usecase.NewProductUseCase(st.products, ledger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Warehouse Orders API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:     cfg.App.Name,
		OrderSvc:    orderSvc,
		PackingSlip: packingSlip,
		ProductUC:   productUC,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		Log:         log.Named("http"),
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Después del servidor: ya no entran reservas nuevas y la auditoría pendiente se vacía.
	audit.Close()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre de trazas")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &stores{
			products: memory.NewProductRepository(),
			orders:   memory.NewOrderRepository(),
			users:    memory.NewUserRepository(demoUsers()...),
			history:  memory.NewInventoryTransactionRepository(),
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &stores{
		products: postgres.NewProductRepository(pool),
		orders:   postgres.NewOrderRepository(pool),
		users:    postgres.NewUserRepository(pool),
		history:  postgres.NewInventoryTransactionRepository(pool),
		close:    pool.Close,
	}, nil
}

// demoUsers usuarios del modo memoria; los tokens se emiten con estos IDs.
func demoUsers() []*entity.User {
	now := time.Now()
	return []*entity.User{
		{ID: "demo-admin", Email: "admin@demo.local", Name: "Administrador", Role: entity.RoleAdmin,
			Status: entity.UserStatusActive, CreatedAt: now, UpdatedAt: now},
		{ID: "demo-operator", Email: "bodega@demo.local", Name: "Operador de bodega", Role: entity.RoleOperator,
			Status: entity.UserStatusActive, CreatedAt: now, UpdatedAt: now},
		{ID: "demo-customer", Email: "cliente@demo.local", Name: "Cliente demo", Role: entity.RoleCustomer,
			Status: entity.UserStatusActive, Address: "Calle 100 # 15-20", City: "Bogotá", PostalCode: "110111",
			Country: "CO", Phone: "3000000000", CreatedAt: now, UpdatedAt: now},
	}
}

// eventPublisher publicador con cierre.
type eventPublisher interface {
	order.EventPublisher
	io.Closer
}

type noopPublisher struct{ order.NoopPublisher }

func (noopPublisher) Close() error { return nil }

func openPublisher(ctx context.Context, cfg config.EventsConfig, log *logger.Logger) (eventPublisher, error) {
	switch cfg.Driver {
	case config.EventsRabbitMQ:
		return rabbitmq.Dial(ctx, rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.Exchange}, log)
	case config.EventsKafka:
		return kafka.New(kafka.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic}, log)
	}
	return noopPublisher{}, nil
}
