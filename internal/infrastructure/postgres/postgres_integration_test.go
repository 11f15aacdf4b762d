//go:build integration

package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/warehouse-orders/internal/application/inventory"
	"github.com/jhoicas/warehouse-orders/internal/application/order"
	"github.com/jhoicas/warehouse-orders/internal/domain"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
	"github.com/jhoicas/warehouse-orders/internal/infrastructure/postgres"
	"github.com/jhoicas/warehouse-orders/pkg/config"
	"github.com/jhoicas/warehouse-orders/pkg/logger"
)

// startPostgres levanta un contenedor desechable y aplica el esquema.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "orders",
			},
			Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "no se pudo iniciar PostgreSQL")
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		_ = container.Terminate(stopCtx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{
		Host: host, Port: port.Int(), User: "test", Password: "testpass", DBName: "orders", SSLMode: "disable",
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../../migrations/001_init.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err, "aplicar esquema")
	return pool
}

func seed(t *testing.T, pool *pgxpool.Pool) (customerID string, products *postgres.ProductRepo) {
	t.Helper()
	ctx := context.Background()
	customerID = uuid.New().String()
	_, err := pool.Exec(ctx, `INSERT INTO users (id, email, name, role, city, country) VALUES ($1, $2, 'Ana', 'customer', 'Bogotá', 'CO')`,
		customerID, customerID+"@example.com")
	require.NoError(t, err)

	products = postgres.NewProductRepository(pool)
	now := time.Now()
	for _, p := range []*entity.Product{
		{ID: "p-a", SKU: "SKU-A", Name: "A", Price: decimal.RequireFromString("12.50"), AvailableQuantity: 10, MinimumLevel: 2, Active: true, CreatedAt: now, UpdatedAt: now},
		{ID: "p-b", SKU: "SKU-B", Name: "B", Price: decimal.RequireFromString("3.00"), AvailableQuantity: 20, Active: true, CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, products.Create(ctx, p))
	}
	return customerID, products
}

func TestPostgres_CicloDePedidoCompleto(t *testing.T) {
	pool := startPostgres(t)
	customerID, products := seed(t, pool)
	ctx := context.Background()
	log := logger.New(logger.Config{Env: "test", Level: "error"})

	orders := postgres.NewOrderRepository(pool)
	history := postgres.NewInventoryTransactionRepository(pool)
	sink := inventory.NewAsyncAuditSink(history, 16, log)
	ledger := inventory.NewLedger(products, sink, time.Second, log)
	svc := order.NewService(orders, postgres.NewUserRepository(pool), history, ledger,
		order.NewNumberGenerator(orders, time.UTC), order.NewProductPriceCatalog(products), nil, time.Second, log)

	o, err := svc.CreateOrder(ctx, order.CreateOrderInput{
		CustomerID: customerID,
		Items:      []order.ItemInput{{ProductID: "p-a", Quantity: 4}, {ProductID: "p-b", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("56.00")))

	stored, err := orders.GetByNumber(ctx, o.OrderNumber)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "SKU-A", stored.Items[0].ProductSKU)
	assert.Equal(t, "Bogotá", stored.Shipping.City)

	_, err = svc.CancelOrder(ctx, o.ID, "prueba", customerID)
	require.NoError(t, err)
	a, _ := products.GetByID(ctx, "p-a")
	assert.Equal(t, 10, a.AvailableQuantity)

	sink.Close()
	txs, err := history.ListByOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 4, "dos reservas y dos devoluciones")

	seq, err := orders.MaxSequence(ctx, o.OrderNumber[:len("ORD-20240101-")])
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	list, err := orders.List(ctx, repository.OrderFilter{Status: entity.OrderStatusCancelled})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Items, 2)
}

func TestPostgres_SetQuantitiesDetectaConflicto(t *testing.T) {
	pool := startPostgres(t)
	_, products := seed(t, pool)
	ctx := context.Background()

	err := products.SetQuantities(ctx, []repository.StockChange{
		{ProductID: "p-a", Expected: 10, Quantity: 5},
		{ProductID: "p-b", Expected: 19, Quantity: 1},
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	a, _ := products.GetByID(ctx, "p-a")
	assert.Equal(t, 10, a.AvailableQuantity, "la transacción se revierte completa")
}

func TestPostgres_ReservasConcurrentesNoSobrevenden(t *testing.T) {
	pool := startPostgres(t)
	_, products := seed(t, pool)
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	ledger := inventory.NewLedger(products, nil, 5*time.Second, log)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ledger.ReserveAll(context.Background(), inventory.Reference{}, []inventory.Line{{ProductID: "p-a", Quantity: 3}})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	a, _ := products.GetByID(context.Background(), "p-a")
	assert.Equal(t, 3, ok)
	assert.Equal(t, 1, a.AvailableQuantity)
}
