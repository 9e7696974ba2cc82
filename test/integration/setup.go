package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"kart-checkout/internal/cache"
	"kart-checkout/internal/config"
	"kart-checkout/internal/database"
	"kart-checkout/internal/handler"
	"kart-checkout/internal/middleware"
	"kart-checkout/internal/repository"
	"kart-checkout/internal/router"
	"kart-checkout/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testAPIKey = "test-api-key"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		MaxConnections:  20,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, "up", logger); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Services wires the full service layer against a test database.
type Services struct {
	Products  service.ProductService
	Inventory service.InventoryService
	Cart      service.CartService
	Checkout  service.CheckoutService
	Orders    service.OrderService
	Shoppers  repository.ShopperRepository
}

// NewServices builds every service with default shipping fees (standard 50, express 100).
func NewServices(testDB *TestDB) *Services {
	logger := zerolog.Nop()
	pool := testDB.Pool

	txr := repository.NewTransactor(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	inventoryRepo := repository.NewInventoryRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	checkoutRepo := repository.NewCheckoutRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	shopperRepo := repository.NewShopperRepository(pool, logger)

	fees := service.NewShippingFees(config.CheckoutConfig{StandardFee: 50, ExpressFee: 100})

	return &Services{
		Products:  service.NewProductService(productRepo, logger),
		Inventory: service.NewInventoryService(inventoryRepo, nil, logger),
		Cart:      service.NewCartService(cartRepo, productRepo, inventoryRepo, logger),
		Checkout: service.NewCheckoutService(service.CheckoutRepositories{
			Tx:        txr,
			Cart:      cartRepo,
			Checkout:  checkoutRepo,
			Inventory: inventoryRepo,
			Products:  productRepo,
			Orders:    orderRepo,
			Shoppers:  shopperRepo,
		}, fees, nil, logger),
		Orders:   service.NewOrderService(txr, orderRepo, inventoryRepo, nil, logger),
		Shoppers: shopperRepo,
	}
}

// NewTestServer builds the HTTP router over svcs. store may be nil.
func NewTestServer(svcs *Services, store middleware.IdempotencyStore, publisher cache.OrderPlacedPublisher) http.Handler {
	logger := zerolog.Nop()
	return router.New(router.Handlers{
		Product:  handler.NewProductHandler(svcs.Products, logger),
		Cart:     handler.NewCartHandler(svcs.Cart, logger),
		Checkout: handler.NewCheckoutHandler(svcs.Checkout, publisher, logger),
		Order:    handler.NewOrderHandler(svcs.Orders, logger),
		Admin:    handler.NewAdminHandler(svcs.Orders, svcs.Inventory, logger),
	}, router.Options{
		APIKey:           testAPIKey,
		IdempotencyStore: store,
		IdempotencyTTL:   time.Hour,
	}, logger)
}

// SeededProduct holds the IDs created by SeedProduct.
type SeededProduct struct {
	ProductID  uuid.UUID
	VariantIDs []uuid.UUID
}

// SeedVariant describes one variant row for SeedProduct.
type SeedVariant struct {
	Name       string
	Price      string
	Stock      int
	WeightGram int
}

// SeedProduct inserts a product and its variants.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, name string, variants ...SeedVariant) SeededProduct {
	t.Helper()
	ctx := context.Background()

	seeded := SeededProduct{ProductID: uuid.New()}
	if _, err := pool.Exec(ctx,
		"INSERT INTO products (id, name, image_url, base_price) VALUES ($1, $2, $3, $4)",
		seeded.ProductID, name, "https://img.example/"+name+".png", decimal.Zero,
	); err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}

	for _, v := range variants {
		id := uuid.New()
		if _, err := pool.Exec(ctx, `
			INSERT INTO product_variants (id, product_id, name, price, stock_quantity, weight_value, weight_unit)
			VALUES ($1, $2, $3, $4, $5, $6, 'g')`,
			id, seeded.ProductID, v.Name, decimal.RequireFromString(v.Price), v.Stock, v.WeightGram,
		); err != nil {
			t.Fatalf("failed to seed variant %s: %v", v.Name, err)
		}
		seeded.VariantIDs = append(seeded.VariantIDs, id)
	}

	return seeded
}

// SeedAddress inserts an address owned by shopperID.
func SeedAddress(t *testing.T, pool *pgxpool.Pool, shopperID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	if _, err := pool.Exec(context.Background(), `
		INSERT INTO addresses (id, shopper_id, name, phone, street, city, state, pincode, address_type)
		VALUES ($1, $2, 'Asha Rao', '9876543210', '12 MG Road', 'Bengaluru', 'KA', '560001', 'home')`,
		id, shopperID,
	); err != nil {
		t.Fatalf("failed to seed address: %v", err)
	}
	return id
}

// StockOf reads a variant's stock directly from the database.
func StockOf(t *testing.T, pool *pgxpool.Pool, variantID uuid.UUID) int {
	t.Helper()

	var stock int
	if err := pool.QueryRow(context.Background(),
		"SELECT stock_quantity FROM product_variants WHERE id = $1", variantID,
	).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"order_status_history", "order_items", "orders",
		"checkout_selections", "cart_lines", "addresses", "shoppers",
		"product_variants", "products",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
