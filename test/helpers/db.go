package helpers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UmarSidiki/taxibooking/migrations"
)

// SetupTestDatabase creates a dedicated PostgreSQL connection pool for
// integration tests. The test is skipped when TEST_DATABASE_URL is not
// set, so the suite stays runnable without local infrastructure.
// All migrations run before the pool is returned; a cleanup callback
// closes the pool when the test completes.
func SetupTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	runMigrations(t, databaseURL)

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		t.Fatalf("failed to parse test database config: %v", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to create test database pool: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("failed to ping test database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

// ResetTables truncates the supplied tables so every test can start from a
// known state without recreating the schema.
func ResetTables(t *testing.T, pool *pgxpool.Pool, tables ...string) {
	t.Helper()

	if len(tables) == 0 {
		return
	}

	stmt := fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	if _, err := pool.Exec(context.Background(), stmt); err != nil {
		t.Fatalf("failed to truncate tables %v: %v", tables, err)
	}
}

func runMigrations(t *testing.T, databaseURL string) {
	t.Helper()

	source, err := iofs.New(migrations.FS, migrations.Dir)
	if err != nil {
		t.Fatalf("failed to load migration source: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		t.Fatalf("failed to initialize migrations: %v", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("failed to apply migrations: %v", err)
	}
}
