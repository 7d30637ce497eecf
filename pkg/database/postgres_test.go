package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// getTestConfig returns config for integration tests, overridable by environment
func getTestConfig() *PostgresConfig {
	cfg := DefaultPostgresConfig()

	if host := os.Getenv("TEST_POSTGRES_HOST"); host != "" {
		cfg.Host = host
	}
	if user := os.Getenv("TEST_POSTGRES_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("TEST_POSTGRES_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if dbname := os.Getenv("TEST_POSTGRES_DATABASE"); dbname != "" {
		cfg.Database = dbname
	}

	return cfg
}

func requireIntegration(t *testing.T) *PostgresDB {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}

	db, err := NewPostgres(context.Background(), getTestConfig())
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestDefaultPostgresConfig(t *testing.T) {
	cfg := DefaultPostgresConfig()

	if cfg.Host != "localhost" {
		t.Errorf("Expected host 'localhost', got '%s'", cfg.Host)
	}
	if cfg.Port != 5432 {
		t.Errorf("Expected port 5432, got %d", cfg.Port)
	}
	if cfg.MaxConns != 25 || cfg.MinConns != 5 {
		t.Errorf("Expected 25/5 conns, got %d/%d", cfg.MaxConns, cfg.MinConns)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("Expected max retries 3, got %d", cfg.MaxRetries)
	}
}

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := &PostgresConfig{
		Host:     "db.internal",
		Port:     6543,
		User:     "hostel",
		Password: "secret",
		Database: "hostel_saas",
		SSLMode:  "require",
	}

	expected := "host=db.internal port=6543 user=hostel password=secret dbname=hostel_saas sslmode=require"
	if dsn := cfg.DSN(); dsn != expected {
		t.Errorf("DSN mismatch:\nExpected: %s\nGot: %s", expected, dsn)
	}
}

func TestNewPostgres_Unreachable(t *testing.T) {
	cfg := &PostgresConfig{
		Host:           "127.0.0.1",
		Port:           1,
		User:           "invalid",
		Password:       "invalid",
		Database:       "invalid",
		SSLMode:        "disable",
		MaxRetries:     1,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: 500 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := NewPostgres(ctx, cfg); err == nil {
		t.Error("Expected error for unreachable database, got nil")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "hostels_slug_key"}

	if !IsUniqueViolation(dup, "") {
		t.Error("expected any-constraint match")
	}
	if !IsUniqueViolation(dup, "hostels_slug_key") {
		t.Error("expected named constraint match")
	}
	if IsUniqueViolation(dup, "users_email_key") {
		t.Error("expected other constraint to not match")
	}
	if IsUniqueViolation(errors.New("boom"), "") {
		t.Error("plain errors are not unique violations")
	}
}

func TestLoadMigrations_SortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_rooms.sql":   {Data: []byte("CREATE TABLE rooms ();")},
		"migrations/001_hostels.sql": {Data: []byte("CREATE TABLE hostels ();")},
		"migrations/README.md":       {Data: []byte("docs")},
	}

	migrations, err := LoadMigrations(fsys, "migrations")
	if err != nil {
		t.Fatalf("LoadMigrations failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != "001_hostels" || migrations[1].Version != "002_rooms" {
		t.Errorf("unexpected order: %s, %s", migrations[0].Version, migrations[1].Version)
	}
}

// Integration tests - run only when database is available

func TestPostgresDB_Integration(t *testing.T) {
	db := requireIntegration(t)
	ctx := context.Background()

	if !db.IsConnected(ctx) {
		t.Error("Expected IsConnected to return true")
	}
	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
	if db.Stats() == nil {
		t.Error("Expected Stats() to return non-nil")
	}
}

func TestWithTx_Integration(t *testing.T) {
	db := requireIntegration(t)
	ctx := context.Background()

	if err := db.Exec(ctx, "CREATE TABLE IF NOT EXISTS tx_probe (value INT)"); err != nil {
		t.Fatalf("create table failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Exec(ctx, "DROP TABLE IF EXISTS tx_probe") })

	rollback := errors.New("rollback")
	err := WithTx(ctx, db.Pool(), func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "INSERT INTO tx_probe (value) VALUES (1)"); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("expected rollback error, got %v", err)
	}

	err = WithTx(ctx, db.Pool(), func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, "INSERT INTO tx_probe (value) VALUES (2)")
		return err
	})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	var count int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM tx_probe").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected only the committed row, got %d", count)
	}
}

func TestPostgresDB_Close_Integration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}

	ctx := context.Background()
	db, err := NewPostgres(ctx, getTestConfig())
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}

	db.Close()

	if err := db.Ping(ctx); err == nil {
		t.Error("Expected Ping to fail after Close")
	}
}
