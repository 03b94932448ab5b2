package db

import (
	"context"
	"testing"

	"github.com/legalcms/backend/internal/config"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	gdb, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"users", "cases", "appointments", "documents", "chat_messages"} {
		if !gdb.Migrator().HasTable(table) {
			t.Errorf("expected table %s", table)
		}
	}
	if err := Ping(context.Background(), gdb); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestDialectorForUnknownDriver(t *testing.T) {
	if _, err := dialectorFor(config.DatabaseConfig{Driver: "mysql"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	for _, driver := range []string{"pgx", "postgres"} {
		d, err := dialectorFor(config.DatabaseConfig{Driver: driver, Host: "localhost", Port: 5432})
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		if d.Name() != "postgres" {
			t.Errorf("%s: expected postgres dialect, got %s", driver, d.Name())
		}
	}
}
