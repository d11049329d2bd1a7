package backend

import (
	"context"
	"testing"

	"spendwise/internal/config"
)

func TestBackendTypeIsValid(t *testing.T) {
	for _, bt := range []BackendType{MemoryBackend, SQLiteBackend, SupabaseBackend} {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("sheets").IsValid() {
		t.Error("unknown type accepted")
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	f := NewFactory(nil)

	res, err := f.CreateBackend(context.Background(), &config.Config{DataBackend: "memory"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Store == nil || res.Identity == nil {
		t.Fatal("memory backend missing store or identity")
	}
	if res.Cleanup != nil {
		t.Fatal("memory backend should not need cleanup")
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	f := NewFactory(nil)

	res, err := f.CreateBackend(context.Background(), &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: ":memory:",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Store == nil || res.Identity == nil {
		t.Fatal("sqlite backend missing store or identity")
	}
	if res.Cleanup == nil {
		t.Fatal("sqlite backend must expose cleanup")
	}
	if err := res.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}

func TestCreateUnknownBackend(t *testing.T) {
	f := NewFactory(nil)

	if _, err := f.CreateBackend(context.Background(), &config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
