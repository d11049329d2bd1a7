package backend

import (
	"context"
	"fmt"

	"spendwise/internal/config"
	"spendwise/internal/identity"
	identitysupa "spendwise/internal/identity/supabase"
	"spendwise/internal/log"
	"spendwise/internal/store/memory"
	"spendwise/internal/store/sqlite"
	storesupa "spendwise/internal/store/supabase"
)

type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentBackend})
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, cfg *config.Config) (*Result, error) {
	backendType := BackendType(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch backendType {
	case MemoryBackend:
		return f.createMemoryBackend()
	case SQLiteBackend:
		return f.createSQLiteBackend(cfg)
	case SupabaseBackend:
		return f.createSupabaseBackend(cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", backendType)
	}
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	f.logger.Info("Initialized memory backend")
	return &Result{
		Store:    memory.New(),
		Identity: identity.NewMemoryProvider(),
		Cleanup:  nil,
	}, nil
}

// createSQLiteBackend pairs durable storage with in-process accounts.
// Sessions do not survive a restart in this mode; clients sign in again.
func (f *DefaultFactory) createSQLiteBackend(cfg *config.Config) (*Result, error) {
	st, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", log.FieldBackend, "sqlite", "db_path", cfg.SQLiteDBPath)

	return &Result{
		Store:    st,
		Identity: identity.NewMemoryProvider(),
		Cleanup:  st.Close,
	}, nil
}

func (f *DefaultFactory) createSupabaseBackend(cfg *config.Config) (*Result, error) {
	st, err := storesupa.NewFromCredentials(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Supabase store: %w", err)
	}

	f.logger.Info("Initialized Supabase backend", log.FieldBackend, "supabase", "project", cfg.SupabaseProjectRef)

	return &Result{
		Store:    st,
		Identity: identitysupa.New(cfg.SupabaseProjectRef, cfg.SupabaseAnonKey),
		Cleanup:  nil,
	}, nil
}
