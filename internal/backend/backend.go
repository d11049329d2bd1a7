// Package backend assembles the storage and identity pair selected by
// configuration.
package backend

import (
	"context"

	"spendwise/internal/config"
	"spendwise/internal/identity"
	"spendwise/internal/store"
)

type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	SupabaseBackend BackendType = "supabase"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, SupabaseBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result bundles what a backend provides: durable storage, an identity
// provider, and an optional cleanup hook.
type Result struct {
	Store    store.Store
	Identity identity.Provider
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, cfg *config.Config) (*Result, error)
}
