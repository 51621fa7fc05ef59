package backend

import (
	"context"

	"expensetracker/internal/storage/local"
)

// CleanupFunc releases the resources of a created backend.
type CleanupFunc func() error

// Result holds the created dispatcher and its cleanup function.
type Result struct {
	Dispatcher *Dispatcher
	// Local is the adapter behind ModeLocal; it also keeps the saved session.
	Local   *local.Store
	Cleanup CleanupFunc
}

// Factory creates the local and cloud adapters from configuration.
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

type Config struct {
	Local       LocalType
	LocalDBPath string

	// CloudDatabaseURL enables the cloud adapter when set.
	CloudDatabaseURL string
	CloudMigrate     bool
}

// LocalType selects the local key-value store.
type LocalType string

const (
	SQLiteLocal LocalType = "sqlite"
	MemoryLocal LocalType = "memory"
)

func (lt LocalType) String() string {
	return string(lt)
}

func (lt LocalType) IsValid() bool {
	switch lt {
	case SQLiteLocal, MemoryLocal:
		return true
	default:
		return false
	}
}
