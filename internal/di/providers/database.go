package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/shelfdapp/shelfd-server/internal/config"
	"github.com/shelfdapp/shelfd-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite-backed store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	dbFile := cfg.DatabaseFile()
	db, err := sqlite.Open(dbFile, log)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbFile)

	return &StoreHandle{Store: db}, nil
}
