package cli

import (
	"fmt"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/sqlitestore"
)

func openKV(cfg config.Config) (store.KV, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return jsonstore.New(cfg.DataDir)
	case config.BackendSQLite:
		return sqlitestore.Open(cfg.DataDir)
	case config.BackendMemory:
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
}
