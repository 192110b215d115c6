package cli

import (
	"fmt"

	"github.com/conorfennell/muraje/internal/notify"
	"github.com/conorfennell/muraje/internal/session"
	"github.com/conorfennell/muraje/internal/storage"
)

// app is an opened store with a loaded session on top of it.
type app struct {
	store storage.Backend
	ctrl  *session.Controller
}

// openApp opens the configured store and loads the session. Notifications go
// to the log and to notifier.
func openApp(notifier notify.Notifier) (*app, error) {
	store, err := storage.OpenBackend(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s store at %s: %w", cfg.Storage.Driver, cfg.Storage.Path, err)
	}
	logger.Debug("store opened", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)

	ctrl := session.New(store, notify.Multi{notify.NewLog(logger), notifier},
		session.WithParams(cfg.Scheduler.Params()),
		session.WithLogger(logger),
	)
	if err := ctrl.Load(); err != nil {
		store.Close()
		return nil, err
	}
	return &app{store: store, ctrl: ctrl}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
