package cli

import (
	"fmt"

	"todolist/internal/config"
	"todolist/internal/kv"
	"todolist/internal/service"
)

// openService returns the task service selected by configuration, plus a
// function releasing whatever it holds open.
func (a *app) openService() (service.TaskService, func() error, error) {
	cfg := a.cfg
	if !cfg.UseLocal {
		svc, err := service.NewRemote(cfg.APIURL)
		if err != nil {
			return nil, nil, err
		}
		a.logger.Debug("using task API", "url", cfg.APIURL)
		return svc, func() error { return nil }, nil
	}

	store, err := openKV(cfg)
	if err != nil {
		return nil, nil, err
	}
	svc, err := service.NewLocal(store, cfg.StorageKey, a.logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	a.logger.Debug("using local storage", "storage", cfg.Storage, "key", cfg.StorageKey)
	return svc, store.Close, nil
}

func openKV(cfg *config.Config) (kv.KV, error) {
	switch cfg.Storage {
	case config.StorageRedis:
		return kv.NewRedis(cfg.RedisURL)
	case config.StorageFile:
		return kv.NewFile(cfg.StorageDir)
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}
