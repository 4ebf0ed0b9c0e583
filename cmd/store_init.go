package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/capture-cli/internal/extract"
	"github.com/sells-group/capture-cli/internal/protocol"
	"github.com/sells-group/capture-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "file":
		path := cfg.Store.Path
		if path == "" {
			path = "capture.json"
		}
		return store.NewFile(path), nil
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "capture.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initExtractor() (*extract.Extractor, error) {
	return extract.New(
		extract.WithSettleDelay(time.Duration(cfg.Capture.SettleDelayMS) * time.Millisecond),
	)
}

func protocolConfig() protocol.Config {
	return protocol.Config{
		PingTimeout:     time.Duration(cfg.Capture.PingTimeoutMS) * time.Millisecond,
		InjectSettle:    time.Duration(cfg.Capture.InjectSettleMS) * time.Millisecond,
		DispatchTimeout: time.Duration(cfg.Capture.DispatchTimeoutMS) * time.Millisecond,
	}
}
