package storage

import (
	"context"
	"fmt"

	"github.com/matzehuels/roadmap/pkg/config"
)

// Open creates the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Storage) (Backend, error) {
	if t := cfg.TimeoutDuration(); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	switch cfg.Driver {
	case config.DriverNull:
		return NewNull(), nil
	case config.DriverMemory:
		return NewMemory(), nil
	case config.DriverFile, "":
		dir := cfg.Dir
		if dir == "" {
			dir = config.DataDir()
		}
		return NewFile(dir)
	case config.DriverRedis:
		return NewRedis(ctx, cfg.URL, cfg.Prefix, cfg.TTLDuration())
	case config.DriverMongo:
		return NewMongo(ctx, cfg.URL, cfg.Database, cfg.Collection)
	case config.DriverPostgres:
		return NewPostgres(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
