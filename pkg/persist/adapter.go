package persist

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/observability"
	"github.com/matzehuels/roadmap/pkg/storage"
)

// DefaultKey is the storage key used when none is configured.
const DefaultKey = "roadmap"

// Adapter reads and writes the durable form through a storage backend.
// Failures are logged; the in-memory store stays authoritative.
type Adapter struct {
	Backend storage.Backend
	Key     string
	Logger  *log.Logger
	Timeout time.Duration // per operation, zero means none
}

// NewAdapter returns an adapter for key on b.
func NewAdapter(b storage.Backend, key string, logger *log.Logger) *Adapter {
	return &Adapter{Backend: b, Key: key, Logger: logger}
}

// Load reads the stored state. It returns false when nothing is stored or
// the stored form cannot be read or decoded; the reason is logged.
func (a *Adapter) Load(ctx context.Context) (State, bool) {
	ctx, cancel := a.context(ctx)
	defer cancel()

	data, hit, err := a.Backend.Get(ctx, a.key())
	observability.Storage().OnFetch(ctx, a.Backend.Driver(), hit, err)
	if err != nil {
		a.logger().Warn("load state failed", "driver", a.Backend.Driver(), "key", a.key(), "error", err)
		return State{}, false
	}
	if !hit {
		a.logger().Debug("no stored state", "driver", a.Backend.Driver(), "key", a.key())
		return State{}, false
	}

	s, err := Deserialize(data)
	if err != nil {
		a.logger().Warn("stored state rejected", "key", a.key(), "code", errors.GetCode(err), "error", err)
		return State{}, false
	}
	a.logger().Debug("state loaded", "key", a.key(), "nodes", len(s.Nodes), "edges", len(s.Edges), "hidden", s.HiddenNodeIDs.Len())
	return s, true
}

// Save writes s. Errors are logged and returned with code STORAGE_ERROR.
func (a *Adapter) Save(ctx context.Context, s State) error {
	ctx, cancel := a.context(ctx)
	defer cancel()

	data, err := Serialize(s)
	if err != nil {
		a.logger().Error("encode state failed", "error", err)
		return err
	}

	start := time.Now()
	err = a.Backend.Set(ctx, a.key(), data)
	observability.Storage().OnPersist(ctx, a.Backend.Driver(), len(data), time.Since(start), err)
	if err != nil {
		a.logger().Warn("save state failed", "driver", a.Backend.Driver(), "key", a.key(), "error", err)
		return errors.Wrap(errors.ErrCodeStorage, err, "save state")
	}
	return nil
}

// Clear deletes the stored state.
func (a *Adapter) Clear(ctx context.Context) error {
	ctx, cancel := a.context(ctx)
	defer cancel()
	if err := a.Backend.Delete(ctx, a.key()); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "clear state")
	}
	return nil
}

func (a *Adapter) key() string {
	if a.Key == "" {
		return DefaultKey
	}
	return a.Key
}

func (a *Adapter) logger() *log.Logger {
	if a.Logger == nil {
		return log.Default()
	}
	return a.Logger
}

func (a *Adapter) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.Timeout > 0 {
		return context.WithTimeout(ctx, a.Timeout)
	}
	return ctx, func() {}
}
