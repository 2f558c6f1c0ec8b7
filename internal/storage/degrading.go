package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Degrading mirrors every write into memory. The first failure of the primary
// store switches it to memory-only operation for the rest of the process.
type Degrading struct {
	primary  Store
	memory   *MemoryStore
	degraded atomic.Bool
	log      *slog.Logger
}

func NewDegrading(primary Store, log *slog.Logger) *Degrading {
	if log == nil {
		log = slog.Default()
	}
	return &Degrading{
		primary: primary,
		memory:  NewMemoryStore(),
		log:     log.With("component", "storage"),
	}
}

func (d *Degrading) Degraded() bool {
	return d.degraded.Load()
}

func (d *Degrading) Get(ctx context.Context, key string) ([]byte, error) {
	if !d.degraded.Load() {
		data, err := d.primary.Get(ctx, key)
		if err == nil {
			_ = d.memory.Set(ctx, key, data)
			return data, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		d.degrade("get", key, err)
	}
	return d.memory.Get(ctx, key)
}

func (d *Degrading) Set(ctx context.Context, key string, value []byte) error {
	_ = d.memory.Set(ctx, key, value)
	if d.degraded.Load() {
		return nil
	}
	if err := d.primary.Set(ctx, key, value); err != nil {
		d.degrade("set", key, err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (d *Degrading) Delete(ctx context.Context, key string) error {
	_ = d.memory.Delete(ctx, key)
	if d.degraded.Load() {
		return nil
	}
	if err := d.primary.Delete(ctx, key); err != nil {
		d.degrade("delete", key, err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (d *Degrading) degrade(op, key string, err error) {
	if d.degraded.CompareAndSwap(false, true) {
		d.log.Warn("storage_degraded", "op", op, "key", key, "reason", "falling back to in-memory state", "error", err)
	}
}
