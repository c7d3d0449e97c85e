package cache

import (
	"context"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

// ErrBackend marks failures of the cache backend itself, as opposed to
// failures of the value being computed.
var ErrBackend = crerr.New("cache backend failure")

// Store keeps encoded values under string keys with no expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Loader is implemented by stores that can coalesce concurrent loads of
// the same key.
type Loader interface {
	GetOrLoad(ctx context.Context, key string, load func(context.Context) ([]byte, error)) ([]byte, error)
}

// GetOrCompute returns the value cached under key, or runs compute, stores
// its result and returns it. The bool reports whether the value came from
// the cache.
func GetOrCompute[T any](ctx context.Context, store Store, key string, compute func(context.Context) (T, error)) (T, bool, error) {
	var zero T
	if compute == nil {
		return zero, false, crerr.New("compute is required")
	}
	if store == nil {
		value, err := compute(ctx)
		return value, false, err
	}

	var (
		computed bool
		value    T
	)
	encode := func(ctx context.Context) ([]byte, error) {
		out, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := sonic.Marshal(out)
		if err != nil {
			return nil, crerr.Mark(crerr.Wrapf(err, "encode cache value key=%s", key), ErrBackend)
		}
		computed = true
		value = out
		return raw, nil
	}

	if loader, ok := store.(Loader); ok {
		raw, err := loader.GetOrLoad(ctx, key, encode)
		if err != nil {
			return zero, false, err
		}
		if computed {
			return value, false, nil
		}
		return decode[T](key, raw)
	}

	raw, hit, err := store.Get(ctx, key)
	if err != nil {
		return zero, false, crerr.Mark(crerr.Wrapf(err, "read cache key=%s", key), ErrBackend)
	}
	if hit {
		return decode[T](key, raw)
	}

	encoded, err := encode(ctx)
	if err != nil {
		return zero, false, err
	}
	if err := store.Set(ctx, key, encoded); err != nil {
		return zero, false, crerr.Mark(crerr.Wrapf(err, "write cache key=%s", key), ErrBackend)
	}
	return value, false, nil
}

func decode[T any](key string, raw []byte) (T, bool, error) {
	var out T
	if err := sonic.Unmarshal(raw, &out); err != nil {
		var zero T
		return zero, false, crerr.Mark(crerr.Wrapf(err, "decode cache value key=%s", key), ErrBackend)
	}
	return out, true, nil
}

type prefixed struct {
	store  Store
	prefix string
}

// WithPrefix namespaces every key of store.
func WithPrefix(store Store, prefix string) Store {
	if prefix == "" {
		return store
	}
	return prefixed{store: store, prefix: prefix}
}

func (p prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.store.Get(ctx, p.prefix+key)
}

func (p prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.store.Set(ctx, p.prefix+key, value)
}

func (p prefixed) GetOrLoad(ctx context.Context, key string, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if loader, ok := p.store.(Loader); ok {
		return loader.GetOrLoad(ctx, p.prefix+key, load)
	}
	raw, hit, err := p.store.Get(ctx, p.prefix+key)
	if err != nil {
		return nil, crerr.Mark(err, ErrBackend)
	}
	if hit {
		return raw, nil
	}
	raw, err = load(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.store.Set(ctx, p.prefix+key, raw); err != nil {
		return nil, crerr.Mark(err, ErrBackend)
	}
	return raw, nil
}
