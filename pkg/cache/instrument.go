package cache

import (
	"context"
	"time"

	"github.com/blockprint/blockprint/pkg/observability"
)

// Instrument wraps c so that every lookup and write is reported to the
// registered observability cache hooks, labelled with [KeyType].
func Instrument(c Cache) Cache {
	if c == nil {
		return nil
	}
	if _, ok := c.(*instrumented); ok {
		return c
	}
	return &instrumented{inner: c}
}

type instrumented struct {
	inner Cache
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := i.inner.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, hit, err
}

func (i *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := i.inner.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	return i.inner.Delete(ctx, key)
}

func (i *instrumented) Close() error { return i.inner.Close() }
