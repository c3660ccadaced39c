package ephemeris

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"AstroSignal/internal/domain/models"
	domrepo "AstroSignal/internal/domain/repository"
	"AstroSignal/pkg/cache"
	applogger "AstroSignal/pkg/logger"
)

// Cached memoizes another provider. Longitudes for a given (body, instant)
// never change, so entries only expire to bound storage.
type Cached struct {
	next      domrepo.EphemerisProvider
	store     cache.Service
	namespace string
	ttl       time.Duration
	group     singleflight.Group
	l         *applogger.Logger
}

type CachedOption func(*Cached)

// WithNamespace separates keys of different backends sharing one store.
func WithNamespace(ns string) CachedOption {
	return func(c *Cached) { c.namespace = ns }
}

func WithTTL(ttl time.Duration) CachedOption {
	return func(c *Cached) { c.ttl = ttl }
}

func WithCacheLogger(l *applogger.Logger) CachedOption {
	return func(c *Cached) { c.l = l }
}

func NewCached(next domrepo.EphemerisProvider, store cache.Service, opts ...CachedOption) *Cached {
	c := &Cached{next: next, store: store, namespace: "default", ttl: 24 * time.Hour}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cached) Longitude(ctx context.Context, t time.Time, body models.Body) (float64, error) {
	key := cache.Key("eph", c.namespace, string(body), t.Unix())

	var lon float64
	err := c.store.Get(ctx, key, &lon)
	if err == nil {
		return lon, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) && c.l != nil {
		c.l.Warn("ephemeris cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		lon, err := c.next.Longitude(ctx, t, body)
		if err != nil {
			return 0.0, err
		}
		if err := c.store.Set(ctx, key, lon, c.ttl); err != nil && c.l != nil {
			c.l.Warn("ephemeris cache write failed", applogger.String("key", key), applogger.Error(err))
		}
		return lon, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}
