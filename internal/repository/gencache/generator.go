// Package gencache caches generated rulings in a key-value store, keyed by model and prompt.
package gencache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexcase/internal/db"
)

const cacheKeyPrefix = "lexcase:gen_cache:"

// generator is the decorated text-generation collaborator.
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// store is the consumer interface for the generation cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedGenerator serves repeated prompts from a key-value store.
// Store failures are logged and never fail a generation.
type CachedGenerator struct {
	inner      generator
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. ttl <= 0 keeps entries without expiry.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner generator,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedGenerator {
	return &CachedGenerator{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Model returns the decorated generator's model.
func (c *CachedGenerator) Model() string { return c.inner.Model() }

// Generate returns a cached completion or calls the inner generator.
// Errors from the inner generator are returned unchanged so callers can
// still tell a timeout from an unavailable provider.
func (c *CachedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	key := c.cacheKey(prompt)

	if text, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return text, nil
	}

	c.incCache("miss")

	text, err := c.inner.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	if text != "" {
		c.putToCache(ctx, key, text)
	}
	return text, nil
}

func (c *CachedGenerator) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedGenerator) cacheKey(prompt string) string {
	h := sha256.New()
	h.Write([]byte(c.inner.Model()))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedGenerator) getFromCache(ctx context.Context, key string) (string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached generation", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (c *CachedGenerator) putToCache(ctx context.Context, key, text string) {
	var err error
	if c.ttl > 0 {
		err = c.store.SetWithTTL(ctx, key, []byte(text), c.ttl)
	} else {
		err = c.store.Set(ctx, key, []byte(text))
	}
	if err != nil {
		c.logger.Warn("Failed to cache generation", zap.String("key", key), zap.Error(err))
	}
}
