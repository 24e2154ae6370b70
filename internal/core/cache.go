package core

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

type featureKey [FeatureCount]float64

// CachedPredictor memoizes predictions of a deterministic predictor. Errors are
// never cached.
type CachedPredictor struct {
	predictor Predictor
	cache     *lru.Cache[featureKey, float64]
}

// WithCache wraps predictor in an LRU cache of the given size. A size of zero or
// less disables caching and returns predictor unchanged.
func WithCache(predictor Predictor, size int) (Predictor, error) {
	if size <= 0 {
		return predictor, nil
	}

	cache, err := lru.New[featureKey, float64](size)
	if err != nil {
		return nil, fmt.Errorf("error creating prediction cache: %w", err)
	}

	return &CachedPredictor{predictor: predictor, cache: cache}, nil
}

func (c *CachedPredictor) Predict(ctx context.Context, features []float64) (float64, error) {
	if len(features) != FeatureCount {
		return c.predictor.Predict(ctx, features)
	}

	var key featureKey
	copy(key[:], features)

	if y, ok := c.cache.Get(key); ok {
		return y, nil
	}

	y, err := c.predictor.Predict(ctx, features)
	if err != nil {
		return 0, err
	}
	c.cache.Add(key, y)
	return y, nil
}

func (c *CachedPredictor) Len() int {
	return c.cache.Len()
}

func (c *CachedPredictor) Release() {
	c.cache.Purge()
	c.predictor.Release()
}
