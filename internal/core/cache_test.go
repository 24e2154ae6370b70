package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPredictor struct {
	calls atomic.Int32
	err   error
}

func (p *countingPredictor) Predict(_ context.Context, features []float64) (float64, error) {
	p.calls.Add(1)
	if p.err != nil {
		return 0, p.err
	}
	return features[0] * 10, nil
}

func (p *countingPredictor) Release() {}

func TestWithCacheDisabled(t *testing.T) {
	inner := &countingPredictor{}
	p, err := WithCache(inner, 0)
	require.NoError(t, err)
	assert.Same(t, inner, p)
}

func TestCachedPredictor(t *testing.T) {
	inner := &countingPredictor{}
	p, err := WithCache(inner, 2)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		y, err := p.Predict(ctx, []float64{2.0, 4})
		require.NoError(t, err)
		assert.Equal(t, 20.0, y)
	}
	assert.Equal(t, int32(1), inner.calls.Load())

	_, _ = p.Predict(ctx, []float64{3.0, 4})
	_, _ = p.Predict(ctx, []float64{4.0, 4})
	assert.Equal(t, 2, p.(*CachedPredictor).Len())

	// {2.0, 4} was evicted by the two newer entries.
	_, _ = p.Predict(ctx, []float64{2.0, 4})
	assert.Equal(t, int32(4), inner.calls.Load())
}

func TestCachedPredictorDoesNotCacheErrors(t *testing.T) {
	inner := &countingPredictor{err: errors.New("boom")}
	p, err := WithCache(inner, 8)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := p.Predict(context.Background(), []float64{2.0, 4})
		assert.Error(t, err)
	}
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, 0, p.(*CachedPredictor).Len())
}
