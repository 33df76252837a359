package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-agnus/agnus/timing"
)

func TestVBlankSignals(t *testing.T) {
	v := NewVBlank(timing.NewTickerLimiter(time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	v.Start(ctx)
	for i := 0; i < 3; i++ {
		require.NoError(t, v.Wait(ctx))
	}
	v.Stop()
	assert.GreaterOrEqual(t, v.Count(), uint64(3))

	// stopping twice is fine
	v.Stop()
}

func TestVBlankWaitHonoursContext(t *testing.T) {
	v := NewVBlank(timing.NewNoOpLimiter())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, v.Wait(ctx), context.Canceled)
}

func TestImmediate(t *testing.T) {
	var src Source = &Immediate{}
	ctx := context.Background()
	require.NoError(t, src.Wait(ctx))
	require.NoError(t, src.Wait(ctx))
	assert.Equal(t, uint64(2), src.Count())

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, src.Wait(ctx))
	assert.Equal(t, uint64(2), src.Count())
}
