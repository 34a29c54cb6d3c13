package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedPacerSpacesReleases(t *testing.T) {
	pacer := NewFixedPacer(30 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, pacer.Wait(ctx))
	}

	// First release is immediate, the next two each wait the full delay.
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestFixedPacerZeroDelay(t *testing.T) {
	pacer := NewFixedPacer(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, pacer.Wait(ctx))
	}

	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestFixedPacerCancel(t *testing.T) {
	pacer := NewFixedPacer(time.Minute)

	require.NoError(t, pacer.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pacer.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
