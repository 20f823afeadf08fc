package serviceutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignalContextStaysAliveUntilSignalled(t *testing.T) {
	ctx := SignalContext()
	require.NotNil(t, ctx)

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled without a signal")
	case <-time.After(50 * time.Millisecond):
	}
	require.NoError(t, ctx.Err())
}
