package outsofts

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCorrelatorMatches(t *testing.T) {
	c := NewCorrelator()
	require.True(t, c.Matches("https://businessapi.outsofts.net/sys/flow/Flow_Detail?id=1"))
	require.False(t, c.Matches("https://businessapi.outsofts.net/sys/flow/Flow_List"))
}

func TestCorrelatorLastWriteWins(t *testing.T) {
	c := NewCorrelator()

	_, ok := c.Latest()
	require.False(t, ok)

	for i := 0; i < 3; i++ {
		body := fmt.Sprintf(`{"data":{"data":{"sn":"XS%d"}}}`, i)
		c.Observe("https://example.com/Flow_Detail", []byte(body), nil)
	}
	require.Equal(t, 3, c.Size())

	capture, ok := c.Latest()
	require.True(t, ok)
	outer := capture.Data["data"].(map[string]any)
	inner := outer["data"].(map[string]any)
	require.Equal(t, "XS2", inner["sn"])
}

func TestCorrelatorDropsUnparsableBodies(t *testing.T) {
	c := NewCorrelator()
	c.Observe("https://example.com/Flow_Detail", []byte("<html>not json</html>"), nil)
	require.Equal(t, 0, c.Size())
}

func TestCorrelatorClear(t *testing.T) {
	c := NewCorrelator()
	c.Observe("https://example.com/Flow_Detail", []byte(`{"a":1}`), nil)
	require.Equal(t, 1, c.Size())

	c.Clear()
	require.Equal(t, 0, c.Size())
	_, ok := c.Latest()
	require.False(t, ok)
}
