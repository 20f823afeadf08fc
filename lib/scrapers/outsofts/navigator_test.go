package outsofts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func testTiming() NavigatorTiming {
	// real waits are pointless against a fake view
	return NavigatorTiming{}
}

func TestNavigatorAlreadyThere(t *testing.T) {
	view := newFakeView()
	view.currentPage = 3

	nav := NewNavigator(view, newFakeClock(), testTiming())
	state, err := nav.GoToPage(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, NavAtTarget, state)
}

func TestNavigatorDirectJump(t *testing.T) {
	view := newFakeView()
	view.pageItems[5] = true

	nav := NewNavigator(view, newFakeClock(), testTiming())
	state, err := nav.GoToPage(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, NavAtTarget, state)
	require.Equal(t, 5, view.currentPage)
}

func TestNavigatorAdvancesWhenControlMissing(t *testing.T) {
	view := newFakeView()
	// page 4's numbered control is not rendered, only next-clicks work

	nav := NewNavigator(view, newFakeClock(), testTiming())
	state, err := nav.GoToPage(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, NavAtTarget, state)
	require.Equal(t, 4, view.currentPage)
}

func TestNavigatorOvershoot(t *testing.T) {
	view := newFakeView()
	view.currentPage = 2
	view.nextStep = 2

	nav := NewNavigator(view, newFakeClock(), testTiming())
	state, err := nav.GoToPage(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, NavOvershot, state)
}

func TestNavigatorFailsWhenPagesRunOut(t *testing.T) {
	view := newFakeView()
	view.currentPage = 1
	view.nextEnabled = false

	nav := NewNavigator(view, newFakeClock(), testTiming())
	state, err := nav.GoToPage(context.Background(), 9)
	require.NoError(t, err)
	require.Equal(t, NavFailed, state)
}

func TestNavigatorFailsWhenIndicatorNeverAppears(t *testing.T) {
	view := newFakeView()
	view.noIndicator = true

	nav := NewNavigator(view, newFakeClock(), testTiming())
	state, err := nav.GoToPage(context.Background(), 2)
	require.NoError(t, err)
	// a transiently absent indicator is tolerated each round, but the
	// attempt budget eventually runs out
	require.Equal(t, NavFailed, state)
}

func TestNavigatorCancelled(t *testing.T) {
	view := newFakeView()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	nav := NewNavigator(view, newFakeClock(), DefaultNavigatorTiming())
	_, err := nav.GoToPage(ctx, 4)
	require.Error(t, err)
}
