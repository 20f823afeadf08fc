package outsofts

import (
	"context"
	"log/slog"
	"time"

	"yqzx-crawler/internal/chrono"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// NavState is the terminal state of a navigation attempt.
type NavState int

const (
	NavUnknown NavState = iota
	NavVerifying
	NavAtTarget
	NavAdvancing
	NavOvershot
	NavFailed
)

func (s NavState) String() string {
	switch s {
	case NavUnknown:
		return "unknown"
	case NavVerifying:
		return "verifying"
	case NavAtTarget:
		return "at_target"
	case NavAdvancing:
		return "advancing"
	case NavOvershot:
		return "overshot"
	case NavFailed:
		return "failed"
	}
	return "invalid"
}

// NavigatorTiming holds the settle waits between pagination actions.
type NavigatorTiming struct {
	// AfterDirectJump is how long to wait after clicking a numbered page
	// control before verifying arrival.
	AfterDirectJump time.Duration
	// BeforeVerify is the pause before reading the page indicator in the
	// advance loop.
	BeforeVerify time.Duration
	// AfterNext is how long to wait after a next-page click.
	AfterNext time.Duration
	// BeforeNext is the pause after scrolling the next control into view.
	BeforeNext time.Duration
}

func DefaultNavigatorTiming() NavigatorTiming {
	return NavigatorTiming{
		AfterDirectJump: 8 * time.Second,
		BeforeVerify:    3 * time.Second,
		AfterNext:       5 * time.Second,
		BeforeNext:      time.Second,
	}
}

// Navigator drives the table view to a 1-based page index, verifying
// arrival via the pagination indicator. It tries a direct jump first and
// falls back to advancing one page at a time.
type Navigator struct {
	view   View
	time   chrono.TimeAPI
	timing NavigatorTiming
}

func NewNavigator(view View, timeAPI chrono.TimeAPI, timing NavigatorTiming) *Navigator {
	return &Navigator{view: view, time: timeAPI, timing: timing}
}

// GoToPage navigates to target. The returned state is NavAtTarget on
// success; NavOvershot and NavFailed are both failures for callers.
func (n *Navigator) GoToPage(ctx context.Context, target int) (NavState, error) {
	ctx, span := tracer.Start(ctx, "Navigator.GoToPage")
	defer span.End()
	span.SetAttributes(attribute.Int("target_page", target))

	n.view.WaitTableSettled(ctx)

	current, err := n.view.ActivePage(ctx)
	if err != nil {
		return NavFailed, err
	}
	if current == target {
		slog.Info("already at target page", "page", target)
		return NavAtTarget, nil
	}

	state, err := n.directJump(ctx, target)
	if err != nil || state == NavAtTarget {
		return state, err
	}

	return n.advance(ctx, target)
}

// directJump clicks the numbered page control when it is rendered.
func (n *Navigator) directJump(ctx context.Context, target int) (NavState, error) {
	clicked, err := n.view.ClickPageItem(ctx, target)
	if err != nil {
		return NavFailed, err
	}
	if !clicked {
		slog.Debug("page control not rendered, advancing instead", "page", target)
		return NavAdvancing, nil
	}

	if err := n.time.Sleep(ctx, n.timing.AfterDirectJump); err != nil {
		return NavFailed, err
	}
	current, err := n.view.ActivePage(ctx)
	if err != nil {
		return NavFailed, err
	}
	if current == target {
		slog.Info("reached target page directly", "page", target)
		return NavAtTarget, nil
	}
	return NavAdvancing, nil
}

// advance clicks next-page until the indicator verifies arrival, the page
// set is exhausted, or the attempt budget runs out.
func (n *Navigator) advance(ctx context.Context, target int) (NavState, error) {
	_, span := tracer.Start(ctx, "Navigator.advance")
	defer span.End()

	maxAttempts := target + 5
	if maxAttempts < 30 {
		maxAttempts = 30
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := n.time.Sleep(ctx, n.timing.BeforeVerify); err != nil {
			return NavFailed, err
		}

		// the indicator may be transiently absent (ActivePage == 0),
		// that is recoverable, keep going
		current, err := n.view.ActivePage(ctx)
		if err != nil {
			return NavFailed, err
		}
		if current == target {
			slog.Info("reached target page", "page", target, "attempts", attempt)
			return NavAtTarget, nil
		}
		if current > target {
			slog.Warn("overshot target page", "page", current, "target", target)
			span.SetStatus(codes.Error, "overshot target page")
			return NavOvershot, nil
		}

		if err := n.time.Sleep(ctx, n.timing.BeforeNext); err != nil {
			return NavFailed, err
		}
		clicked, err := n.view.ClickNext(ctx)
		if err != nil {
			return NavFailed, err
		}
		if !clicked {
			slog.Warn("no next-page control available", "target", target)
			span.SetStatus(codes.Error, "next-page control unavailable")
			return NavFailed, nil
		}
		if err := n.time.Sleep(ctx, n.timing.AfterNext); err != nil {
			return NavFailed, err
		}
		n.view.WaitTableSettled(ctx)
	}

	span.SetStatus(codes.Error, "advance attempts exhausted")
	return NavFailed, nil
}
