package outsofts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"yqzx-crawler/internal/chrono"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	// ErrNoAffordance means the order's row offers nothing to click.
	ErrNoAffordance = errors.New("order row has no detail affordance")
	// ErrAffordanceRejected means the element was found but refused
	// (disabled or not visible).
	ErrAffordanceRejected = errors.New("detail affordance rejected")
	// ErrNoCapture means the trigger produced no detail response within
	// the retry budget.
	ErrNoCapture = errors.New("no detail response captured")
)

// DetailFetcher triggers an order's detail view and attaches the backend
// payload the click provoked. Attribution is by timing: the capture
// buffer is cleared right before the click and whatever lands in it
// afterwards belongs to this order.
type DetailFetcher struct {
	view       View
	correlator *Correlator
	time       chrono.TimeAPI
	policy     RetryPolicy
}

func NewDetailFetcher(view View, correlator *Correlator, timeAPI chrono.TimeAPI, policy RetryPolicy) *DetailFetcher {
	return &DetailFetcher{
		view:       view,
		correlator: correlator,
		time:       timeAPI,
		policy:     policy,
	}
}

// Fetch mutates order in place: on success order.Detail is set, and on
// any failure the list view is restored before the error returns.
func (f *DetailFetcher) Fetch(ctx context.Context, order *RawOrder) error {
	ctx, span := tracer.Start(ctx, "DetailFetcher.Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("order_id", order.ID),
		attribute.String("serial_number", order.SerialNumber),
	)

	if !order.HasActionButton {
		return ErrNoAffordance
	}

	f.correlator.Clear()

	outcome, err := f.view.ClickAffordance(ctx, f.refFor(order))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "affordance click failed")
		return err
	}
	if !outcome.Clicked {
		slog.Warn("detail affordance rejected",
			"order_id", order.ID,
			"reason", outcome.Reason,
			"disabled", outcome.Disabled,
			"invisible", outcome.Invisible)
		return fmt.Errorf("%w: %s", ErrAffordanceRejected, outcome.Reason)
	}

	capture, err := f.awaitCapture(ctx, order)
	f.view.DismissModal(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "no capture within retry budget")
		return err
	}

	order.Detail = &Detail{
		Data:      capture.Data,
		URL:       capture.URL,
		Timestamp: capture.Timestamp,
	}
	slog.Info("attached order detail", "order_id", order.ID, "url", capture.URL)
	return nil
}

// awaitCapture polls the correlator with growing waits.
func (f *DetailFetcher) awaitCapture(ctx context.Context, order *RawOrder) (Capture, error) {
	for attempt := 0; attempt < f.policy.MaxAttempts; attempt++ {
		if err := f.time.Sleep(ctx, f.policy.Wait(attempt)); err != nil {
			return Capture{}, err
		}
		if capture, ok := f.correlator.Latest(); ok {
			return capture, nil
		}
		slog.Debug("still waiting for detail response",
			"order_id", order.ID, "attempt", attempt+1)
	}
	return Capture{}, fmt.Errorf("%w after %d attempts: order %s",
		ErrNoCapture, f.policy.MaxAttempts, order.ID)
}

// refFor rebuilds a clickable reference from what extraction recorded.
// The DOM may have been re-rendered since, so the row is found again by
// key first and by distinctive text as a fallback.
func (f *DetailFetcher) refFor(order *RawOrder) AffordanceRef {
	ref := AffordanceRef{
		Tag:       order.ActionElementType,
		MatchText: order.ActionButtonText,
		RowText:   rowTextFor(order),
	}
	// synthetic positional ids are not DOM row keys
	if !strings.HasPrefix(order.ID, "order_") {
		ref.RowKey = order.ID
	}
	return ref
}

// rowTextFor picks the most distinctive text fragment available for
// relocating the order's row.
func rowTextFor(order *RawOrder) string {
	if order.SerialNumber != "" {
		return order.SerialNumber
	}
	if order.Applicant != "" {
		return order.Applicant
	}
	content := []rune(order.Content)
	if len(content) > 20 {
		content = content[:20]
	}
	return string(content)
}
