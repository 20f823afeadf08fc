package outsofts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"yqzx-crawler/internal/chrono"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	// ErrNavigation means the target page could not be reached.
	ErrNavigation = errors.New("pagination navigation failed")
	// ErrNoOrders means the reached page rendered no order rows.
	ErrNoOrders = errors.New("no orders extracted from page")
)

// RunnerConfig bounds a single harvest pass.
type RunnerConfig struct {
	// Skip drops this many orders from the front of the page.
	Skip int
	// Limit caps how many orders are processed; 0 means all of them.
	Limit int
	// SinceID stops collection when this order id is encountered. The
	// matching order itself is excluded.
	SinceID string
	// DelayBetweenOrders paces detail fetches; doubled after an order
	// that produced no capture.
	DelayBetweenOrders time.Duration
	// MarkReadWait is how long the list takes to re-render after a
	// mark-as-read click.
	MarkReadWait time.Duration
}

func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		DelayBetweenOrders: 3 * time.Second,
		MarkReadWait:       4 * time.Second,
	}
}

// Result is everything one harvest pass collected.
type Result struct {
	Page     int         `json:"page"`
	Orders   []*RawOrder `json:"orders"`
	Failures []Failure   `json:"failures"`
}

// Runner walks one page of the pending-approval table: navigate, extract
// every row, then fetch each order's detail payload sequentially.
type Runner struct {
	view       View
	correlator *Correlator
	navigator  *Navigator
	fetcher    *DetailFetcher
	time       chrono.TimeAPI
	config     RunnerConfig
}

func NewRunner(
	view View,
	correlator *Correlator,
	timeAPI chrono.TimeAPI,
	policy RetryPolicy,
	config RunnerConfig,
) *Runner {
	return &Runner{
		view:       view,
		correlator: correlator,
		navigator:  NewNavigator(view, timeAPI, DefaultNavigatorTiming()),
		fetcher:    NewDetailFetcher(view, correlator, timeAPI, policy),
		time:       timeAPI,
		config:     config,
	}
}

// Run harvests the given 1-based page.
func (r *Runner) Run(ctx context.Context, page int) (*Result, error) {
	ctx, span := tracer.Start(ctx, "Runner.Run")
	defer span.End()
	span.SetAttributes(attribute.Int("page", page))

	state, err := r.navigator.GoToPage(ctx, page)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if state != NavAtTarget {
		span.SetStatus(codes.Error, "navigation did not reach target")
		return nil, fmt.Errorf("%w: page %d ended in state %s", ErrNavigation, page, state)
	}

	r.view.WaitTableSettled(ctx)
	html, err := r.view.HTML(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := ExtractOrders(html)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		span.SetStatus(codes.Error, "empty extraction")
		return nil, fmt.Errorf("%w: page %d", ErrNoOrders, page)
	}
	slog.Info("extracted orders", "page", page, "count", len(orders))

	selected := r.selectWindow(orders)
	slog.Info("processing orders",
		"selected", len(selected), "skipped", r.config.Skip, "available", len(orders))

	result := &Result{Page: page, Orders: selected}
	for i, order := range selected {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slog.Info("processing order",
			"position", fmt.Sprintf("%d/%d", i+1, len(selected)),
			"order_id", order.ID,
			"form_type", order.FormType)

		switch {
		case strings.Contains(order.ActionButtonText, "标记已读"):
			r.processMarkRead(ctx, result, i, order)
		case !order.HasActionButton:
			order.NoDetail = true
			result.Failures = append(result.Failures, failureFor(i, order, ReasonNoActionButton))
		default:
			if err := r.fetcher.Fetch(ctx, order); err != nil {
				slog.Warn("detail fetch failed", "order_id", order.ID, "err", err)
				result.Failures = append(result.Failures, failureFor(i, order, ReasonDetailFailed))
			}
		}

		if err := r.time.Sleep(ctx, r.orderDelay()); err != nil {
			return nil, err
		}
	}

	span.SetAttributes(
		attribute.Int("orders", len(result.Orders)),
		attribute.Int("failures", len(result.Failures)),
	)
	return result, nil
}

// selectWindow applies skip, limit and the since-id stop to the freshly
// extracted page.
func (r *Runner) selectWindow(orders []*RawOrder) []*RawOrder {
	skip := r.config.Skip
	if skip > len(orders) {
		skip = len(orders)
	}
	max := len(orders) - skip
	if r.config.Limit > 0 && r.config.Limit < max {
		max = r.config.Limit
	}

	var selected []*RawOrder
	for _, order := range orders[skip : skip+max] {
		if r.config.SinceID != "" && order.ID == r.config.SinceID {
			slog.Info("reached last synced order, stopping", "since_id", r.config.SinceID)
			break
		}
		selected = append(selected, order)
	}
	return selected
}

// processMarkRead clicks a mark-as-read affordance, waits for the list to
// re-render, and fetches the detail if the row now offers one.
func (r *Runner) processMarkRead(ctx context.Context, result *Result, i int, order *RawOrder) {
	slog.Info("marking order as read", "order_id", order.ID)

	ref := AffordanceRef{
		Tag:       "span",
		MatchText: "标记已读",
		RowText:   rowTextFor(order),
	}
	if !strings.HasPrefix(order.ID, "order_") {
		ref.RowKey = order.ID
	}
	if _, err := r.view.ClickAffordance(ctx, ref); err != nil {
		slog.Warn("mark-as-read click failed", "order_id", order.ID, "err", err)
		order.NoDetail = true
		return
	}
	if err := r.time.Sleep(ctx, r.config.MarkReadWait); err != nil {
		return
	}

	refreshed, err := r.reExtract(ctx, order)
	if err != nil || refreshed == nil {
		slog.Warn("order not found after mark-as-read", "order_id", order.ID, "err", err)
		order.NoDetail = true
		return
	}
	if !refreshed.HasActionButton || !strings.Contains(refreshed.ActionButtonText, "查看详情") {
		slog.Info("order still offers no detail after mark-as-read", "order_id", order.ID)
		order.NoDetail = true
		return
	}

	if err := r.fetcher.Fetch(ctx, refreshed); err != nil {
		slog.Warn("detail fetch failed after mark-as-read", "order_id", order.ID, "err", err)
		result.Failures = append(result.Failures, failureFor(i, order, ReasonDetailFailed))
	}
	result.Orders[i] = refreshed
}

// reExtract re-reads the list and finds the same order again, by serial
// number first since row keys can change across re-renders.
func (r *Runner) reExtract(ctx context.Context, order *RawOrder) (*RawOrder, error) {
	r.view.WaitTableSettled(ctx)
	html, err := r.view.HTML(ctx)
	if err != nil {
		return nil, err
	}
	refreshed, err := ExtractOrders(html)
	if err != nil {
		return nil, err
	}

	if order.SerialNumber != "" {
		for _, candidate := range refreshed {
			if candidate.SerialNumber == order.SerialNumber {
				return candidate, nil
			}
		}
	}
	for _, candidate := range refreshed {
		if candidate.ID == order.ID {
			return candidate, nil
		}
	}
	return nil, nil
}

func (r *Runner) orderDelay() time.Duration {
	if r.correlator.Size() > 0 {
		return r.config.DelayBetweenOrders
	}
	return r.config.DelayBetweenOrders * 2
}

func failureFor(i int, order *RawOrder, reason string) Failure {
	return Failure{
		Index:        i + 1,
		ID:           order.ID,
		SerialNumber: order.SerialNumber,
		Applicant:    order.Applicant,
		Reason:       reason,
	}
}
