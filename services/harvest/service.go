// Package harvest runs the whole pipeline end to end: log in, walk a
// page of pending orders, fetch details, normalize, persist, upload.
package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"yqzx-crawler/internal/chrono"
	"yqzx-crawler/lib/browser"
	"yqzx-crawler/lib/scrapers/outsofts"
	"yqzx-crawler/services/orders"
	"yqzx-crawler/services/orders/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/harvest")

// Config is the portal-facing configuration, normally read from
// config.json5 with credentials overridable via the environment.
type Config struct {
	BaseURL      string `json:"base_url"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	WebhookURL   string `json:"webhook_url"`
	DatabasePath string `json:"database_path"`
	OutputDir    string `json:"output_dir"`
	ChromePath   string `json:"chrome_path"`
}

// ApplyEnvOverrides lets deployment environments inject secrets without
// touching the config file.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("OUTSOFTS_USERNAME"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("OUTSOFTS_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("N8N_WEBHOOK_URL"); v != "" {
		c.WebhookURL = v
	}
}

// Options select what a single run harvests.
type Options struct {
	// Page is the 1-based page of the pending-approval table.
	Page int
	// Orders caps how many orders are processed; 0 means the whole page.
	Orders int
	// Skip drops this many orders from the front of the page.
	Skip int
	// SinceID stops collection when this order id is reached.
	SinceID string
	// Headless hides the browser window.
	Headless bool
	// Upload pushes the dataset to the configured webhook.
	Upload bool
}

// Report is everything a run produced.
type Report struct {
	Page       int                `json:"page"`
	Dataset    *orders.Dataset    `json:"dataset"`
	Summary    *orders.Summary    `json:"summary"`
	Failures   []outsofts.Failure `json:"failures"`
	OutputFile string             `json:"output_file,omitempty"`
	Uploaded   bool               `json:"uploaded"`
	RunID      int64              `json:"run_id,omitempty"`
	Duration   time.Duration      `json:"duration"`
}

// Run executes one harvest pass.
func Run(ctx context.Context, cfg Config, opts Options) (*Report, error) {
	ctx, span := tracer.Start(ctx, "harvest.Run")
	defer span.End()
	span.SetAttributes(
		attribute.Int("page", opts.Page),
		attribute.Bool("upload", opts.Upload),
	)

	timeAPI := chrono.NewStandardTime()
	started := timeAPI.Now()

	correlator := outsofts.NewCorrelator()
	session, err := browser.NewSession(ctx, browser.Options{
		BaseURL:  cfg.BaseURL,
		Headless: opts.Headless,
		ExecPath: cfg.ChromePath,
	}, correlator)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	defer session.Close()

	if err := session.Login(ctx, cfg.Username, cfg.Password); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return nil, err
	}
	if err := session.OpenUpcoming(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}

	runnerConfig := outsofts.DefaultRunnerConfig()
	runnerConfig.Skip = opts.Skip
	runnerConfig.Limit = opts.Orders
	runnerConfig.SinceID = opts.SinceID
	runner := outsofts.NewRunner(session, correlator, timeAPI,
		outsofts.DefaultRetryPolicy(), runnerConfig)

	result, err := runner.Run(ctx, opts.Page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "harvest pass failed")
		return nil, err
	}

	dataset := orders.BuildDataset(result.Orders)
	summary := orders.BuildSummary(dataset)

	report := &Report{
		Page:     result.Page,
		Dataset:  dataset,
		Summary:  summary,
		Failures: result.Failures,
	}

	if cfg.OutputDir != "" {
		report.OutputFile, err = writeDataset(cfg.OutputDir, dataset, timeAPI.Now())
		if err != nil {
			slog.Error("failed to write output file", "err", err)
		}
	}

	if opts.Upload && cfg.WebhookURL != "" {
		sink := orders.NewWebhookSink(cfg.WebhookURL)
		if err := sink.Upload(ctx, dataset, summary); err != nil {
			span.RecordError(err)
			return report, err
		}
		report.Uploaded = true
	}

	if cfg.DatabasePath != "" {
		report.RunID, err = record(ctx, cfg.DatabasePath, report, started, timeAPI.Now())
		if err != nil {
			slog.Error("failed to record run", "err", err)
		}
	}

	report.Duration = timeAPI.Now().Sub(started)
	slog.Info("harvest complete",
		"page", report.Page,
		"sales_orders", len(dataset.SalesOrders),
		"production_orders", len(dataset.ProductionOrders),
		"failures", len(report.Failures),
		"duration", report.Duration)
	return report, nil
}

func writeDataset(dir string, dataset *orders.Dataset, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("orders_%s.json", now.UTC().Format("2006-01-02T15-04-05Z"))
	path := filepath.Join(dir, name)

	encoded, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return "", err
	}
	slog.Info("wrote dataset", "path", path)
	return path, nil
}

func record(ctx context.Context, path string, report *Report, started, finished time.Time) (int64, error) {
	store, err := db.Open(path)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	runID, err := store.RecordRun(ctx, db.RunRecord{
		StartedAt:    started,
		FinishedAt:   finished,
		Page:         report.Page,
		OrderCount:   len(report.Dataset.SalesOrders) + len(report.Dataset.ProductionOrders),
		FailureCount: len(report.Failures),
		Uploaded:     report.Uploaded,
	})
	if err != nil {
		return 0, err
	}

	var records []db.OrderRecord
	for _, order := range report.Dataset.SalesOrders {
		records = append(records, orderRecord(order.OrderBase, "sales"))
	}
	for _, order := range report.Dataset.ProductionOrders {
		records = append(records, orderRecord(order.OrderBase, "production"))
	}
	if err := store.RecordOrders(ctx, runID, records); err != nil {
		return runID, err
	}
	return runID, nil
}

func orderRecord(base orders.OrderBase, kind string) db.OrderRecord {
	return db.OrderRecord{
		ID:           base.ID,
		SerialNumber: base.OrderNumber,
		Applicant:    base.Applicant,
		FormType:     base.FormType,
		Kind:         kind,
		ReceiveTime:  base.ReceiveTime,
		Date:         base.Date,
		Status:       base.Status,
	}
}
