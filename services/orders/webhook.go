package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"yqzx-crawler/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/orders")

// WebhookMetadata describes an upload for the receiving workflow.
type WebhookMetadata struct {
	UploadTime string         `json:"uploadTime"`
	DataType   string         `json:"dataType"`
	Version    string         `json:"version"`
	Counts     map[string]int `json:"counts"`
}

// WebhookPayload is the wire shape the downstream automation expects.
type WebhookPayload struct {
	SalesOrders      []SalesOrder       `json:"salesOrders"`
	ProductionOrders []ProductionOrder  `json:"productionOrders"`
	SalesDetails     []SalesLineItem    `json:"salesDetails"`
	MaterialDetails  []MaterialLineItem `json:"materialDetails"`
	Summary          *Summary           `json:"summary"`
	Metadata         WebhookMetadata    `json:"metadata"`
}

// WebhookSink pushes harvested datasets to an automation webhook.
type WebhookSink struct {
	client *resty.Client
	url    string
}

func NewWebhookSink(url string) *WebhookSink {
	client := resty.New()
	client.SetTimeout(time.Second * 60)
	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)
	return &WebhookSink{client: client, url: url}
}

// Upload posts the dataset and its summary.
func (s *WebhookSink) Upload(ctx context.Context, dataset *Dataset, summary *Summary) error {
	ctx, span := tracer.Start(ctx, "WebhookSink.Upload")
	defer span.End()

	payload := WebhookPayload{
		SalesOrders:      dataset.SalesOrders,
		ProductionOrders: dataset.ProductionOrders,
		SalesDetails:     dataset.SalesDetails,
		MaterialDetails:  dataset.MaterialDetails,
		Summary:          summary,
		Metadata: WebhookMetadata{
			UploadTime: time.Now().UTC().Format(time.RFC3339),
			DataType:   "all_data",
			Version:    "2.0",
			Counts: map[string]int{
				"salesOrders":      len(dataset.SalesOrders),
				"productionOrders": len(dataset.ProductionOrders),
				"salesDetails":     len(dataset.SalesDetails),
				"materialDetails":  len(dataset.MaterialDetails),
			},
		},
	}

	res, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(s.url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "webhook upload failed")
		return fmt.Errorf("failed to upload dataset: %w", err)
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "webhook returned error status")
		return fmt.Errorf("webhook rejected upload: %s", res.Status())
	}

	slog.Info("uploaded dataset",
		"url", s.url,
		"status", res.StatusCode(),
		"sales_orders", payload.Metadata.Counts["salesOrders"],
		"production_orders", payload.Metadata.Counts["productionOrders"])
	return nil
}
