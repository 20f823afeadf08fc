package main

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"yqzx-crawler/services/harvest"
	"yqzx-crawler/services/orders/db"

	"github.com/gin-gonic/gin"
)

var errCrawlInProgress = errors.New("a crawl is already in progress")

// service serializes crawls: the browser session and the portal account
// both tolerate only one active harvest.
type service struct {
	cfg harvest.Config

	mu      sync.Mutex
	running bool
}

func newService(cfg harvest.Config) *service {
	return &service{cfg: cfg}
}

func (s *service) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errCrawlInProgress
	}
	s.running = true
	return nil
}

func (s *service) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *service) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "yqzx-crawler-server",
	})
}

func (s *service) status(c *gin.Context) {
	status := gin.H{
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
		"last_crawled_id":    nil,
		"total_orders_count": 0,
		"crawl_in_progress":  false,
	}
	s.mu.Lock()
	status["crawl_in_progress"] = s.running
	s.mu.Unlock()

	if s.cfg.DatabasePath != "" {
		store, err := db.Open(s.cfg.DatabasePath)
		if err == nil {
			defer store.Close()
			if id, err := store.LatestID(c.Request.Context()); err == nil {
				status["last_crawled_id"] = id
			}
			if counts, err := store.Counts(c.Request.Context()); err == nil {
				status["total_orders_count"] = counts.Orders
			}
		} else {
			slog.Error("failed to open store for status", "err", err)
		}
	}
	c.JSON(http.StatusOK, status)
}

type triggerRequest struct {
	LastID string `json:"last_id"`
}

// triggerCrawler runs an incremental harvest of page 1, resuming from
// the caller's last id, or from the store when the caller sent none.
func (s *service) triggerCrawler(c *gin.Context) {
	var req triggerRequest
	// an empty body is fine, malformed JSON is not
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
	}

	if err := s.acquire(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		return
	}
	defer s.release()

	sinceID := req.LastID
	if sinceID == "" && s.cfg.DatabasePath != "" {
		if store, err := db.Open(s.cfg.DatabasePath); err == nil {
			if id, err := store.LatestID(c.Request.Context()); err == nil {
				sinceID = id
			}
			store.Close()
		}
	}
	slog.Info("crawl triggered", "since_id", sinceID)

	started := time.Now()
	report, err := harvest.Run(c.Request.Context(), s.cfg, harvest.Options{
		Page:     1,
		SinceID:  sinceID,
		Headless: true,
		Upload:   true,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"error":     err.Error(),
			"message":   "crawl failed",
		})
		return
	}

	latestID := sinceID
	if len(report.Dataset.SalesOrders) > 0 {
		latestID = report.Dataset.SalesOrders[0].ID
	} else if len(report.Dataset.ProductionOrders) > 0 {
		latestID = report.Dataset.ProductionOrders[0].ID
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"execution_time_ms": time.Since(started).Milliseconds(),
		"latest_id":         latestID,
		"last_checked_id":   req.LastID,
		"message":           "crawl finished, dataset uploaded",
		"orders_data":       report.Dataset,
	})
}

type crawlRequest struct {
	Page     int   `json:"page"`
	Headless *bool `json:"headless"`
	Orders   int   `json:"orders"`
	Skip     int   `json:"skip"`
	Upload   *bool `json:"upload"`
}

// crawl runs a fully parameterized harvest.
func (s *service) crawl(c *gin.Context) {
	req := crawlRequest{Page: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
	}
	if req.Page < 1 {
		req.Page = 1
	}
	headless := req.Headless == nil || *req.Headless
	upload := req.Upload == nil || *req.Upload

	if err := s.acquire(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		return
	}
	defer s.release()

	started := time.Now()
	report, err := harvest.Run(c.Request.Context(), s.cfg, harvest.Options{
		Page:     req.Page,
		Orders:   req.Orders,
		Skip:     req.Skip,
		Headless: headless,
		Upload:   upload,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"error":     err.Error(),
			"message":   "crawl failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"execution_time_ms": time.Since(started).Milliseconds(),
		"parameters": gin.H{
			"page": req.Page, "headless": headless,
			"orders": req.Orders, "skip": req.Skip, "upload": upload,
		},
		"summary":  report.Summary,
		"failures": report.Failures,
		"message":  "crawl finished",
	})
}
