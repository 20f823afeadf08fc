// crawlerd exposes the harvest pipeline over HTTP so downstream
// automation can trigger incremental crawls.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"yqzx-crawler/lib/configutil"
	"yqzx-crawler/lib/serviceutil"
	"yqzx-crawler/lib/telemetry"
	"yqzx-crawler/services/harvest"

	"github.com/gin-gonic/gin"
)

type Config struct {
	Harvest harvest.Config `json:"harvest"`
	Port    int            `json:"port"`
	Debug   bool           `json:"debug"`
}

func main() {
	ctx := serviceutil.SignalContext()

	t, err := telemetry.SetupFromEnv(ctx, "crawlerd")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)
	telemetry.InitSlog(false)

	cfg, err := configutil.ReadFromEnvPath[Config]("YQZX_CONFIG", "crawlerd.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	cfg.Harvest.ApplyEnvOverrides()
	if cfg.Port == 0 {
		cfg.Port = 3000
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	service := newService(cfg.Harvest)
	router.GET("/health", service.health)
	router.GET("/status", service.status)
	router.POST("/trigger-crawler", service.triggerCrawler)
	router.POST("/crawl", service.crawl)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "endpoint does not exist",
			"available_endpoints": []string{
				"GET /health",
				"POST /trigger-crawler",
				"GET /status",
				"POST /crawl",
			},
		})
	})

	server := &http.Server{
		Addr:        addrFromEnv(cfg.Port),
		Handler:     router,
		ReadTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("crawler server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serviceutil.Fatal("server failed", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
}

func addrFromEnv(port int) string {
	if addr := os.Getenv("CRAWLER_SERVER_ADDR"); addr != "" {
		return addr
	}
	return ":" + strconv.Itoa(port)
}
