// Package browser drives a real Chromium session against the workflow
// portal. It implements the scraper's view of the rendered order table
// and feeds intercepted detail responses into the correlator.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"yqzx-crawler/lib/scrapers/outsofts"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("browser")

const (
	DefaultBaseURL = "https://outsofts.net"

	loginPath    = "/user/login"
	upcomingPath = "/upcoming?status=3"
)

// ErrLoginFailed means the portal kept the session on the login page
// after submitting credentials.
var ErrLoginFailed = errors.New("login failed, still on login page")

// Options configure the Chromium session.
type Options struct {
	// BaseURL of the portal; DefaultBaseURL when empty.
	BaseURL string
	// Headless runs Chromium without a visible window.
	Headless bool
	// ExecPath overrides the Chromium binary to launch.
	ExecPath string
}

// Session is a logged-in browser tab on the portal. It satisfies
// outsofts.View.
type Session struct {
	ctx         context.Context
	allocCancel context.CancelFunc
	ctxCancel   context.CancelFunc
	baseURL     string
	correlator  *outsofts.Correlator
}

// NewSession launches Chromium and wires response interception into the
// correlator. Close must be called when done.
func NewSession(ctx context.Context, opts Options, correlator *outsofts.Correlator) (*Session, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", "zh-CN"),
		chromedp.WindowSize(1920, 1080),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, ctxCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         browserCtx,
		allocCancel: allocCancel,
		ctxCancel:   ctxCancel,
		baseURL:     baseURL,
		correlator:  correlator,
	}

	if err := chromedp.Run(browserCtx, network.Enable()); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	if err := s.setupAntiDetection(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to set up anti-detection: %w", err)
	}
	s.listenForCaptures()

	slog.Info("browser session started", "headless", opts.Headless, "base_url", baseURL)
	return s, nil
}

func (s *Session) Close() {
	s.ctxCancel()
	s.allocCancel()
}

// setupAntiDetection hides the obvious automation markers the portal's
// frontend could key on.
func (s *Session) setupAntiDetection() error {
	return chromedp.Run(s.ctx, chromedp.Evaluate(`
		Object.defineProperty(navigator, 'webdriver', {
			get: () => undefined
		});
		Object.defineProperty(navigator, 'languages', {
			get: () => ['zh-CN', 'zh', 'en']
		});
		window.chrome = { runtime: {} };
	`, nil))
}

// listenForCaptures forwards every detail-endpoint response body to the
// correlator. Body retrieval must happen off the event goroutine.
func (s *Session) listenForCaptures() {
	chromedp.ListenTarget(s.ctx, func(ev any) {
		res, ok := ev.(*network.EventResponseReceived)
		if !ok || !s.correlator.Matches(res.Response.URL) {
			return
		}

		url := res.Response.URL
		requestID := res.RequestID
		headers := flattenHeaders(res.Response.Headers)
		go func() {
			c := chromedp.FromContext(s.ctx)
			body, err := network.GetResponseBody(requestID).
				Do(cdp.WithExecutor(s.ctx, c.Target))
			if err != nil {
				slog.Warn("failed to read intercepted response body",
					"url", url, "err", err)
				return
			}
			s.correlator.Observe(url, body, headers)
		}()
	})
}

func flattenHeaders(headers network.Headers) map[string]string {
	flat := make(map[string]string, len(headers))
	for key, value := range headers {
		flat[key] = fmt.Sprint(value)
	}
	return flat
}

// Login authenticates against the portal's login form.
func (s *Session) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "Session.Login")
	defer span.End()

	slog.Info("logging in", "url", s.baseURL+loginPath)
	err := chromedp.Run(s.ctx,
		chromedp.Navigate(s.baseURL+loginPath),
		chromedp.Sleep(3*time.Second),
		chromedp.SendKeys("#userName", username, chromedp.ByQuery),
		chromedp.SendKeys("#password", password, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.Sleep(8*time.Second),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login form submission failed")
		return err
	}

	var currentURL string
	if err := chromedp.Run(s.ctx, chromedp.Location(&currentURL)); err != nil {
		return err
	}
	if strings.Contains(currentURL, "/login") {
		span.SetStatus(codes.Error, "still on login page")
		return ErrLoginFailed
	}
	slog.Info("login successful", "url", currentURL)
	return nil
}

// OpenUpcoming navigates to the pending-approval order list.
func (s *Session) OpenUpcoming(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Session.OpenUpcoming")
	defer span.End()

	if err := chromedp.Run(s.ctx, chromedp.Navigate(s.baseURL+upcomingPath)); err != nil {
		span.RecordError(err)
		return err
	}
	// the pagination bar renders last; tolerate it never appearing on
	// single-page result sets
	waitCtx, cancel := context.WithTimeout(s.ctx, 15*time.Second)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(".ant-pagination", chromedp.ByQuery)); err != nil {
		slog.Warn("pagination bar did not appear, continuing", "err", err)
	}
	return nil
}
