package outsofts

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	random "github.com/mazen160/go-random"
)

// EndpointFragment is the URL substring identifying detail-payload
// responses among all traffic on the session.
const EndpointFragment = "Flow_Detail"

// Correlator retains detail-endpoint responses observed on the session.
// Captures arrive asynchronously relative to the click that triggered
// them, so correlation is heuristic: the buffer is cleared right before a
// trigger and the most recent capture afterwards is attributed to it.
// A second, unrelated response landing inside the same window wins the
// buffer; that misattribution risk is accepted.
type Correlator struct {
	fragment string

	mu    sync.Mutex
	order []string
	byID  map[string]Capture
}

func NewCorrelator() *Correlator {
	return &Correlator{
		fragment: EndpointFragment,
		byID:     map[string]Capture{},
	}
}

// Matches reports whether a response URL belongs to the detail endpoint.
func (c *Correlator) Matches(url string) bool {
	return strings.Contains(url, c.fragment)
}

// Observe parses and buffers one response body. Safe to call from the
// browser's event goroutine. Bodies that fail to parse are dropped.
func (c *Correlator) Observe(url string, body []byte, headers map[string]string) {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		slog.Warn("failed to parse detail response", "url", url, "err", err)
		return
	}

	id := captureID()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = append(c.order, id)
	c.byID[id] = Capture{
		URL:       url,
		Data:      data,
		Timestamp: time.Now(),
		Headers:   headers,
	}
	slog.Debug("captured detail response", "url", url, "capture_id", id)
}

// Clear empties the buffer. Must run immediately before each detail
// trigger so a stale capture is never attributed to the new one.
func (c *Correlator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = c.order[:0]
	c.byID = map[string]Capture{}
}

func (c *Correlator) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Latest returns the most recently inserted capture.
func (c *Correlator) Latest() (Capture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.order) == 0 {
		return Capture{}, false
	}
	return c.byID[c.order[len(c.order)-1]], true
}

// captureID only needs to be unique within a buffer window, it carries no
// meaning beyond that.
func captureID() string {
	suffix, err := random.String(9)
	if err != nil {
		suffix = "fallback"
	}
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), suffix)
}
