package outsofts

import (
	"context"
	"time"
)

// RawOrder is one row of the pending-approval table, flattened. Fields are
// attached in place as the pipeline learns more about the order.
type RawOrder struct {
	ID              string            `json:"id"`
	Applicant       string            `json:"applicant"`
	FormType        string            `json:"form_type"`
	Content         string            `json:"content"`
	PreviousHandler string            `json:"previous_handler"`
	ReceiveTime     string            `json:"receive_time"`
	SerialNumber    string            `json:"serial_number,omitempty"`
	Amount          string            `json:"amount,omitempty"`
	Date            string            `json:"date,omitempty"`
	Status          string            `json:"status,omitempty"`
	Title           string            `json:"title"`
	RawData         []string          `json:"raw_data"`
	ExtractedInfo   map[string]string `json:"extracted_info"`

	HasActionButton   bool   `json:"has_action_button"`
	ActionButtonText  string `json:"action_button_text"`
	ActionElementType string `json:"action_element_type"`

	// set by the detail fetcher
	NoDetail bool    `json:"no_detail,omitempty"`
	Detail   *Detail `json:"flow_detail,omitempty"`

	// where the row was found, used to relocate it later
	TableIndex int `json:"-"`
	RowIndex   int `json:"-"`
}

// Detail is the backend payload captured after triggering the order's
// detail view.
type Detail struct {
	Data      map[string]any `json:"data"`
	URL       string         `json:"url"`
	Timestamp time.Time      `json:"timestamp"`
}

// Capture is one intercepted response on the detail endpoint.
type Capture struct {
	URL       string
	Data      map[string]any
	Timestamp time.Time
	Headers   map[string]string
}

// AffordanceRef locates a clickable element inside an order's row well
// enough for the live view to find and trigger it.
type AffordanceRef struct {
	// RowKey is the row's data-row-key attribute; may be empty.
	RowKey string `json:"row_key"`
	// RowText is a fallback used to find the row when RowKey fails:
	// any row whose text contains it matches.
	RowText string `json:"row_text"`
	// Tag of the element to click (span, button, a).
	Tag string `json:"tag"`
	// MatchText the element's text must contain; empty means "pick by Index".
	MatchText string `json:"match_text"`
	// Index among the row's elements of Tag when MatchText is empty.
	Index int `json:"index"`
}

// ClickOutcome reports what the live view did with an affordance.
type ClickOutcome struct {
	Clicked   bool   `json:"clicked"`
	Text      string `json:"text"`
	Disabled  bool   `json:"disabled"`
	Invisible bool   `json:"invisible"`
	Reason    string `json:"reason"`
}

// View is the live list view the scraper drives. The browser session
// implements it against a real page; tests substitute fakes.
type View interface {
	// HTML returns the current document markup.
	HTML(ctx context.Context) (string, error)
	// ActivePage returns the 1-based page the pagination indicator shows,
	// or 0 when the indicator is absent.
	ActivePage(ctx context.Context) (int, error)
	// ClickPageItem clicks the numbered page control, reporting whether
	// such a control was present.
	ClickPageItem(ctx context.Context, page int) (bool, error)
	// ClickNext clicks the next-page control, reporting whether an
	// enabled one was present.
	ClickNext(ctx context.Context) (bool, error)
	// WaitTableSettled waits for the data table to render. A timeout is
	// not an error; callers proceed and find out for themselves.
	WaitTableSettled(ctx context.Context)
	// ClickAffordance locates ref and clicks it, refusing disabled or
	// zero-size elements.
	ClickAffordance(ctx context.Context, ref AffordanceRef) (ClickOutcome, error)
	// DismissModal closes any open detail modal, best-effort.
	DismissModal(ctx context.Context)
}

// Failure describes one order the run could not fully process.
type Failure struct {
	Index        int    `json:"index"`
	ID           string `json:"id"`
	SerialNumber string `json:"serial_number"`
	Applicant    string `json:"applicant"`
	Reason       string `json:"reason"`
}

// failure reasons, kept in the portal's language since they travel with
// the exported data
const (
	ReasonDetailFailed   = "详情获取失败"
	ReasonNoActionButton = "没有操作按钮"
)
