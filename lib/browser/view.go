package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"yqzx-crawler/lib/scrapers/outsofts"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

var _ outsofts.View = (*Session)(nil)

func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (s *Session) ActivePage(ctx context.Context) (int, error) {
	var page int
	err := chromedp.Run(s.ctx, chromedp.Evaluate(`
		(function() {
			const active = document.querySelector('.ant-pagination-item-active');
			if (!active) return 0;
			return parseInt(active.textContent, 10) || 0;
		})()
	`, &page))
	return page, err
}

func (s *Session) ClickPageItem(ctx context.Context, page int) (bool, error) {
	var clicked bool
	err := chromedp.Run(s.ctx, chromedp.Evaluate(fmt.Sprintf(`
		(function() {
			const item = document.querySelector('.ant-pagination-item[title="%d"]');
			if (!item) return false;
			item.click();
			return true;
		})()
	`, page), &clicked))
	return clicked, err
}

func (s *Session) ClickNext(ctx context.Context) (bool, error) {
	var clicked bool
	err := chromedp.Run(s.ctx, chromedp.Evaluate(`
		(function() {
			const next = document.querySelector('.ant-pagination-next:not(.ant-pagination-disabled)');
			if (!next) return false;
			next.scrollIntoView({ block: 'center' });
			next.click();
			return true;
		})()
	`, &clicked))
	return clicked, err
}

func (s *Session) WaitTableSettled(ctx context.Context) {
	waitCtx, cancel := context.WithTimeout(s.ctx, 20*time.Second)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(".ant-table", chromedp.ByQuery)); err != nil {
		slog.Warn("data table did not settle in time, continuing", "err", err)
	}
}

// ClickAffordance resolves ref against the live DOM and clicks it. The
// whole lookup runs inside the page because the row may have been
// re-rendered since extraction.
func (s *Session) ClickAffordance(ctx context.Context, ref outsofts.AffordanceRef) (outsofts.ClickOutcome, error) {
	encoded, err := json.Marshal(ref)
	if err != nil {
		return outsofts.ClickOutcome{}, err
	}

	var outcome outsofts.ClickOutcome
	err = chromedp.Run(s.ctx, chromedp.Evaluate(fmt.Sprintf(`
		(function() {
			const ref = %s;

			let row = null;
			if (ref.row_key) {
				row = document.querySelector('tr[data-row-key="' + ref.row_key + '"]');
			}
			if (!row && ref.row_text) {
				for (const tr of document.querySelectorAll('tbody tr')) {
					if (tr.textContent.includes(ref.row_text)) {
						row = tr;
						break;
					}
				}
			}
			if (!row) return { clicked: false, reason: 'row not found' };

			const candidates = row.querySelectorAll(ref.tag || 'button, a, span');
			let el = null;
			if (ref.match_text) {
				for (const candidate of candidates) {
					if (candidate.textContent.trim().includes(ref.match_text)) {
						el = candidate;
						break;
					}
				}
			}
			if (!el && candidates.length > ref.index) {
				el = candidates[ref.index];
			}
			if (!el) return { clicked: false, reason: 'element not found' };

			const text = el.textContent.trim();
			if (el.disabled || el.classList.contains('disabled')) {
				return { clicked: false, text: text, disabled: true, reason: 'element disabled' };
			}
			if (!(el.offsetWidth > 0 && el.offsetHeight > 0)) {
				return { clicked: false, text: text, invisible: true, reason: 'element not visible' };
			}

			el.click();
			return { clicked: true, text: text };
		})()
	`, encoded), &outcome))
	if err != nil {
		return outsofts.ClickOutcome{}, err
	}
	return outcome, nil
}

// DismissModal closes the detail modal via its close button, falling back
// to the Escape key. Best-effort, never fails the caller.
func (s *Session) DismissModal(ctx context.Context) {
	var closed bool
	err := chromedp.Run(s.ctx, chromedp.Evaluate(`
		(function() {
			const close = document.querySelector('.ant-modal-close');
			if (!close) return false;
			close.click();
			return true;
		})()
	`, &closed))
	if err != nil {
		slog.Warn("failed to click modal close", "err", err)
	}
	if !closed {
		if err := chromedp.Run(s.ctx, chromedp.KeyEvent(kb.Escape)); err != nil {
			slog.Warn("failed to send escape key", "err", err)
		}
	}

	waitCtx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitNotPresent(".ant-modal-content", chromedp.ByQuery)); err != nil {
		slog.Warn("modal may not have fully closed", "err", err)
	}
}
