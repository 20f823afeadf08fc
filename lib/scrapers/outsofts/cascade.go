package outsofts

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// styledSpanSelector is the inline style the portal renders its primary
// 查看详情 link with.
const styledSpanSelector = `span[style*="color: rgb(66, 145, 242)"]`

var detailPhrases = []string{"查看详情", "详情"}
var spanPhrases = []string{"查看详情", "详情", "同意", "标记已读"}

// affordance is a matched clickable element inside an action cell.
type affordance struct {
	Tag       string
	Text      string
	MatchText string // phrase to relocate the element by; empty = by index
	Index     int    // index among the cell's elements of Tag
}

// affordanceMatcher inspects an action cell and returns a match or nil.
// Matchers run in a fixed priority order; the first hit wins and later
// matchers are never evaluated.
type affordanceMatcher struct {
	name  string
	match func(cell *goquery.Selection) *affordance
}

var affordanceCascade = []affordanceMatcher{
	{"styled-detail-span", matchStyledDetailSpan},
	{"detail-button", matchDetailButton},
	{"first-button", matchFirstButton},
	{"detail-link", matchDetailLink},
	{"action-span", matchActionSpan},
}

// findAffordance runs the cascade over an action cell.
func findAffordance(cell *goquery.Selection) (affordance, bool) {
	for _, m := range affordanceCascade {
		if got := m.match(cell); got != nil {
			return *got, true
		}
	}
	return affordance{}, false
}

func matchStyledDetailSpan(cell *goquery.Selection) *affordance {
	var found *affordance
	cell.Find(styledSpanSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if strings.Contains(text, "查看详情") {
			found = &affordance{Tag: "span", Text: "查看详情", MatchText: "查看详情"}
			return false
		}
		return true
	})
	return found
}

func matchDetailButton(cell *goquery.Selection) *affordance {
	return matchByPhrases(cell, "button", detailPhrases)
}

func matchFirstButton(cell *goquery.Selection) *affordance {
	return matchFirst(cell, "button")
}

func matchDetailLink(cell *goquery.Selection) *affordance {
	if got := matchByPhrases(cell, "a", detailPhrases); got != nil {
		return got
	}
	return matchFirst(cell, "a")
}

func matchActionSpan(cell *goquery.Selection) *affordance {
	return matchByPhrases(cell, "span", spanPhrases)
}

func matchByPhrases(cell *goquery.Selection, tag string, phrases []string) *affordance {
	var found *affordance
	cell.Find(tag).EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		for _, phrase := range phrases {
			if strings.Contains(text, phrase) {
				found = &affordance{Tag: tag, Text: text, MatchText: phrase, Index: i}
				return false
			}
		}
		return true
	})
	return found
}

func matchFirst(cell *goquery.Selection, tag string) *affordance {
	elems := cell.Find(tag)
	if elems.Length() == 0 {
		return nil
	}
	return &affordance{
		Tag:   tag,
		Text:  strings.TrimSpace(elems.First().Text()),
		Index: 0,
	}
}
