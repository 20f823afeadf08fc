package outsofts

import (
	"fmt"
	"regexp"
	"strings"

	"yqzx-crawler/lib/htmlutil"
	"yqzx-crawler/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/outsofts")

var serialNumberRegex = regexp.MustCompile(`流水号[：:]\s*(\S+)`)

// ExtractOrders flattens every rendered data table into raw orders.
// Placeholder rows and rows without an applicant are dropped silently.
func ExtractOrders(html string) ([]*RawOrder, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var orders []*RawOrder
	doc.Find(".ant-table").Each(func(tableIndex int, table *goquery.Selection) {
		table.Find("tbody tr").Each(func(rowIndex int, row *goquery.Selection) {
			if row.HasClass("ant-table-placeholder") {
				return
			}
			cells := row.Find("td")
			if cells.Length() == 0 {
				return
			}

			order := extractRow(tableIndex, rowIndex, row, cells)
			if order.Applicant == "" {
				return
			}
			orders = append(orders, order)
		})
	})

	return orders, nil
}

func extractRow(tableIndex, rowIndex int, row *goquery.Selection, cells *goquery.Selection) *RawOrder {
	order := &RawOrder{
		ID:                fmt.Sprintf("order_%d_%d", tableIndex, rowIndex),
		ExtractedInfo:     map[string]string{},
		ActionElementType: "button",
		TableIndex:        tableIndex,
		RowIndex:          rowIndex,
	}
	if key, ok := row.Attr("data-row-key"); ok && key != "" {
		order.ID = key
	}

	cells.Each(func(cellIndex int, cell *goquery.Selection) {
		cellText := htmlutil.CellText(cell)
		order.RawData = append(order.RawData, strings.TrimSpace(cell.Text()))

		switch cellIndex {
		case 0:
			order.Applicant = labelledCellText(cell, cellText)
		case 1:
			order.FormType = labelledCellText(cell, cellText)
		case 2:
			order.Content = cellText
			extractContentInfo(order, cellText)
		case 3:
			order.PreviousHandler = cellText
		case 4:
			order.ReceiveTime = cellText
		case 5:
			if got, ok := findAffordance(cell); ok {
				order.HasActionButton = true
				order.ActionButtonText = got.Text
				order.ActionElementType = got.Tag
			}
		}
	})

	serialOrID := order.SerialNumber
	if serialOrID == "" {
		serialOrID = order.ID
	}
	order.Title = fmt.Sprintf("%s_%s_%s", order.FormType, order.Applicant, serialOrID)
	return order
}

// labelledCellText prefers a nested label element's text over the raw
// cell text.
func labelledCellText(cell *goquery.Selection, fallback string) string {
	span := cell.Find("span").First()
	if span.Length() > 0 {
		if text := strings.TrimSpace(span.Text()); text != "" {
			return text
		}
	}
	return strings.TrimSpace(fallback)
}

// extractContentInfo pulls the serial number and every inline `key：value`
// pair out of an order's free-text content cell.
func extractContentInfo(order *RawOrder, content string) {
	if content == "" {
		return
	}

	if groups := serialNumberRegex.FindStringSubmatch(content); len(groups) > 1 {
		order.SerialNumber = groups[1]
		order.ExtractedInfo["流水号"] = groups[1]
	}

	for _, line := range strings.Split(content, "\n") {
		key, value, ok := textutil.SplitKeyValue(strings.TrimSpace(line))
		if !ok {
			continue
		}
		order.ExtractedInfo[key] = value

		if textutil.ContainsAny(key, "金额", "价格") {
			order.Amount = value
		}
		if textutil.ContainsAny(key, "日期", "时间") {
			order.Date = value
		}
		if strings.Contains(key, "状态") {
			order.Status = value
		}
	}
}
