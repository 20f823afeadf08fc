package orders

import "time"

// date layouts the portal has been seen emitting
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// BuildSummary aggregates a dataset into per-status and per-applicant
// counts, quantity totals, and the overall date range.
func BuildSummary(dataset *Dataset) *Summary {
	summary := &Summary{
		SalesOrders: OrderGroupSummary{
			Total:       len(dataset.SalesOrders),
			ByStatus:    map[string]int{},
			ByApplicant: map[string]int{},
		},
		ProductionOrders: OrderGroupSummary{
			Total:       len(dataset.ProductionOrders),
			ByStatus:    map[string]int{},
			ByApplicant: map[string]int{},
		},
		SalesDetails: SalesDetailSummary{
			Total:         len(dataset.SalesDetails),
			ByStyleNumber: map[string]int{},
		},
		MaterialDetails: MaterialDetailSummary{
			Total:          len(dataset.MaterialDetails),
			ByMaterialName: map[string]float64{},
		},
	}

	var earliest, latest time.Time
	observeDate := func(raw string) {
		parsed, ok := parseOrderDate(raw)
		if !ok {
			// unparsable dates stay out of the range
			return
		}
		if earliest.IsZero() || parsed.Before(earliest) {
			earliest = parsed
			summary.DateRange.Earliest = raw
		}
		if latest.IsZero() || parsed.After(latest) {
			latest = parsed
			summary.DateRange.Latest = raw
		}
	}

	for _, order := range dataset.SalesOrders {
		summary.SalesOrders.ByStatus[order.Status]++
		summary.SalesOrders.ByApplicant[order.Applicant]++
		if order.Date != "" {
			observeDate(order.Date)
		}
	}
	for _, order := range dataset.ProductionOrders {
		summary.ProductionOrders.ByStatus[order.Status]++
		summary.ProductionOrders.ByApplicant[order.Applicant]++
		if order.Date != "" {
			observeDate(order.Date)
		}
	}
	for _, item := range dataset.SalesDetails {
		summary.SalesDetails.ByStyleNumber[item.StyleNumber] += item.Quantity
	}
	for _, item := range dataset.MaterialDetails {
		summary.MaterialDetails.ByMaterialName[item.MaterialName] += item.RequiredQuantity
	}

	return summary
}

func parseOrderDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
