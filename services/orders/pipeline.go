package orders

import (
	"log/slog"

	"yqzx-crawler/lib/scrapers/outsofts"
)

// BuildDataset normalizes every raw order, classifies it, and parses the
// resulting text blocks back into line items.
func BuildDataset(raw []*outsofts.RawOrder) *Dataset {
	dataset := &Dataset{
		SalesOrders:      []SalesOrder{},
		ProductionOrders: []ProductionOrder{},
		SalesDetails:     []SalesLineItem{},
		MaterialDetails:  []MaterialLineItem{},
	}

	for _, order := range raw {
		formType := InferFormType(order)
		serial := ExtractSerialNumber(order)

		// normalize to the production shape first: for ambiguous form
		// types the classifier needs to know whether the payload carries
		// both production blocks
		production := buildProductionOrder(order, formType, serial)

		switch Classify(formType, production.OrderDetails, production.MaterialDetails) {
		case KindSales:
			dataset.SalesOrders = append(dataset.SalesOrders,
				buildSalesOrder(order, formType, serial))
		case KindProduction:
			dataset.ProductionOrders = append(dataset.ProductionOrders, production)
		}
	}

	for _, sales := range dataset.SalesOrders {
		if sales.SalesDetails == "" {
			continue
		}
		ref := OrderRef{ID: sales.ID, Applicant: sales.Applicant, FormType: sales.FormType}
		dataset.SalesDetails = append(dataset.SalesDetails,
			ParseSalesDetails(sales.SalesDetails, ref)...)
	}
	for _, production := range dataset.ProductionOrders {
		if production.MaterialDetails == "" {
			continue
		}
		ref := OrderRef{ID: production.ID, Applicant: production.Applicant, FormType: production.FormType}
		dataset.MaterialDetails = append(dataset.MaterialDetails,
			ParseMaterialDetails(production.MaterialDetails, ref)...)
	}

	slog.Info("built dataset",
		"sales_orders", len(dataset.SalesOrders),
		"production_orders", len(dataset.ProductionOrders),
		"sales_details", len(dataset.SalesDetails),
		"material_details", len(dataset.MaterialDetails))
	return dataset
}
