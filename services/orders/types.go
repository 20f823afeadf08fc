// Package orders turns raw scraped rows and their captured detail
// payloads into normalized order records, line items and summaries.
package orders

// OrderBase holds the fields every normalized order carries regardless
// of its form type.
type OrderBase struct {
	ID          string `json:"id"`
	Applicant   string `json:"applicant"`
	OrderNumber string `json:"order_number"`
	FormType    string `json:"form_type"`
	ReceiveTime string `json:"receive_time"`
	Date        string `json:"date"`
	Department  string `json:"department"`
	Status      string `json:"status"`
	CurrentStep string `json:"current_step"`
	Handler     string `json:"handler"`
}

// SalesOrder is a normalized 销售单 (sales form).
type SalesOrder struct {
	OrderBase
	SalesDocumentNumber string `json:"sales_document_number"`
	SalesDate           string `json:"sales_date"`
	Customer            string `json:"customer"`
	CustomerType        string `json:"customer_type"`
	LatestArrivalTime   string `json:"latest_arrival_time"`
	SalesCategory       string `json:"sales_category"`
	// SalesDetails is a deterministic text rendering of the order's line
	// items, parseable back by ParseSalesDetails.
	SalesDetails string `json:"sales_details"`
}

// ProductionOrder is a normalized 生产订单 (production order form).
type ProductionOrder struct {
	OrderBase
	SalesType        string `json:"sales_type"`
	MatchingSupplier string `json:"matching_supplier"`
	Notes            string `json:"notes"`
	// OrderDetails and MaterialDetails are text renderings parseable
	// back by the line-item parsers.
	OrderDetails    string `json:"order_details"`
	MaterialDetails string `json:"material_details"`
}

// SalesLineItem is one parsed line of a sales or order details block.
type SalesLineItem struct {
	OrderID        string `json:"order_id"`
	OrderApplicant string `json:"order_applicant"`
	OrderFormType  string `json:"order_form_type"`
	ItemNumber     int    `json:"item_number"`
	StyleNumber    string `json:"style_number"`
	Color          string `json:"color"`
	Size           string `json:"size"`
	Quantity       int    `json:"quantity"`
	// pricing never appears in the rendered block; kept null for the
	// downstream schema
	UnitPrice *float64 `json:"unit_price"`
	Amount    *float64 `json:"amount"`
}

// MaterialLineItem is one parsed line of a required-materials block.
type MaterialLineItem struct {
	OrderID          string  `json:"order_id"`
	OrderApplicant   string  `json:"order_applicant"`
	OrderFormType    string  `json:"order_form_type"`
	ItemNumber       int     `json:"item_number"`
	MaterialName     string  `json:"material_name"`
	MaterialCode     string  `json:"material_code"`
	Color            string  `json:"color"`
	Size             string  `json:"size"`
	RequiredQuantity float64 `json:"required_quantity"`
	LossRatio        float64 `json:"loss_ratio"`
	UnitUsage        float64 `json:"unit_usage"`
	PlannedQuantity  float64 `json:"planned_quantity"`
	Unit             string  `json:"unit"`
	UnitPrice        float64 `json:"unit_price"`
	Amount           float64 `json:"amount"`
	OccupiedQuantity float64 `json:"occupied_quantity"`
	Notes            string  `json:"notes"`
}

// Dataset is the complete output of one harvest: normalized orders plus
// the line items parsed back out of their text blocks.
type Dataset struct {
	SalesOrders      []SalesOrder       `json:"salesOrders"`
	ProductionOrders []ProductionOrder  `json:"productionOrders"`
	SalesDetails     []SalesLineItem    `json:"salesDetails"`
	MaterialDetails  []MaterialLineItem `json:"materialDetails"`
}

// OrderGroupSummary aggregates one class of orders.
type OrderGroupSummary struct {
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"byStatus"`
	ByApplicant map[string]int `json:"byApplicant"`
}

// SalesDetailSummary sums quantities per style number.
type SalesDetailSummary struct {
	Total         int            `json:"total"`
	ByStyleNumber map[string]int `json:"byStyleNumber"`
}

// MaterialDetailSummary sums required quantities per material name.
type MaterialDetailSummary struct {
	Total          int                `json:"total"`
	ByMaterialName map[string]float64 `json:"byMaterialName"`
}

// DateRange spans the order dates seen in a dataset; empty strings when
// no order carried a date.
type DateRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

// Summary is the aggregate view over one dataset.
type Summary struct {
	SalesOrders      OrderGroupSummary     `json:"salesOrders"`
	ProductionOrders OrderGroupSummary     `json:"productionOrders"`
	SalesDetails     SalesDetailSummary    `json:"salesDetails"`
	MaterialDetails  MaterialDetailSummary `json:"materialDetails"`
	DateRange        DateRange             `json:"dateRange"`
}
