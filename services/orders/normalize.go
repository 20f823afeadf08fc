package orders

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"yqzx-crawler/lib/scrapers/outsofts"
	"yqzx-crawler/lib/textutil"
)

var serialInContentRegex = regexp.MustCompile(`流水号[：:]\s*(\S+)`)

// flowData unwraps the captured payload's envelope: the form fields live
// under data.data.
func flowData(order *outsofts.RawOrder) map[string]any {
	if order.Detail == nil {
		return nil
	}
	outer, ok := order.Detail.Data["data"].(map[string]any)
	if !ok {
		return nil
	}
	inner, ok := outer["data"].(map[string]any)
	if !ok {
		return nil
	}
	return inner
}

// InferFormType returns the row's form type, falling back to phrase
// checks on the second raw column when the dedicated cell was empty.
func InferFormType(order *outsofts.RawOrder) string {
	if order.FormType != "" {
		return order.FormType
	}
	if len(order.RawData) > 1 {
		second := order.RawData[1]
		switch {
		case strings.Contains(second, "生产订单"):
			return "生产订单"
		case strings.Contains(second, "销售单"):
			return "销售单"
		case strings.Contains(second, "订单"):
			return "订单"
		}
	}
	return ""
}

// ExtractSerialNumber resolves an order's 流水号 from the richest source
// available. Serials scraped from the content cell sometimes run into
// the following 入账日期 label; everything from that marker on is noise.
func ExtractSerialNumber(order *outsofts.RawOrder) string {
	if serial := order.ExtractedInfo["流水号"]; serial != "" {
		return trimSerial(serial)
	}
	if groups := serialInContentRegex.FindStringSubmatch(order.Content); len(groups) > 1 {
		return trimSerial(groups[1])
	}
	if order.SerialNumber != "" {
		return trimSerial(order.SerialNumber)
	}
	if flow := flowData(order); flow != nil {
		return stringField(flow, fieldSerial)
	}
	return ""
}

func trimSerial(serial string) string {
	return textutil.TruncateBefore(serial, "入账日期")
}

func newOrderBase(order *outsofts.RawOrder, flow map[string]any, formType, serial string) OrderBase {
	base := OrderBase{
		ID:          order.ID,
		Applicant:   order.Applicant,
		OrderNumber: serial,
		FormType:    formType,
		ReceiveTime: order.ReceiveTime,
	}
	if flow == nil {
		return base
	}
	if sn := stringField(flow, fieldSerial); sn != "" {
		base.OrderNumber = sn
	}
	base.Date = stringField(flow, fieldDate)
	base.Department = stringField(flow, fieldDepartment)
	base.Status = stringField(flow, fieldStatus)
	base.CurrentStep = stringField(flow, fieldFlowStep)
	base.Handler = stringField(flow, fieldFlowUser)
	return base
}

func buildSalesOrder(order *outsofts.RawOrder, formType, serial string) SalesOrder {
	flow := flowData(order)
	sales := SalesOrder{OrderBase: newOrderBase(order, flow, formType, serial)}
	if flow == nil {
		return sales
	}

	sales.SalesDocumentNumber = stringField(flow, fieldSalesDocumentNumber)
	sales.SalesDate = stringField(flow, fieldSalesDate)
	sales.LatestArrivalTime = stringField(flow, fieldLatestArrivalTime)
	sales.SalesCategory = stringField(flow, fieldSalesCategory)

	// the customer field is either a plain string or an object whose
	// value carries the customer code and type
	switch customer := flow[fieldCustomer].(type) {
	case map[string]any:
		if value, ok := customer["value"].(map[string]any); ok {
			sales.Customer = stringField(value, fieldSerial)
			sales.CustomerType = stringField(value, fieldCustomerType)
		}
	case string:
		sales.Customer = customer
	}

	sales.SalesDetails = renderItemBlock("销售明细:", itemsField(flow, fieldSalesItems), salesItemFields)
	return sales
}

func buildProductionOrder(order *outsofts.RawOrder, formType, serial string) ProductionOrder {
	flow := flowData(order)
	production := ProductionOrder{OrderBase: newOrderBase(order, flow, formType, serial)}
	if flow == nil {
		return production
	}

	production.SalesType = stringField(flow, fieldSalesType)
	production.MatchingSupplier = stringField(flow, fieldMatchingSupplier)
	production.Notes = stringField(flow, fieldNotes)
	production.OrderDetails = renderItemBlock("订单明细:", itemsField(flow, fieldOrderItems), orderItemFields)
	production.MaterialDetails = renderMaterialBlock(itemsField(flow, fieldMaterials))
	return production
}

var salesItemFields = itemFieldCodes{
	style:    fieldSalesItemStyle,
	color:    fieldSalesItemColor,
	size:     fieldSalesItemSize,
	quantity: fieldSalesItemQuantity,
}

var orderItemFields = itemFieldCodes{
	style:    fieldOrderItemStyle,
	color:    fieldOrderItemColor,
	size:     fieldOrderItemSize,
	quantity: fieldOrderItemQuantity,
}

type itemFieldCodes struct {
	style, color, size, quantity string
}

// renderItemBlock produces the deterministic text form of a style/color/
// size/quantity item list. An empty list renders as an empty string.
func renderItemBlock(header string, items []any, codes itemFieldCodes) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(header + "\n")
	for i, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%d. 款号: %s, 颜色: %s, 尺码: %s, 数量: %s件\n",
			i+1,
			stringField(item, codes.style),
			stringField(item, codes.color),
			stringField(item, codes.size),
			numberField(item, codes.quantity))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderMaterialBlock(materials []any) string {
	if len(materials) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("所需物料:\n")
	for i, raw := range materials {
		material, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		fmt.Fprintf(&b,
			"%d. 物料名称: %s, 物料编码: %s, 颜色: %s, 尺码: %s, 所需数量: %s, "+
				"损耗比例: %s, 单件用量: %s, 预计采购数量: %s, 单位: %s, 单价: %s, "+
				"金额: %s, 占用数量: %s, 备注: %s\n",
			i+1,
			stringField(material, fieldMaterialName),
			stringField(material, fieldMaterialCode),
			stringField(material, fieldMaterialColor),
			stringField(material, fieldMaterialSize),
			numberField(material, fieldMaterialRequiredQty),
			numberField(material, fieldMaterialLossRatio),
			numberField(material, fieldMaterialUnitUsage),
			numberField(material, fieldMaterialPlannedQty),
			stringField(material, fieldMaterialUnit),
			numberField(material, fieldMaterialUnitPrice),
			numberField(material, fieldMaterialAmount),
			numberField(material, fieldMaterialOccupiedQty),
			stringField(material, fieldMaterialRemarks))
	}
	return strings.TrimRight(b.String(), "\n")
}

func itemsField(flow map[string]any, key string) []any {
	items, _ := flow[key].([]any)
	return items
}

// stringField renders a payload value as text; non-string scalars come
// back from JSON as float64 and are formatted without a trailing zero.
func stringField(m map[string]any, key string) string {
	switch value := m[key].(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case nil:
		return ""
	default:
		return fmt.Sprint(value)
	}
}

// numberField is stringField with "0" for absent values, matching how
// numeric columns render in the text blocks.
func numberField(m map[string]any, key string) string {
	if _, ok := m[key]; !ok {
		return "0"
	}
	if value := stringField(m, key); value != "" {
		return value
	}
	return "0"
}
