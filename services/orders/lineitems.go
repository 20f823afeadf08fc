package orders

import (
	"regexp"
	"strconv"
	"strings"
)

// OrderRef tags parsed line items with the order they came from.
type OrderRef struct {
	ID        string
	Applicant string
	FormType  string
}

// The rendered blocks are the only wire format for line items, so they
// are parsed back by the exact grammar they were written with. Lines
// that do not match the grammar (headers, stray text) are skipped.
var (
	salesLineRegex = regexp.MustCompile(
		`^(\d+)\.\s*款号:\s*([^,]+),\s*颜色:\s*([^,]+),\s*尺码:\s*([^,]+),\s*数量:\s*(\d+)件`)

	materialLineRegex = regexp.MustCompile(
		`^(\d+)\.\s*物料名称:\s*([^,]+),\s*物料编码:\s*([^,]+),\s*颜色:\s*([^,]*),\s*尺码:\s*([^,]*),` +
			`\s*所需数量:\s*([^,]+),\s*损耗比例:\s*([^,]+),\s*单件用量:\s*([^,]+),\s*预计采购数量:\s*([^,]+),` +
			`\s*单位:\s*([^,]+),\s*单价:\s*([^,]+),\s*金额:\s*([^,]+),\s*占用数量:\s*([^,]+),\s*备注:\s*(.*)`)
)

// ParseSalesDetails parses a 销售明细/订单明细 text block into line items.
func ParseSalesDetails(block string, ref OrderRef) []SalesLineItem {
	var items []SalesLineItem
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "销售明细:") || strings.Contains(line, "订单明细:") {
			continue
		}
		groups := salesLineRegex.FindStringSubmatch(line)
		if groups == nil {
			continue
		}

		itemNumber, _ := strconv.Atoi(groups[1])
		quantity, _ := strconv.Atoi(groups[5])
		items = append(items, SalesLineItem{
			OrderID:        ref.ID,
			OrderApplicant: ref.Applicant,
			OrderFormType:  ref.FormType,
			ItemNumber:     itemNumber,
			StyleNumber:    strings.TrimSpace(groups[2]),
			Color:          strings.TrimSpace(groups[3]),
			Size:           strings.TrimSpace(groups[4]),
			Quantity:       quantity,
		})
	}
	return items
}

// ParseMaterialDetails parses a 所需物料 text block into material items.
func ParseMaterialDetails(block string, ref OrderRef) []MaterialLineItem {
	var items []MaterialLineItem
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "所需物料:") {
			continue
		}
		groups := materialLineRegex.FindStringSubmatch(line)
		if groups == nil {
			continue
		}

		itemNumber, _ := strconv.Atoi(groups[1])
		items = append(items, MaterialLineItem{
			OrderID:          ref.ID,
			OrderApplicant:   ref.Applicant,
			OrderFormType:    ref.FormType,
			ItemNumber:       itemNumber,
			MaterialName:     strings.TrimSpace(groups[2]),
			MaterialCode:     strings.TrimSpace(groups[3]),
			Color:            strings.TrimSpace(groups[4]),
			Size:             strings.TrimSpace(groups[5]),
			RequiredQuantity: parseNumber(groups[6]),
			LossRatio:        parseNumber(groups[7]),
			UnitUsage:        parseNumber(groups[8]),
			PlannedQuantity:  parseNumber(groups[9]),
			Unit:             strings.TrimSpace(groups[10]),
			UnitPrice:        parseNumber(groups[11]),
			Amount:           parseNumber(groups[12]),
			OccupiedQuantity: parseNumber(groups[13]),
			Notes:            strings.TrimSpace(groups[14]),
		})
	}
	return items
}

// parseNumber tolerates non-numeric noise in numeric columns, mapping it
// to zero rather than failing the whole block.
func parseNumber(s string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return value
}
