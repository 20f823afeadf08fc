package orders

import (
	"testing"
	"time"

	"yqzx-crawler/lib/scrapers/outsofts"

	"github.com/stretchr/testify/require"
)

func detailPayload(inner map[string]any) *outsofts.Detail {
	return &outsofts.Detail{
		Data:      map[string]any{"data": map[string]any{"data": inner}},
		URL:       "https://businessapi.outsofts.net/sys/flow/Flow_Detail",
		Timestamp: time.Now(),
	}
}

func salesRawOrder() *outsofts.RawOrder {
	return &outsofts.RawOrder{
		ID:            "flow_8801",
		Applicant:     "张三",
		FormType:      "销售单",
		ReceiveTime:   "2024-01-15 09:30:12",
		Content:       "流水号：XS20240115001",
		SerialNumber:  "XS20240115001",
		ExtractedInfo: map[string]string{"流水号": "XS20240115001"},
		Detail: detailPayload(map[string]any{
			"sn":             "XS20240115001",
			"date":           "2024-01-15",
			"departmentname": "销售部",
			"status_cn":      "待审批",
			"flowstep":       "部门审批",
			"flowuser":       "李四",
			fieldSalesDocumentNumber: "SD-2024-001",
			fieldSalesDate:           "2024-01-14",
			fieldCustomer: map[string]any{
				"value": map[string]any{
					"sn":              "CUST-001",
					fieldCustomerType: "批发",
				},
			},
			fieldLatestArrivalTime: "2024-02-01",
			fieldSalesCategory:     "内销",
			fieldSalesItems: []any{
				map[string]any{
					fieldSalesItemStyle:    "A100",
					fieldSalesItemColor:    "黑色",
					fieldSalesItemSize:     "XL",
					fieldSalesItemQuantity: float64(120),
				},
				map[string]any{
					fieldSalesItemStyle:    "A200",
					fieldSalesItemColor:    "白色",
					fieldSalesItemSize:     "M",
					fieldSalesItemQuantity: float64(45),
				},
			},
		}),
	}
}

func TestBuildSalesOrder(t *testing.T) {
	order := buildSalesOrder(salesRawOrder(), "销售单", "XS20240115001")

	require.Equal(t, "flow_8801", order.ID)
	require.Equal(t, "XS20240115001", order.OrderNumber)
	require.Equal(t, "销售部", order.Department)
	require.Equal(t, "待审批", order.Status)
	require.Equal(t, "部门审批", order.CurrentStep)
	require.Equal(t, "李四", order.Handler)
	require.Equal(t, "SD-2024-001", order.SalesDocumentNumber)
	require.Equal(t, "CUST-001", order.Customer)
	require.Equal(t, "批发", order.CustomerType)
	require.Equal(t, "内销", order.SalesCategory)

	want := "销售明细:\n" +
		"1. 款号: A100, 颜色: 黑色, 尺码: XL, 数量: 120件\n" +
		"2. 款号: A200, 颜色: 白色, 尺码: M, 数量: 45件"
	require.Equal(t, want, order.SalesDetails)
}

func TestSalesDetailsRoundTrip(t *testing.T) {
	order := buildSalesOrder(salesRawOrder(), "销售单", "XS20240115001")
	ref := OrderRef{ID: order.ID, Applicant: order.Applicant, FormType: order.FormType}

	items := ParseSalesDetails(order.SalesDetails, ref)
	require.Len(t, items, 2)

	require.Equal(t, SalesLineItem{
		OrderID:        "flow_8801",
		OrderApplicant: "张三",
		OrderFormType:  "销售单",
		ItemNumber:     1,
		StyleNumber:    "A100",
		Color:          "黑色",
		Size:           "XL",
		Quantity:       120,
	}, items[0])
	require.Equal(t, 45, items[1].Quantity)
	require.Nil(t, items[0].UnitPrice)
	require.Nil(t, items[0].Amount)
}

func TestMaterialDetailsRoundTrip(t *testing.T) {
	raw := &outsofts.RawOrder{
		ID:        "flow_9001",
		Applicant: "王五",
		FormType:  "生产订单",
		Detail: detailPayload(map[string]any{
			"sn": "SC20240110005",
			fieldMaterials: []any{
				map[string]any{
					fieldMaterialName:        "弹力棉",
					fieldMaterialCode:        "ML-0042",
					fieldMaterialColor:       "藏青",
					fieldMaterialSize:        "",
					fieldMaterialRequiredQty: 120.5,
					fieldMaterialLossRatio:   0.03,
					fieldMaterialUnitUsage:   1.2,
					fieldMaterialPlannedQty:  125.0,
					fieldMaterialUnit:        "米",
					fieldMaterialUnitPrice:   18.8,
					fieldMaterialAmount:      2350.0,
					fieldMaterialOccupiedQty: 10.0,
					fieldMaterialRemarks:     "优先采购",
				},
			},
		}),
	}

	production := buildProductionOrder(raw, "生产订单", "SC20240110005")
	require.Contains(t, production.MaterialDetails, "所需物料:")

	items := ParseMaterialDetails(production.MaterialDetails,
		OrderRef{ID: raw.ID, Applicant: raw.Applicant, FormType: raw.FormType})
	require.Len(t, items, 1)

	item := items[0]
	require.Equal(t, "弹力棉", item.MaterialName)
	require.Equal(t, "ML-0042", item.MaterialCode)
	require.Equal(t, "藏青", item.Color)
	require.Empty(t, item.Size, "empty columns survive the round trip")
	require.Equal(t, 120.5, item.RequiredQuantity)
	require.Equal(t, 0.03, item.LossRatio)
	require.Equal(t, 1.2, item.UnitUsage)
	require.Equal(t, 125.0, item.PlannedQuantity)
	require.Equal(t, "米", item.Unit)
	require.Equal(t, 18.8, item.UnitPrice)
	require.Equal(t, 2350.0, item.Amount)
	require.Equal(t, 10.0, item.OccupiedQuantity)
	require.Equal(t, "优先采购", item.Notes)
}

func TestEmptyItemArraysRenderEmptyBlocks(t *testing.T) {
	raw := &outsofts.RawOrder{
		ID:       "flow_9002",
		FormType: "生产订单",
		Detail: detailPayload(map[string]any{
			fieldOrderItems: []any{},
			fieldMaterials:  []any{},
		}),
	}
	production := buildProductionOrder(raw, "生产订单", "")
	require.Empty(t, production.OrderDetails)
	require.Empty(t, production.MaterialDetails)
}

func TestExtractSerialNumberTruncation(t *testing.T) {
	cases := []struct {
		name  string
		order *outsofts.RawOrder
		want  string
	}{
		{
			name: "extracted info wins",
			order: &outsofts.RawOrder{
				ExtractedInfo: map[string]string{"流水号": "XS001入账日期2024-01-15"},
				SerialNumber:  "ignored",
			},
			want: "XS001",
		},
		{
			name: "content regex is second",
			order: &outsofts.RawOrder{
				ExtractedInfo: map[string]string{},
				Content:       "流水号: XS002\n其他内容",
			},
			want: "XS002",
		},
		{
			name: "scraped serial field is third",
			order: &outsofts.RawOrder{
				ExtractedInfo: map[string]string{},
				SerialNumber:  "XS003入账日期2024",
			},
			want: "XS003",
		},
		{
			name: "payload sn is the last resort",
			order: &outsofts.RawOrder{
				ExtractedInfo: map[string]string{},
				Detail:        detailPayload(map[string]any{"sn": "XS004"}),
			},
			want: "XS004",
		},
		{
			name:  "nothing available",
			order: &outsofts.RawOrder{ExtractedInfo: map[string]string{}},
			want:  "",
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.want, ExtractSerialNumber(test.order))
		})
	}
}

func TestInferFormType(t *testing.T) {
	require.Equal(t, "销售单", InferFormType(&outsofts.RawOrder{FormType: "销售单"}))
	require.Equal(t, "生产订单", InferFormType(&outsofts.RawOrder{
		RawData: []string{"张三", "生产订单审批"},
	}))
	require.Equal(t, "订单", InferFormType(&outsofts.RawOrder{
		RawData: []string{"张三", "某种订单"},
	}))
	require.Empty(t, InferFormType(&outsofts.RawOrder{RawData: []string{"张三"}}))
}
