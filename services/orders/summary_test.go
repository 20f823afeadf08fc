package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildSummary(t *testing.T) {
	dataset := &Dataset{
		SalesOrders: []SalesOrder{
			{OrderBase: OrderBase{Applicant: "张三", Status: "待审批", Date: "2024-01-15"}},
			{OrderBase: OrderBase{Applicant: "张三", Status: "已通过", Date: "2024-01-10"}},
			{OrderBase: OrderBase{Applicant: "李四", Status: "待审批"}},
		},
		ProductionOrders: []ProductionOrder{
			{OrderBase: OrderBase{Applicant: "王五", Status: "待审批", Date: "2024-02-01"}},
		},
		SalesDetails: []SalesLineItem{
			{StyleNumber: "A100", Quantity: 10},
			{StyleNumber: "A100", Quantity: 5},
			{StyleNumber: "B200", Quantity: 7},
		},
		MaterialDetails: []MaterialLineItem{
			{MaterialName: "弹力棉", RequiredQuantity: 120.5},
			{MaterialName: "弹力棉", RequiredQuantity: 10},
			{MaterialName: "纽扣", RequiredQuantity: 900},
		},
	}

	summary := BuildSummary(dataset)

	require.Equal(t, 3, summary.SalesOrders.Total)
	require.Equal(t, 2, summary.SalesOrders.ByStatus["待审批"])
	require.Equal(t, 2, summary.SalesOrders.ByApplicant["张三"])
	require.Equal(t, 1, summary.ProductionOrders.Total)
	require.Equal(t, 1, summary.ProductionOrders.ByStatus["待审批"])

	require.Equal(t, 15, summary.SalesDetails.ByStyleNumber["A100"])
	require.Equal(t, 7, summary.SalesDetails.ByStyleNumber["B200"])
	require.Equal(t, 130.5, summary.MaterialDetails.ByMaterialName["弹力棉"])
	require.Equal(t, 900.0, summary.MaterialDetails.ByMaterialName["纽扣"])

	require.Equal(t, "2024-01-10", summary.DateRange.Earliest)
	require.Equal(t, "2024-02-01", summary.DateRange.Latest)
}

func TestBuildSummaryEmptyDataset(t *testing.T) {
	summary := BuildSummary(&Dataset{})
	require.Equal(t, 0, summary.SalesOrders.Total)
	require.Empty(t, summary.DateRange.Earliest)
	require.Empty(t, summary.DateRange.Latest)
}

func TestBuildSummarySkipsUnparsableDates(t *testing.T) {
	dataset := &Dataset{
		SalesOrders: []SalesOrder{
			{OrderBase: OrderBase{Date: "待定"}},
			{OrderBase: OrderBase{Date: "2024-01-20"}},
			{OrderBase: OrderBase{Date: "2024年1月1日"}},
		},
	}
	summary := BuildSummary(dataset)
	require.Equal(t, "2024-01-20", summary.DateRange.Earliest)
	require.Equal(t, "2024-01-20", summary.DateRange.Latest)

	onlyBad := BuildSummary(&Dataset{
		SalesOrders: []SalesOrder{
			{OrderBase: OrderBase{Date: "待定"}},
		},
	})
	require.Empty(t, onlyBad.DateRange.Earliest)
	require.Empty(t, onlyBad.DateRange.Latest)
}

func TestBuildSummaryMixedDateLayouts(t *testing.T) {
	dataset := &Dataset{
		SalesOrders: []SalesOrder{
			{OrderBase: OrderBase{Date: "2024/01/20"}},
			{OrderBase: OrderBase{Date: "2024-01-15 08:00:00"}},
			{OrderBase: OrderBase{Date: "2024-03-01"}},
		},
	}
	summary := BuildSummary(dataset)
	require.Equal(t, "2024-01-15 08:00:00", summary.DateRange.Earliest)
	require.Equal(t, "2024-03-01", summary.DateRange.Latest)
}
