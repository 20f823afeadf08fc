package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		formType        string
		orderDetails    string
		materialDetails string
		want            Kind
	}{
		{"生产订单", "", "", KindProduction},
		{"销售单", "订单明细:\n...", "所需物料:\n...", KindSales},
		{"订单", "订单明细:\n...", "所需物料:\n...", KindProduction},
		{"订单", "订单明细:\n...", "", KindSales},
		{"订单", "", "所需物料:\n...", KindSales},
		{"", "", "", KindSales},
		{"未知类型", "", "", KindSales},
	}

	for _, test := range cases {
		got := Classify(test.formType, test.orderDetails, test.materialDetails)
		require.Equal(t, test.want, got,
			"form_type=%q order_details=%q material_details=%q",
			test.formType, test.orderDetails, test.materialDetails)
	}
}
