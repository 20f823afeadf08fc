package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitKeyValue(t *testing.T) {
	cases := []struct {
		line     string
		key      string
		value    string
		ok       bool
	}{
		{"金额：¥12,800", "金额", "¥12,800", true},
		{"状态: 待审批", "状态", "待审批", true},
		{"时间：2024-01-15 09:30:12", "时间", "2024-01-15 09:30:12", true},
		{"没有分隔符", "", "", false},
		{"：空键", "", "", false},
		{"空值：", "", "", false},
	}

	for _, test := range cases {
		key, value, ok := SplitKeyValue(test.line)
		require.Equal(t, test.ok, ok, test.line)
		require.Equal(t, test.key, key, test.line)
		require.Equal(t, test.value, value, test.line)
	}
}

func TestContainsAny(t *testing.T) {
	require.True(t, ContainsAny("订单金额", "金额", "价格"))
	require.False(t, ContainsAny("订单编号", "金额", "价格"))
}

func TestTruncateBefore(t *testing.T) {
	require.Equal(t, "XS001", TruncateBefore("XS001入账日期2024", "入账日期"))
	require.Equal(t, "XS001", TruncateBefore("XS001", "入账日期"))
}
