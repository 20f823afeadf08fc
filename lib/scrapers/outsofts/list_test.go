package outsofts

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const listFixture = `
<html><body>
<div class="ant-table">
  <table>
    <tbody>
      <tr data-row-key="flow_8801">
        <td><span>张三</span></td>
        <td><span>销售单</span></td>
        <td>
          <div>流水号：XS20240115001</div>
          <div>金额：¥12,800</div>
          <div>下单日期：2024-01-15</div>
          <div>状态：待审批</div>
        </td>
        <td>李四</td>
        <td>2024-01-15 09:30:12</td>
        <td>
          <button>同意</button>
          <span style="color: rgb(66, 145, 242)">查看详情</span>
        </td>
      </tr>
      <tr>
        <td>王五</td>
        <td>生产订单</td>
        <td><div>本月生产安排确认</div></td>
        <td>赵六</td>
        <td>2024-01-14 16:02:44</td>
        <td><button>详情</button></td>
      </tr>
      <tr data-row-key="flow_8803">
        <td><span></span></td>
        <td><span>销售单</span></td>
        <td><div>流水号：XS20240114002</div></td>
        <td>李四</td>
        <td>2024-01-14 11:00:00</td>
        <td><span>标记已读</span></td>
      </tr>
      <tr class="ant-table-placeholder">
        <td colspan="6">暂无数据</td>
      </tr>
    </tbody>
  </table>
</div>
</body></html>`

func TestExtractOrders(t *testing.T) {
	orders, err := ExtractOrders(listFixture)
	require.NoError(t, err)
	// the row with an empty applicant and the placeholder row are dropped
	require.Len(t, orders, 2)

	first := orders[0]
	require.Equal(t, "flow_8801", first.ID)
	require.Equal(t, "张三", first.Applicant)
	require.Equal(t, "销售单", first.FormType)
	require.Equal(t, "李四", first.PreviousHandler)
	require.Equal(t, "2024-01-15 09:30:12", first.ReceiveTime)
	require.Equal(t, "XS20240115001", first.SerialNumber)
	require.Equal(t, "XS20240115001", first.ExtractedInfo["流水号"])
	require.Equal(t, "¥12,800", first.Amount)
	require.Equal(t, "2024-01-15", first.Date)
	require.Equal(t, "待审批", first.Status)
	require.Equal(t, "销售单_张三_XS20240115001", first.Title)
	require.Len(t, first.RawData, 6)

	// the styled detail span outranks the 同意 button in the same cell
	require.True(t, first.HasActionButton)
	require.Equal(t, "span", first.ActionElementType)
	require.Equal(t, "查看详情", first.ActionButtonText)

	second := orders[1]
	require.Equal(t, "order_0_1", second.ID, "rows without a key get a positional id")
	require.Equal(t, "王五", second.Applicant)
	require.Empty(t, second.SerialNumber)
	require.Equal(t, "生产订单_王五_order_0_1", second.Title)
	require.Equal(t, "button", second.ActionElementType)
	require.Equal(t, "详情", second.ActionButtonText)
}

func TestExtractOrdersEmptyDocument(t *testing.T) {
	orders, err := ExtractOrders("<html><body><p>nothing here</p></body></html>")
	require.NoError(t, err)
	require.Empty(t, orders)
}

func actionCell(t *testing.T, inner string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		"<table><tr><td id='cell'>" + inner + "</td></tr></table>"))
	if err != nil {
		t.Fatal(err)
	}
	return doc.Find("#cell")
}

func TestAffordanceCascadePriority(t *testing.T) {
	cases := []struct {
		name      string
		inner     string
		wantTag   string
		wantMatch string
	}{
		{
			name:      "styled span wins over everything",
			inner:     `<button>同意</button><span style="color: rgb(66, 145, 242)">查看详情</span>`,
			wantTag:   "span",
			wantMatch: "查看详情",
		},
		{
			name:      "detail button before generic button",
			inner:     `<button>驳回</button><button>查看详情</button>`,
			wantTag:   "button",
			wantMatch: "查看详情",
		},
		{
			name:    "any button before links",
			inner:   `<button>同意</button><a>查看详情</a>`,
			wantTag: "button",
		},
		{
			name:      "detail link preferred within links",
			inner:     `<a>导出</a><a>详情</a>`,
			wantTag:   "a",
			wantMatch: "详情",
		},
		{
			name:    "first link as fallback",
			inner:   `<a>导出</a>`,
			wantTag: "a",
		},
		{
			name:      "action span last",
			inner:     `<span>标记已读</span>`,
			wantTag:   "span",
			wantMatch: "标记已读",
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			got, ok := findAffordance(actionCell(t, test.inner))
			require.True(t, ok)
			require.Equal(t, test.wantTag, got.Tag)
			require.Equal(t, test.wantMatch, got.MatchText)
		})
	}
}

func TestAffordanceCascadeNoMatch(t *testing.T) {
	_, ok := findAffordance(actionCell(t, `<span>只读文本</span>`))
	require.False(t, ok)
}
