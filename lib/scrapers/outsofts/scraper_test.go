package outsofts

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func scraperFixture(thirdRowAction string) string {
	return `
<html><body>
<div class="ant-table">
  <table><tbody>
    <tr data-row-key="flow_1">
      <td><span>张三</span></td>
      <td><span>销售单</span></td>
      <td><div>流水号：XS001</div></td>
      <td>李四</td>
      <td>2024-01-15 09:30:12</td>
      <td><span style="color: rgb(66, 145, 242)">查看详情</span></td>
    </tr>
    <tr data-row-key="flow_2">
      <td><span>王五</span></td>
      <td><span>生产订单</span></td>
      <td><div>本月生产安排确认</div></td>
      <td>赵六</td>
      <td>2024-01-15 08:00:00</td>
      <td><span>只读文本</span></td>
    </tr>
    <tr data-row-key="flow_3">
      <td><span>李四</span></td>
      <td><span>销售单</span></td>
      <td><div>流水号：XS003</div></td>
      <td>张三</td>
      <td>2024-01-14 18:45:00</td>
      <td>` + thirdRowAction + `</td>
    </tr>
  </tbody></table>
</div>
</body></html>`
}

func newTestRunner(view *fakeView, correlator *Correlator, config RunnerConfig) *Runner {
	return NewRunner(view, correlator, newFakeClock(), DefaultRetryPolicy(), config)
}

func TestRunnerFullPass(t *testing.T) {
	view := newFakeView()
	view.html = scraperFixture(`<span>标记已读</span>`)
	correlator := NewCorrelator()

	view.onClick = func(ref AffordanceRef) {
		switch {
		case strings.Contains(ref.MatchText, "查看详情"):
			correlator.Observe("https://example.com/Flow_Detail",
				[]byte(`{"data":{"data":{"sn":"`+ref.RowText+`"}}}`), nil)
		case strings.Contains(ref.MatchText, "标记已读"):
			// the portal re-renders the row with a detail link
			view.html = scraperFixture(`<span style="color: rgb(66, 145, 242)">查看详情</span>`)
		}
	}

	runner := newTestRunner(view, correlator, DefaultRunnerConfig())
	result, err := runner.Run(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, result.Orders, 3)

	require.NotNil(t, result.Orders[0].Detail, "plain detail flow")
	require.True(t, result.Orders[1].NoDetail, "no affordance means base info only")
	require.NotNil(t, result.Orders[2].Detail, "mark-as-read flow re-extracts and fetches")

	require.Len(t, result.Failures, 1)
	require.Equal(t, "flow_2", result.Failures[0].ID)
	require.Equal(t, ReasonNoActionButton, result.Failures[0].Reason)
}

func TestRunnerMarkReadWithoutDetail(t *testing.T) {
	view := newFakeView()
	view.html = scraperFixture(`<span>标记已读</span>`)
	// the row never turns into a detail link, the order keeps base info

	correlator := NewCorrelator()
	view.onClick = func(ref AffordanceRef) {
		if strings.Contains(ref.MatchText, "查看详情") {
			correlator.Observe("https://example.com/Flow_Detail", []byte(`{"ok":true}`), nil)
		}
	}

	runner := newTestRunner(view, correlator, DefaultRunnerConfig())
	result, err := runner.Run(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, result.Orders[2].NoDetail)
	require.Nil(t, result.Orders[2].Detail)
}

func TestRunnerSinceIDStopsCollection(t *testing.T) {
	view := newFakeView()
	view.html = scraperFixture(`<span>标记已读</span>`)

	config := DefaultRunnerConfig()
	config.SinceID = "flow_2"
	runner := newTestRunner(view, NewCorrelator(), config)

	result, err := runner.Run(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, result.Orders, 1, "the since-id order itself is excluded")
	require.Equal(t, "flow_1", result.Orders[0].ID)
}

func TestRunnerSkipAndLimit(t *testing.T) {
	view := newFakeView()
	view.html = scraperFixture(`<span>标记已读</span>`)

	config := DefaultRunnerConfig()
	config.Skip = 1
	config.Limit = 1
	runner := newTestRunner(view, NewCorrelator(), config)

	result, err := runner.Run(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)
	require.Equal(t, "flow_2", result.Orders[0].ID)
}

func TestRunnerEmptyPage(t *testing.T) {
	view := newFakeView()
	view.html = "<html><body></body></html>"

	runner := newTestRunner(view, NewCorrelator(), DefaultRunnerConfig())
	_, err := runner.Run(context.Background(), 1)
	require.ErrorIs(t, err, ErrNoOrders)
}

func TestRunnerNavigationFailure(t *testing.T) {
	view := newFakeView()
	view.html = scraperFixture(`<span>标记已读</span>`)
	view.nextEnabled = false

	runner := newTestRunner(view, NewCorrelator(), DefaultRunnerConfig())
	_, err := runner.Run(context.Background(), 3)
	require.ErrorIs(t, err, ErrNavigation)
}
