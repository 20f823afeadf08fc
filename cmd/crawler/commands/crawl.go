package commands

import (
	"fmt"
	"os"
	"time"

	"yqzx-crawler/lib/configutil"
	"yqzx-crawler/lib/restyutil"
	"yqzx-crawler/lib/serviceutil"
	"yqzx-crawler/services/harvest"
	"yqzx-crawler/services/orders"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var crawlFlags struct {
	page     int
	orders   int
	skip     int
	sinceID  string
	headless bool
	upload   bool
	output   string
	db       string
}

func init() {
	flags := crawlCmd.Flags()
	flags.IntVarP(&crawlFlags.page, "page", "p", 1, "The 1-based page of the pending-approval table to harvest.")
	flags.IntVarP(&crawlFlags.orders, "orders", "o", 0, "Process at most this many orders (0 = the whole page).")
	flags.IntVarP(&crawlFlags.skip, "skip", "s", 0, "Skip this many orders from the front of the page.")
	flags.StringVar(&crawlFlags.sinceID, "since-id", "", "Stop collecting when this order id is reached.")
	flags.BoolVar(&crawlFlags.headless, "headless", true, "Run the browser without a visible window.")
	flags.BoolVar(&crawlFlags.upload, "upload", false, "Upload the dataset to the configured webhook.")
	flags.StringVar(&crawlFlags.output, "output", "", "Directory to write the dataset JSON to (overrides config).")
	flags.StringVar(&crawlFlags.db, "db", "", "Sqlite database to record the run in (overrides config).")
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [--page <n>] [--orders <n>] [--skip <n>] [--since-id <id>]",
	Short: "Harvests one page of pending-approval orders.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		if crawlFlags.output != "" {
			cfg.OutputDir = crawlFlags.output
		}
		if crawlFlags.db != "" {
			cfg.DatabasePath = crawlFlags.db
		}
		orders.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/webhook"))

		report, err := harvest.Run(cmd.Context(), cfg, harvest.Options{
			Page:     crawlFlags.page,
			Orders:   crawlFlags.orders,
			Skip:     crawlFlags.skip,
			SinceID:  crawlFlags.sinceID,
			Headless: crawlFlags.headless,
			Upload:   crawlFlags.upload,
		})
		if err != nil {
			serviceutil.Fatal("harvest failed", err)
		}

		renderReport(report)
	},
}

func readConfig() harvest.Config {
	cfg, err := configutil.ReadFromEnvPath[harvest.Config]("YQZX_CONFIG", "config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	cfg.ApplyEnvOverrides()
	return cfg
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func renderReport(report *harvest.Report) {
	summary := report.Summary

	t := newTable()
	t.AppendHeader(table.Row{"Dataset", "Count"})
	t.AppendRow(table.Row{"sales orders", summary.SalesOrders.Total})
	t.AppendRow(table.Row{"production orders", summary.ProductionOrders.Total})
	t.AppendRow(table.Row{"sales line items", summary.SalesDetails.Total})
	t.AppendRow(table.Row{"material line items", summary.MaterialDetails.Total})
	t.Render()

	if summary.DateRange.Earliest != "" {
		fmt.Printf("date range: %s ~ %s\n", summary.DateRange.Earliest, summary.DateRange.Latest)
	}
	if report.OutputFile != "" {
		fmt.Printf("dataset written to %s\n", report.OutputFile)
	}
	if report.Uploaded {
		fmt.Println("dataset uploaded to webhook")
	}
	fmt.Printf("completed in %s\n", report.Duration.Round(time.Millisecond))

	if len(report.Failures) == 0 {
		fmt.Println("all order details fetched successfully")
		return
	}
	f := newTable()
	f.AppendHeader(table.Row{"#", "ID", "流水号", "申请人", "原因"})
	for _, failure := range report.Failures {
		f.AppendRow(table.Row{
			failure.Index, failure.ID, failure.SerialNumber,
			failure.Applicant, failure.Reason,
		})
	}
	f.Render()
}
