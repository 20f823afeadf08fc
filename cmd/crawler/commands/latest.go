package commands

import (
	"errors"
	"fmt"

	"yqzx-crawler/lib/serviceutil"
	"yqzx-crawler/services/orders/db"

	"github.com/spf13/cobra"
)

var latestDb *string

func init() {
	latestDb = latestCmd.Flags().String("db", "crawler.db", "The sqlite database recorded runs live in.")
	rootCmd.AddCommand(latestCmd)
}

var latestCmd = &cobra.Command{
	Use:   "latest [--db <path/to/crawler.db>]",
	Short: "Prints the most recently received order id, the resume point for incremental crawls.",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := db.Open(*latestDb)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer store.Close()

		id, err := store.LatestID(cmd.Context())
		if errors.Is(err, db.ErrNoOrders) {
			fmt.Println("no orders recorded yet")
			return
		}
		if err != nil {
			serviceutil.Fatal("failed to query latest order", err)
		}

		counts, err := store.Counts(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to query counts", err)
		}
		fmt.Printf("latest order id: %s (%d runs, %d orders recorded)\n",
			id, counts.Runs, counts.Orders)
	},
}
