package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/aggregator"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/cache"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/model"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/workbook"
	"github.com/spf13/cobra"
)

var dashboardFilters model.Filters

// newLoader reads the configured sheets from the workbook.
func newLoader() cache.Loader {
	names := cfg.SheetNames()
	return cache.LoaderFunc(func(path string) (*model.Dataset, error) {
		return workbook.Load(path, names)
	})
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Load the workbook once and print the dashboard JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cache.New(cfg.Source.Path, newLoader())
		c.EnsureFresh(context.Background(), false)

		ds, st := c.Snapshot()
		if st.LastError != nil {
			fmt.Fprintf(os.Stderr, "WARNING: %s\n", *st.LastError)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(aggregator.Build(ds, dashboardFilters, st)); err != nil {
			return fmt.Errorf("encoding dashboard: %w", err)
		}
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardFilters.Query, "q", "", "Free-text filter over id, name, type and platform")
	dashboardCmd.Flags().StringVar(&dashboardFilters.CaseID, "case-id", "", "Case id substring filter")
	dashboardCmd.Flags().StringVar(&dashboardFilters.DateFrom, "date-from", "", "Earliest start date (inclusive)")
	dashboardCmd.Flags().StringVar(&dashboardFilters.DateTo, "date-to", "", "Latest start date (inclusive)")
	rootCmd.AddCommand(dashboardCmd)
}
