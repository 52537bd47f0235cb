package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/cache"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/store"
	"github.com/spf13/cobra"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show workbook state and recent load history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		c := cache.New(cfg.Source.Path, newLoader())
		c.EnsureFresh(ctx, false)
		st := c.Status()

		fmt.Printf("Workbook Status\n")
		fmt.Printf("===============\n")
		fmt.Printf("Path:      %s\n", st.Path)
		if st.ModTime != nil {
			fmt.Printf("Modified:  %s\n", st.ModTime.Format(time.RFC3339))
		} else {
			fmt.Printf("Modified:  -\n")
		}
		if st.LastError != nil {
			fmt.Printf("Error:     %s\n", *st.LastError)
		}
		fmt.Printf("Cases:     %d\n", st.Counts.Cases)
		fmt.Printf("Suspects:  %d\n", st.Counts.Suspects)
		fmt.Printf("Seizures:  %d\n", st.Counts.Seizures)
		fmt.Printf("Lookups:   %d flags, %d units\n", st.Counts.Flags, st.Counts.Units)

		if !cfg.History.Enabled {
			return nil
		}

		s, err := store.New(dataDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: load history unavailable: %v\n", err)
			return nil
		}
		defer s.Close()

		events, err := s.RecentLoads(ctx, statusLimit)
		if err != nil {
			return err
		}

		fmt.Printf("\nLoad History (%d total)\n", s.LoadCount())
		if last, ok, err := s.LastSuccess(ctx); err == nil && ok {
			fmt.Printf("Last OK:   %s\n", last.Local().Format(time.DateTime))
		}
		fmt.Printf("------------\n")
		for _, ev := range events {
			result := "ok"
			if !ev.OK {
				result = "error: " + ev.Error
			}
			fmt.Printf("  %s  forced=%-5t  cases: %4d  suspects: %4d  seizures: %4d  %7.1fms  %s\n",
				ev.StartedAt.Local().Format(time.DateTime), ev.Forced,
				ev.Cases, ev.Suspects, ev.Seizures, ev.Duration, result)
		}

		return nil
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "Number of history entries to show")
	rootCmd.AddCommand(statusCmd)
}
