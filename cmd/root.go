package cmd

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/config"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	excelPath  string
	verbose    bool
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tcsd2-dashboard",
	Short: "Serve case, suspect and seizure aggregates from an Excel workbook",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.SetHandler(cli.New(os.Stderr))
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if !cmd.Flags().Changed("data-dir") {
			dataDir = cfg.Data.Dir
		}
		if cmd.Flags().Changed("excel") {
			cfg.Source.Path = excelPath
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "Directory for the load history database")
	rootCmd.PersistentFlags().StringVar(&excelPath, "excel", "", "Path to the case workbook (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func Execute() error {
	return rootCmd.Execute()
}
