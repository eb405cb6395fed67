package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwaldner/mtts/internal/logger"
	"github.com/jwaldner/mtts/internal/report"
	"github.com/jwaldner/mtts/internal/table"
)

var (
	exportFlags viewFlags
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered and sorted rows to CSV",
	Long: `Write every row of the current view (all pages) to a CSV file. Without --out
the file name comes from csv.filename_format in the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := exportFlags.state(cfg.Table.DefaultPageSize)
		if err != nil {
			return err
		}
		res, err := loadResults(cmd.Context())
		if err != nil {
			return err
		}
		rows, err := table.NewPipeline(res.Data, table.Stages{}).Sorted(state)
		if err != nil {
			return err
		}
		path, err := report.WriteFile(exportOut, cfg.CSV, state, rows, time.Now())
		if err != nil {
			return err
		}
		logger.Info.Printf("exported %d rows to %s", len(rows), path)
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %d rows written to %s\n", len(rows), path)
		return nil
	},
}

func init() {
	exportFlags.register(exportCmd, false)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default from csv.filename_format)")
	rootCmd.AddCommand(exportCmd)
}
