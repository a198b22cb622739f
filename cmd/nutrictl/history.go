package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fdg312/nutri-hub/internal/reports"
	"github.com/fdg312/nutri-hub/internal/state"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Summarize or export logged days",
}

var (
	exportFormat string
	exportFrom   string
	exportTo     string
	exportOut    string
)

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export days as CSV or PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		bridge, err := openBridge(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer bridge.Close()

		store := state.NewStore(bridge.Load(cmd.Context()), state.WithLocation(cfg.Location))
		svc := reports.NewService(store, nil, cfg.ReportsMaxRangeDays, nil)
		data, err := svc.Export(exportFormat, exportFrom, exportTo)
		if err != nil {
			return err
		}

		if exportOut == "" || exportOut == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", len(data), exportOut)
		return nil
	},
}

var historySummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the weekly chart and recent days",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		bridge, err := openBridge(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer bridge.Close()

		sum := reports.Summary(bridge.Load(cmd.Context()))
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Target: %d kcal  Streak: %d\n\n", sum.TargetCalories, sum.Streak)
		for _, p := range sum.Chart {
			mark := ""
			if p.Over {
				mark = " (over)"
			}
			fmt.Fprintf(out, "%s %s %6.0f kcal%s\n", p.Label, p.Date, p.Calories, mark)
		}
		return nil
	},
}

func init() {
	f := historyExportCmd.Flags()
	f.StringVar(&exportFormat, "format", reports.FormatCSV, "csv or pdf")
	f.StringVar(&exportFrom, "from", "", "First day (YYYY-MM-DD), default 30 days ago")
	f.StringVar(&exportTo, "to", "", "Last day (YYYY-MM-DD), default today")
	f.StringVarP(&exportOut, "out", "o", "", "Output file, stdout when empty")

	historyCmd.AddCommand(historyExportCmd, historySummaryCmd)
	rootCmd.AddCommand(historyCmd)
}
