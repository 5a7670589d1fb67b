package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/i474232898/cctv-weather/internal/config"
	"github.com/i474232898/cctv-weather/internal/render"
	"github.com/i474232898/cctv-weather/internal/weather"
)

var jsonOutput bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every camera once and write the map",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		p := newPipeline(cfg)
		report, err := p.service.Run(context.Background())
		if err != nil {
			return err
		}

		renderer := render.NewRenderer(p.icons, mapIconURL(cfg.MapFile, cfg.IconDir))
		if err := renderer.WriteFile(cfg.MapFile, report.Records); err != nil {
			log.Printf("ERROR: %v", err)
		} else {
			log.Printf("INFO: map written to %s", cfg.MapFile)
		}

		if cfg.MetricsFile != "" {
			if err := p.metrics.WriteTextfile(cfg.MetricsFile); err != nil {
				log.Printf("ERROR: writing metrics to %s: %v", cfg.MetricsFile, err)
			}
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printReport(report)
		return nil
	},
}

func printReport(report weather.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CAMERA\tCCTV\tFORECAST\tMATCH")
	fmt.Fprintln(w, "------\t----\t--------\t-----")
	for _, r := range report.Records {
		match := "yes"
		if r.Mismatch() {
			match = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, r.Visual, r.Forecast, match)
	}
	w.Flush()

	tally := weather.AggregateReport(report)
	fmt.Printf("\n%d records, %d dropped, %d mismatches, prevailing: %s\n",
		tally.Records, tally.Dropped, tally.Mismatches, tally.Prevailing)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run report as JSON")
}
