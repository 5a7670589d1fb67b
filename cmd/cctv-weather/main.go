package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cctv-weather",
	Short: "Infer current weather from road cameras and compare it with the forecast",
	Long: `Downloads a short clip from every road camera in the configured area,
labels each clip as clear, cloudy, rain, snow or fog from image statistics,
cross-checks the label against the short-term forecast for the camera's grid
point and renders the result as a map.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml); environment variables take precedence")
}
