package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tracelab/measure/datalog"
	"github.com/tracelab/measure/plotting"
)

var (
	plotMetrics []string
	plotOutDir  string
	plotWindow  int

	plotCmd = &cobra.Command{
		Use:   "plot metrics.json",
		Short: "Render recorded metrics to image files.",
		Long: `plot reads a JSON metrics log and renders one image per metric.
By default every metric in the log is plotted; use --metrics to select a
subset, and --window to average each metric over windows of that many steps.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(args[0])
		},
	}
)

func init() {
	plotCmd.Flags().StringSliceVar(&plotMetrics, "metrics", nil, "metric keys to plot (default: all)")
	plotCmd.Flags().StringVar(&plotOutDir, "out", ".", "directory to write images to")
	plotCmd.Flags().IntVar(&plotWindow, "window", 0, "average over windows of this many steps (0 disables averaging)")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := datalog.ReadJSON(f)
	if err != nil {
		return err
	}
	rd := datalog.SeriesReader(records)

	keys := plotMetrics
	if len(keys) == 0 {
		if keys, err = rd.Keys(); err != nil {
			return err
		}
	}

	for _, key := range keys {
		p, err := plotting.FromReader(rd, key)
		if err != nil {
			return err
		}
		if p.Len() == 0 {
			return fmt.Errorf("no numeric samples recorded for %q", key)
		}
		out := filepath.Join(plotOutDir, key+".png")
		if plotWindow > 0 {
			err = p.PlotAverage(out, plotWindow)
		} else {
			err = p.Plot(out)
		}
		if err != nil {
			return err
		}
		fmt.Println("wrote", out)
	}
	return nil
}
