package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tracelab/measure/datalog"
	"github.com/tracelab/measure/reporter"
	"github.com/tracelab/measure/sqlstore"
)

var (
	dumpDB         string
	dumpExperiment int64
	dumpRun        int64
	dumpDigits     int

	dumpCmd = &cobra.Command{
		Use:   "dump [metrics.json]",
		Short: "Print a metrics log to stdout.",
		Long: `dump prints recorded metrics in a human-readable form, one line per step.
The source is either a JSON metrics log file, or a sqlite database selected
with --db, --experiment and --run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dumpDB != "" {
				return dumpSQL()
			}
			if len(args) != 1 {
				return fmt.Errorf("either a log file or --db is required")
			}
			return dumpJSON(args[0])
		},
	}
)

func init() {
	dumpCmd.Flags().StringVar(&dumpDB, "db", "", "sqlite database to read instead of a log file")
	dumpCmd.Flags().Int64Var(&dumpExperiment, "experiment", 1, "experiment id to read from the database")
	dumpCmd.Flags().Int64Var(&dumpRun, "run", 1, "run id to read from the database")
	dumpCmd.Flags().IntVar(&dumpDigits, "digits", 3, "digits after the decimal point")
	rootCmd.AddCommand(dumpCmd)
}

func dumpJSON(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := datalog.ReadJSON(f)
	if err != nil {
		return err
	}
	console := reporter.Console(os.Stdout, dumpDigits)
	for _, rec := range records {
		if err := console.Report(rec.Step, rec.Metrics); err != nil {
			return err
		}
	}
	return nil
}

func dumpSQL() error {
	db, err := sqlstore.Open(dumpDB)
	if err != nil {
		return err
	}
	defer db.Close()

	rd := db.NewReader(dumpExperiment, dumpRun)
	keys, err := rd.Keys()
	if err != nil {
		return err
	}
	console := reporter.Console(os.Stdout, dumpDigits)
	for _, key := range keys {
		samples, err := rd.Read(key)
		if err != nil {
			return err
		}
		for _, s := range samples {
			if err := reporter.ReportValue(console, s.Step, key, s.Value); err != nil {
				return err
			}
		}
	}
	return nil
}
