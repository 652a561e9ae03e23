package cli

import (
	"context"
	"math"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/tracelab/measure"
	"github.com/tracelab/measure/datalog"
	"github.com/tracelab/measure/internal/profiling"
	"github.com/tracelab/measure/logging"
	"github.com/tracelab/measure/reporter"
	"github.com/tracelab/measure/scheduler"
)

var (
	demoSteps      int
	demoRate       float64
	demoLogFile    string
	demoConsoleN   int
	demoBufferSize int
	demoCPUProfile string
	demoMemProfile string
	demoTrace      string
	demoFgprof     string

	demoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Run a synthetic training loop through the full reporting stack.",
		Long: `demo runs a synthetic training loop: a scheduler computes a decaying loss
every step and a slower accuracy measurement every tenth step, and the
results fan out to a throttled console reporter and, with --log, a buffered
JSON metrics log that the plot and dump commands can read back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context())
		},
	}
)

func init() {
	demoCmd.Flags().IntVar(&demoSteps, "steps", 100, "number of training steps")
	demoCmd.Flags().Float64Var(&demoRate, "rate", 0, "limit on steps per second (0 disables pacing)")
	demoCmd.Flags().StringVar(&demoLogFile, "log", "", "write a JSON metrics log to this file")
	demoCmd.Flags().IntVar(&demoConsoleN, "console-each", 10, "print to the console every n steps")
	demoCmd.Flags().IntVar(&demoBufferSize, "buffer", 32, "records to buffer before flushing the log file")
	demoCmd.Flags().StringVar(&demoCPUProfile, "cpu-profile", "", "file to save cpu profile to")
	demoCmd.Flags().StringVar(&demoMemProfile, "mem-profile", "", "file to save memory profile to")
	demoCmd.Flags().StringVar(&demoTrace, "trace", "", "file to save execution trace to")
	demoCmd.Flags().StringVar(&demoFgprof, "fgprof-profile", "", "file to save fgprof profile to")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(ctx context.Context) error {
	logger := logging.New("demo")

	stopProfilers, err := profiling.Start(profiling.Options{
		CPUProfile: demoCPUProfile,
		MemProfile: demoMemProfile,
		Trace:      demoTrace,
		FgprofPath: demoFgprof,
	})
	if err != nil {
		return err
	}
	defer func() {
		if perr := stopProfilers(); perr != nil {
			logger.Errorf("failed to stop profilers: %v", perr)
		}
	}()

	sinks := []reporter.Reporter{}

	console, err := reporter.EachN(reporter.Console(os.Stdout, 4), demoConsoleN)
	if err != nil {
		return err
	}
	sinks = append(sinks, console)

	if demoLogFile != "" {
		f, err := os.Create(demoLogFile)
		if err != nil {
			return err
		}
		w, err := datalog.NewJSONWriter(f)
		if err != nil {
			_ = f.Close()
			return err
		}
		buffered, err := reporter.Buffered(datalog.NewJSONReporter(w), demoBufferSize)
		if err != nil {
			_ = f.Close()
			return err
		}
		sinks = append(sinks, buffered)
	}

	run := reporter.StartRun(reporter.Multi(sinks...), reporter.WithRunLogger(logger))
	defer run.Close()

	sched := scheduler.New(measure.State{"scale": 10.0}, scheduler.WithLogger(logger))
	if err := sched.RegisterEvery("loss", 1, func(state measure.State) (measure.Value, error) {
		step := state["step"].(int)
		return state["scale"].(float64) / math.Sqrt(float64(step)+1), nil
	}); err != nil {
		return err
	}
	if err := sched.RegisterEvery("acc", 10, func(state measure.State) (measure.Value, error) {
		step := state["step"].(int)
		return 1 - 1/(float64(step)+2), nil
	}); err != nil {
		return err
	}

	var limiter *rate.Limiter
	if demoRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(demoRate), 1)
	}

	for step := 0; step < demoSteps; step++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}

		result, err := sched.Measure(step, measure.State{"step": step})
		if err != nil {
			return err
		}
		if result.Empty() {
			continue
		}
		if err := run.Report(result.Step, result.Values); err != nil {
			logger.Warnf("step %d: some sinks failed: %v", step, err)
		}
	}

	logger.Infof("demo finished after %d steps", demoSteps)
	return run.Close()
}
