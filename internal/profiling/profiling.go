// Package profiling starts and stops the profilers supported by the demo
// command.
package profiling

import (
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/felixge/fgprof"
)

// Options selects which profiles to record. Empty paths disable the
// corresponding profiler.
type Options struct {
	CPUProfile string
	MemProfile string
	Trace      string
	FgprofPath string
}

// Start starts the selected profilers. The returned stop function must be
// called to flush and close the profiles.
func Start(opts Options) (stop func() error, err error) {
	var (
		cpuFile    *os.File
		traceFile  *os.File
		fgprofFile *os.File
		fgprofStop func() error
	)

	if opts.CPUProfile != "" {
		cpuFile, err = os.Create(opts.CPUProfile)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			return nil, err
		}
	}

	if opts.FgprofPath != "" {
		fgprofFile, err = os.Create(opts.FgprofPath)
		if err != nil {
			return nil, err
		}
		fgprofStop = fgprof.Start(fgprofFile, fgprof.FormatPprof)
	}

	if opts.Trace != "" {
		traceFile, err = os.Create(opts.Trace)
		if err != nil {
			return nil, err
		}
		if err := trace.Start(traceFile); err != nil {
			return nil, err
		}
	}

	return func() error {
		if opts.MemProfile != "" {
			f, err := os.Create(opts.MemProfile)
			if err != nil {
				return err
			}
			runtime.GC() // get up-to-date statistics
			if err := pprof.WriteHeapProfile(f); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		}

		if cpuFile != nil {
			pprof.StopCPUProfile()
			if err := cpuFile.Close(); err != nil {
				return err
			}
		}

		if fgprofFile != nil {
			if err := fgprofStop(); err != nil {
				return err
			}
			if err := fgprofFile.Close(); err != nil {
				return err
			}
		}

		if traceFile != nil {
			trace.Stop()
			if err := traceFile.Close(); err != nil {
				return err
			}
		}

		return nil
	}, nil
}
