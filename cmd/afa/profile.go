package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
)

// profiler owns the pprof outputs requested on the command line. The CPU
// profile runs for the lifetime of the command; the heap profile is taken
// once the command is done.
type profiler struct {
	logger  *slog.Logger
	cpu     *os.File
	memPath string
}

// startProfiles starts the profiles requested by flags and returns a func
// that finishes them, reporting failures on stderr.
func startProfiles(flags globalFlags, logger *slog.Logger, stderr io.Writer) (func(), error) {
	p := &profiler{logger: logger, memPath: flags.memProfilePath}
	if flags.cpuProfilePath != "" {
		if err := p.startCPU(flags.cpuProfilePath); err != nil {
			return nil, err
		}
	}
	return func() {
		if err := p.finish(); err != nil {
			_ = writef(stderr, "error: profiling: %v\n", err)
		}
	}, nil
}

func (p *profiler) startCPU(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return errors.Join(fmt.Errorf("cpu profile %s: %w", path, err), f.Close())
	}
	p.cpu = f
	p.logger.Debug("cpu profile started", slog.String("path", path))
	return nil
}

// finish stops the CPU profile and writes the heap profile. Both are
// attempted; their errors are joined.
func (p *profiler) finish() error {
	var errs []error
	if p.cpu != nil {
		pprof.StopCPUProfile()
		if err := p.cpu.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cpu profile %s: %w", p.cpu.Name(), err))
		}
		p.logger.Debug("cpu profile written", slog.String("path", p.cpu.Name()))
		p.cpu = nil
	}
	if p.memPath != "" {
		if err := p.writeHeap(); err != nil {
			errs = append(errs, err)
		}
		p.memPath = ""
	}
	return errors.Join(errs...)
}

func (p *profiler) writeHeap() error {
	f, err := os.Create(p.memPath)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return errors.Join(fmt.Errorf("heap profile %s: %w", p.memPath, err), f.Close())
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("heap profile %s: %w", p.memPath, err)
	}
	p.logger.Debug("heap profile written", slog.String("path", p.memPath))
	return nil
}
