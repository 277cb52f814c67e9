package capture

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"slices"
	"strings"
	"syscall"

	"unitcap/internal/procstat"
	"unitcap/internal/tempdir"
	"unitcap/pkg/unitstream"
)

// CompileSubcommand is the sentinel subcommand the compiler must be asked
// to run for its stdout to carry textual units. Refusing to spawn without
// it turns a misconfiguration into a usage error instead of a confusing
// empty capture.
const CompileSubcommand = "compile-infer"

// ErrUsage reports a compiler argument list that cannot produce textual
// units. It is raised before any process is spawned.
var ErrUsage = errors.New("compiler arguments do not contain the " + CompileSubcommand + " subcommand")

// Tally counts per-unit outcomes across one run.
type Tally struct {
	Captured int
	Errored  int
}

// Runner spawns the external compiler and drains its stdout through the
// unit extractor, dispatching each unit as it completes. A single control
// goroutine drives spawn, drain and wait; the child process runs
// concurrently and computes ahead while its output is consumed.
type Runner struct {
	Dispatcher *Dispatcher
	Tmp        *tempdir.Dir

	// KeepGoing tolerates per-unit translation failures: they are logged
	// and counted, but do not fail the run. A compiler that itself exits
	// abnormally always fails the run.
	KeepGoing bool

	Log *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

// Run executes the compiler and captures every unit it emits. The tally is
// valid even when an error is returned: all units are attempted before the
// aggregate verdict is decided.
func (r *Runner) Run(program string, args []string) (Tally, error) {
	var tally Tally

	if !slices.Contains(args, CompileSubcommand) {
		return tally, fmt.Errorf("%w: got %q", ErrUsage, strings.Join(args, " "))
	}

	// Stderr goes to a named file so compiler diagnostics survive even if
	// the process gets killed mid-run.
	stderrFile, err := r.Tmp.CreateFile("compiler-stderr", ".log")
	if err != nil {
		return tally, fmt.Errorf("failed to create stderr capture file: %w", err)
	}
	defer func() { _ = stderrFile.Close() }()

	cmd := exec.Command(program, args...)
	cmd.Stderr = stderrFile
	// Stdin stays nil so the child reads from /dev/null and can never
	// block waiting for input.
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return tally, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return tally, fmt.Errorf("failed to start compiler: %w", err)
	}
	r.logger().Info("compiler started",
		"program", program, "pid", cmd.Process.Pid, "stderr", stderrFile.Name())

	stop := procstat.Watch(int32(cmd.Process.Pid))

	extractor := unitstream.NewExtractor(stdout, r.logger())
	for {
		unit, ok := extractor.Next()
		if !ok {
			break
		}
		switch r.Dispatcher.Dispatch(unit) {
		case Captured:
			tally.Captured++
		case Errored:
			tally.Errored++
		}
	}

	// The extractor normally drains stdout to EOF. After a read error the
	// pipe may still hold data, so discard the rest: a child blocked
	// writing to a full pipe would deadlock against Wait.
	if rerr := extractor.Err(); rerr != nil {
		r.logger().Warn("discarding undrained compiler output", "error", rerr)
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()

	usage := stop()
	r.logger().Info("compiler resource usage",
		"peak_rss_mb", fmt.Sprintf("%.1f", usage.PeakRSSMB),
		"cpu_user_sec", fmt.Sprintf("%.2f", usage.CPUUserSec),
		"cpu_system_sec", fmt.Sprintf("%.2f", usage.CPUSystemSec))
	r.logger().Info("capture finished", "captured", tally.Captured, "errored", tally.Errored)

	if waitErr != nil {
		return tally, fmt.Errorf("compiler %s failed: %s (stderr: %s)",
			program, exitDescription(waitErr), stderrFile.Name())
	}
	if tally.Errored > 0 {
		if !r.KeepGoing {
			return tally, fmt.Errorf("capture failed for %d source files", tally.Errored)
		}
		r.logger().Warn("continuing despite capture errors", "errored", tally.Errored)
	}
	return tally, nil
}

// exitDescription renders a Wait error as a human-readable termination
// description, naming the signal when the child was killed by one.
func exitDescription(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return fmt.Sprintf("terminated by signal %s", status.Signal())
		}
		return fmt.Sprintf("exit status %d", exitErr.ExitCode())
	}
	return err.Error()
}
