package main

import (
	"fmt"
	"log/slog"
	"os"

	"unitcap/internal/capture"
	"unitcap/internal/tempdir"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	keepGoing    bool
	dumpUnits    bool
	verbose      bool
	resultsDir   string
	compilerPath string
)

var rootCmd = &cobra.Command{
	Use:   "unitcap",
	Short: "unitcap - capture textual units from a compiler frontend",
	Long: `unitcap runs an external compiler frontend in textual-emit mode,
splits the interleaved per-source-file units out of its stdout stream, and
persists one analysis artifact per source file.`,
}

var captureCmd = &cobra.Command{
	Use:   "capture compiler [args...]",
	Short: "Run the compiler and capture the textual units it emits",
	Long: `Run the compiler and capture the textual units it emits.

The compiler's stdout must carry the textual unit protocol:

  // TEXTUAL UNIT START <source-path>
  <unit content>
  // TEXTUAL UNIT END <source-path>

The argument list must include the "` + capture.CompileSubcommand + `" subcommand; without it the
compiler would not emit textual units and the run fails before spawning
anything. Per-unit translation failures fail the run unless --keep-going
is set. A compiler that exits abnormally always fails the run.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		program := args[0]
		compilerArgs := args[1:]
		if compilerPath != "" {
			// Integration override: a configured compiler wins over the
			// caller-provided program path.
			program = compilerPath
		}

		tmp, err := tempdir.New("unitcap")
		if err != nil {
			return err
		}
		store, err := capture.NewStore(resultsDir)
		if err != nil {
			return err
		}

		runner := &capture.Runner{
			Dispatcher: &capture.Dispatcher{
				Translator: store,
				Sink:       store,
				Tmp:        tmp,
				DumpUnits:  dumpUnits,
			},
			Tmp:       tmp,
			KeepGoing: keepGoing,
		}

		tally, err := runner.Run(program, compilerArgs)
		if err != nil {
			return err
		}
		slog.Info("run succeeded", "captured", tally.Captured, "errored", tally.Errored, "results", store.Dir())
		return nil
	},
}

// setupLogger picks a text handler for interactive use and JSON when the
// output is consumed by another program.
func setupLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func init() {
	captureCmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Tolerate per-unit translation failures (logged and counted, run still succeeds)")
	captureCmd.Flags().BoolVar(&dumpUnits, "dump-units", false, "Dump every unit's raw content to the temp directory, not only failed ones")
	captureCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	captureCmd.Flags().StringVar(&resultsDir, "results-dir", "unitcap-out", "Directory for captured artifacts")
	captureCmd.Flags().StringVar(&compilerPath, "compiler", "", "Compiler executable to use instead of the one given on the command line")

	rootCmd.AddCommand(captureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
