package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/sky-health/internal/app"
	"github.com/doeshing/sky-health/internal/infrastructure/cli/commands"
	"github.com/doeshing/sky-health/internal/infrastructure/metrics"
	"github.com/doeshing/sky-health/internal/version"
)

// ErrUnhealthy is returned by the root command when a check failed. It is
// reported through the exit code only.
var ErrUnhealthy = errors.New(commands.ErrUnhealthyMessage)

// Exit codes
const (
	ExitHealthy   = 0
	ExitUnhealthy = 1
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
	// App overrides host adapters; used by tests.
	App app.Options
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(opts Options) *cobra.Command {
	var (
		quiet       bool
		jsonOut     bool
		showVersion bool
		debug       bool
		configPath  string
		metricsFile string
	)

	root := &cobra.Command{
		Use:   version.Name,
		Short: "Local service health check",
		Long:  "sky-health checks the gateway, chat integration, Docker, Tailscale, disk and memory, and exits non-zero when anything needs attention.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if showVersion {
				fmt.Fprintln(out, version.Short())
				return nil
			}

			appOpts := opts.App
			appOpts.ConfigPath = configPath
			appOpts.Verbose = opts.Verbose || debug
			if appOpts.LogOutput == nil {
				appOpts.LogOutput = cmd.ErrOrStderr()
			}
			if appOpts.TraceOutput == nil {
				appOpts.TraceOutput = cmd.ErrOrStderr()
			}
			return runHealthCheck(cmd.Context(), out, appOpts, renderOptions{
				quiet:       quiet,
				json:        jsonOut,
				metricsFile: metricsFile,
				progress:    cmd.ErrOrStderr(),
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.Flags()
	flags.BoolVarP(&quiet, "quiet", "q", false, "Only print failing checks")
	flags.BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	flags.BoolVarP(&showVersion, "version", "V", false, "Print the version and exit")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging on stderr")
	flags.StringVar(&configPath, "config", "", "Config file (default ~/.sky-health/config.yaml)")
	flags.StringVar(&metricsFile, "metrics-file", "", "Also write results to this Prometheus textfile")

	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(commands.NewVersionCommand())
	return root
}

type renderOptions struct {
	quiet       bool
	json        bool
	metricsFile string
	// progress receives the spinner when it is a terminal.
	progress io.Writer
}

func runHealthCheck(ctx context.Context, out io.Writer, appOpts app.Options, render renderOptions) error {
	container, err := app.BuildContainer(ctx, appOpts)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(ctx); err != nil {
			container.Logger.Warn("telemetry shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	var spinner *Spinner
	if w := progressWriter(render.progress, container.DebugLogging()); w != nil && !render.json && !render.quiet {
		spinner = NewSpinner(w, commands.MsgChecking)
		spinner.Start()
	}
	report := container.HealthService.Run(ctx, container.Registry)
	if spinner != nil {
		spinner.Stop()
	}

	if render.metricsFile != "" {
		if err := metrics.WriteTextfile(render.metricsFile, report); err != nil {
			container.Logger.Error("metrics export failed", err, map[string]interface{}{"path": render.metricsFile})
		}
	}

	if render.json {
		if err := RenderJSON(out, report); err != nil {
			return err
		}
	} else {
		RenderText(out, report, render.quiet)
	}

	if !report.OverallOK {
		return ErrUnhealthy
	}
	return nil
}

// progressWriter returns w when a spinner may draw on it. Debug logs from
// check goroutines share the same terminal, so debug runs get no spinner.
func progressWriter(w io.Writer, debugLogging bool) io.Writer {
	if w == nil || debugLogging || !stderrIsTerminal(w) {
		return nil
	}
	return w
}

var stderrIsTerminal = isTerminal

// wantsVersion reports whether args ask for the version. It runs before
// cobra parses anything so that stray arguments or unknown flags alongside
// -V still print the version.
func wantsVersion(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--":
			return false
		case "-V", "--version":
			return true
		}
	}
	return false
}

// ExitCode maps the root command's error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitHealthy
	}
	return ExitUnhealthy
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, opts Options, args []string, stdout, stderr io.Writer) int {
	if wantsVersion(args) {
		fmt.Fprintln(stdout, version.Short())
		return ExitHealthy
	}

	root := NewRootCmd(opts)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, ErrUnhealthy) {
		fmt.Fprintln(stderr, "error:", err)
	}
	return ExitCode(err)
}
