package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/storagesync/internal/config"
	"github.com/vango-dev/storagesync/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	flags := &globalFlags{}
	if err := rootCmd(flags).Execute(); err != nil {
		printError(os.Stderr, err, flags.errorFormat)
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath  string
	errorFormat string
	noColor     bool
}

// load reads the configuration named by --config.
func (g *globalFlags) load() (*config.Config, error) {
	return config.Load(g.configPath)
}

func rootCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storagehub",
		Short: "Relay storage events between processes",
		Long: `storagehub relays storage change events between processes that
share a storage area, so reactive storage cells in every process
stay in sync.

Run 'storagehub serve' once, then point clients at its WebSocket
endpoint.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor || os.Getenv("NO_COLOR") != "" {
				errors.DisableColors()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c",
		os.Getenv("STORAGESYNC_CONFIG"), "Config file (JSON or YAML)")
	cmd.PersistentFlags().StringVar(&flags.errorFormat, "error-format", "text",
		"Error output: text, compact or json")
	cmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		serveCmd(flags),
		watchCmd(flags),
		getCmd(flags),
		setCmd(flags),
		removeCmd(flags),
		codesCmd(),
		versionCmd(),
	)

	return cmd
}

// printError writes err to w in the requested format. Errors that carry no
// code are reported as S402.
func printError(w io.Writer, err error, format string) {
	se := errors.FromError(err, "S402")
	switch format {
	case "json":
		fmt.Fprintln(w, se.FormatJSON())
	case "compact":
		fmt.Fprintln(w, se.FormatCompact())
	default:
		fmt.Fprint(w, se.Format())
	}
}

// newLogger builds the process logger at the configured level.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
