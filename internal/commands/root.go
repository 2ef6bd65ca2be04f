// Package commands wires configuration, logging and the domain packages into
// the secure-ping command line.
package commands

import (
	"errors"
	"fmt"
	"io"

	"code.cloudfoundry.org/lager/v3"
	"github.com/spf13/cobra"

	"github.com/iliyamo/secure-ping/internal/config"
)

var (
	cfg    config.Config
	logger lager.Logger
)

var RootCmd = &cobra.Command{
	Use:               "secure-ping",
	Short:             "Serves a form that pings a validated host",
	Long:              "Serves a form that pings a validated host. Without a subcommand it runs the HTTP server.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              serve,
}

func init() {
	RootCmd.AddCommand(serveCommand, probeCommand, historyCommand, consumeCommand)
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	if err := RootCmd.Execute(); err != nil {
		var code exitCode
		if errors.As(err, &code) {
			return int(code)
		}
		fmt.Fprintf(RootCmd.ErrOrStderr(), "Error: %s\n", err)
		return 1
	}
	return 0
}

// exitCode lets a command choose its exit status after it has already
// printed its own output.
type exitCode int

func (c exitCode) Error() string { return fmt.Sprintf("exit status %d", int(c)) }

func setup(cmd *cobra.Command, _ []string) error {
	cfg = config.Load()
	var err error
	logger, err = newLogger(cfg, cmd.ErrOrStderr())
	return err
}

// newLogger writes to w, which is stderr outside of tests, so command
// output on stdout stays clean.
func newLogger(cfg config.Config, w io.Writer) (lager.Logger, error) {
	level, err := lager.LogLevelFromString(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	l := lager.NewLogger("secure-ping")
	l.RegisterSink(lager.NewPrettySink(w, level))
	return l.WithData(lager.Data{"env": cfg.Env}), nil
}
