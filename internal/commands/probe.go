package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	"github.com/spf13/cobra"

	"github.com/iliyamo/secure-ping/internal/probe"
	"github.com/iliyamo/secure-ping/internal/service"
)

var probeCommand = &cobra.Command{
	Use:   "probe <host>",
	Short: "Pings a host once from the command line",
	Long:  "Pings a host with the same validation and invocation the HTTP server uses. Exits 2 if the host is rejected.",
	Args:  cobra.ExactArgs(1),
	RunE:  runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	prober := probe.NewProber(probe.NewExecRunner(), probeConfig(), clock.NewClock(), logger)

	res, err := prober.Probe(cmd.Context(), args[0])
	if errors.Is(err, probe.ErrInvalidHost) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Invalid hostname")
		return exitCode(2)
	}

	recorder, closeSinks := newRecorder(logger)
	defer closeSinks()
	recordResult(cmd, recorder, res)

	if !res.Succeeded() {
		fmt.Fprintf(cmd.OutOrStdout(), "Error: %s", res.Stderr)
		return exitCode(1)
	}
	fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
	return nil
}

func recordResult(cmd *cobra.Command, recorder service.Recorder, res probe.Result) {
	rec := service.NewProbeRecord(res)
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
	defer cancel()
	if err := recorder.Record(ctx, rec); err != nil {
		logger.Error("failed-to-record-probe", err, lager.Data{"probe-id": rec.ID})
	}
}
