package commands

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/secure-ping/internal/queue"
)

var consumeCommand = &cobra.Command{
	Use:   "consume",
	Short: "Appends probe.completed events to probe.log",
	Args:  cobra.NoArgs,
	RunE:  consume,
}

func consume(cmd *cobra.Command, _ []string) error {
	if cfg.AMQPURL == "" {
		return errors.New("no broker configured: set RABBITMQ_URL")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return queue.StartProbeConsumer(logger, cfg.AMQPURL, cfg.ProbeLogDir, ctx.Done())
}
