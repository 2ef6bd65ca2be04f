package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	"github.com/spf13/cobra"

	"github.com/iliyamo/secure-ping/internal/handler"
	"github.com/iliyamo/secure-ping/internal/probe"
	"github.com/iliyamo/secure-ping/internal/router"
)

const shutdownTimeout = 5 * time.Second

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Runs the HTTP server on port 3000",
	RunE:  serve,
}

func serve(cmd *cobra.Command, _ []string) error {
	logger = logger.Session("serve")

	recorder, closeSinks := newRecorder(logger)
	defer closeSinks()

	prober := probe.NewProber(probe.NewExecRunner(), probeConfig(), clock.NewClock(), logger)
	e := router.New(logger, handler.NewPingHandler(prober, recorder, logger))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	errs := make(chan error, 1)
	go func() {
		logger.Info("listening", lager.Data{"addr": addr, "url": "http://localhost" + addr})
		errs <- e.Start(addr)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("failed-to-serve", err)
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting-down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed-to-shutdown", err)
		return err
	}
	logger.Info("stopped")
	return nil
}

func probeConfig() probe.Config {
	pc := probe.DefaultConfig()
	pc.Binary = cfg.ProbeBinary
	return pc
}
