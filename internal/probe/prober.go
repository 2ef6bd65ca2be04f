package probe

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
)

// DefaultCount is the number of echo requests sent per probe. It bounds the
// run time of the child process, so no timeout is applied on top of it.
const DefaultCount = 4

// Config describes how the probe binary is invoked.
type Config struct {
	Binary    string
	CountFlag string
	Count     int
}

// DefaultConfig returns the ping invocation for the current platform.
func DefaultConfig() Config {
	return Config{
		Binary:    "ping",
		CountFlag: CountFlag(runtime.GOOS),
		Count:     DefaultCount,
	}
}

// CountFlag returns the packet-count flag ping understands on goos.
func CountFlag(goos string) string {
	if goos == "windows" {
		return "-n"
	}
	return "-c"
}

// Result is the outcome of a probe that was actually started.
type Result struct {
	Host     string
	Args     []string
	Stdout   string
	Stderr   string
	Err      error
	Started  time.Time
	Duration time.Duration
}

// Succeeded reports whether the probe process exited cleanly.
func (r Result) Succeeded() bool { return r.Err == nil }

type Prober struct {
	runner Runner
	cfg    Config
	clock  clock.Clock
	logger lager.Logger
}

func NewProber(runner Runner, cfg Config, clk clock.Clock, logger lager.Logger) *Prober {
	if runner == nil || clk == nil || logger == nil {
		panic("nil dependency passed to NewProber")
	}
	if cfg.Binary == "" {
		cfg.Binary = "ping"
	}
	if cfg.CountFlag == "" {
		cfg.CountFlag = CountFlag(runtime.GOOS)
	}
	if cfg.Count < 1 {
		cfg.Count = DefaultCount
	}
	return &Prober{runner: runner, cfg: cfg, clock: clk, logger: logger.Session("probe")}
}

// Args builds the argument vector for host. The host is always the last,
// separate element.
func (p *Prober) Args(host string) []string {
	return []string{p.cfg.CountFlag, strconv.Itoa(p.cfg.Count), host}
}

// Probe validates host and, if it passes, runs exactly one probe process.
// The only error returned is ErrInvalidHost; process failures are reported
// through Result.Err so callers can still show the captured stderr.
func (p *Prober) Probe(ctx context.Context, host string) (Result, error) {
	if !ValidHost(host) {
		p.logger.Debug("rejected", lager.Data{"length": len(host)})
		return Result{}, ErrInvalidHost
	}

	args := p.Args(host)
	logger := p.logger.WithData(lager.Data{"host": host})
	logger.Info("starting", lager.Data{"binary": p.cfg.Binary, "args": args})

	started := p.clock.Now()
	out, err := p.runner.Run(ctx, p.cfg.Binary, args)
	res := Result{
		Host:     host,
		Args:     args,
		Stdout:   string(out.Stdout),
		Stderr:   string(out.Stderr),
		Err:      err,
		Started:  started,
		Duration: p.clock.Since(started),
	}

	if err != nil {
		logger.Error("failed", err, lager.Data{"exit-code": ExitCode(err), "duration": res.Duration.String()})
		return res, nil
	}
	logger.Info("finished", lager.Data{
		"duration": res.Duration.String(),
		"stdout":   bytefmt.ByteSize(uint64(len(out.Stdout))),
	})
	return res, nil
}
