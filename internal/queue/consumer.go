// Package queue contains the background consumer that listens to the
// probe.completed queue and appends one line per event to probe.log.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"code.cloudfoundry.org/lager/v3"
	amqp "github.com/rabbitmq/amqp091-go"
)

// StartProbeConsumer connects to RabbitMQ, declares the probe.completed
// queue (durable), and consumes messages until stop is closed.  Each message
// is appended to <logDir>/probe.log.  The broker connection is re-dialed with
// exponential backoff; undecodable messages are rejected without requeue.
func StartProbeConsumer(logger lager.Logger, url, logDir string, stop <-chan struct{}) error {
	if url == "" {
		return errors.New("probe-consumer: no broker url configured")
	}
	logger = logger.Session("probe-consumer", lager.Data{"queue": ProbeCompletedQueue})

	backoff := time.Second
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Error("failed-to-dial", err, lager.Data{"retry-in": backoff.String()})
			if !sleep(stop, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect
		logger.Info("connected")

		err = consumeLoop(logger, conn, logDir, stop)
		_ = conn.Close()
		if err == nil {
			return nil
		}
		logger.Error("consume-loop-ended", err)
		if !sleep(stop, 2*time.Second) {
			return nil
		}
	}
}

// sleep waits for d and reports false if stop closed first.
func sleep(stop <-chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-stop:
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(logger lager.Logger, conn *amqp.Connection, logDir string, stop <-chan struct{}) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Error("failed-to-set-qos", err)
	}

	_, err = ch.QueueDeclare(ProbeCompletedQueue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(ProbeCompletedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-stop:
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := AppendProbeLog(logDir, d.Body); err != nil {
				logger.Error("failed-to-handle-message", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// AppendProbeLog decodes one ProbeCompletedEvent and appends it to
// <dir>/probe.log as a single line.
func AppendProbeLog(dir string, body []byte) error {
	var ev ProbeCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.ProbeID == "" || ev.Host == "" {
		return errors.New("event without probe_id or host")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	fpath := filepath.Join(dir, "probe.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	status := "ok"
	if !ev.Succeeded {
		status = "failed"
	}

	line := fmt.Sprintf("[%s] Probe %s | probe_id=%s | host=%s | args=[%s] | exit_code=%d | duration=%dms | stdout=%s | stderr=%s\n",
		ev.StartedAt, status, ev.ProbeID, ev.Host, strings.Join(ev.Args, " "), ev.ExitCode, ev.DurationMS,
		bytefmt.ByteSize(uint64(ev.StdoutBytes)), bytefmt.ByteSize(uint64(ev.StderrBytes)))

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
