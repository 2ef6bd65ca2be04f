package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/secure-ping/internal/model"
	"github.com/iliyamo/secure-ping/internal/probe"
	q "github.com/iliyamo/secure-ping/internal/queue"
	"github.com/iliyamo/secure-ping/internal/repository"
)

// Recorder accepts the record of a probe that ran.
type Recorder interface {
	Record(ctx context.Context, rec model.ProbeRecord) error
}

// sink is a named Recorder so errors say which store failed.
type sink struct {
	name string
	fn   func(ctx context.Context, rec model.ProbeRecord) error
}

func (s sink) Record(ctx context.Context, rec model.ProbeRecord) error {
	if err := s.fn(ctx, rec); err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return nil
}

// MultiRecorder hands every record to each of its recorders in order.  All
// recorders run even if an earlier one fails; the failures are joined.  An
// empty MultiRecorder does nothing.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(ctx context.Context, rec model.ProbeRecord) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HistoryRecorder stores records in the SQL probe history.
func HistoryRecorder(repo *repository.ProbeRepo) Recorder {
	return sink{name: "history", fn: repo.Insert}
}

// RecentRecorder pushes records onto the Redis recent list.
func RecentRecorder(recent *repository.RecentProbes) Recorder {
	return sink{name: "recent", fn: recent.Push}
}

// EventRecorder publishes a probe.completed event per record.
func EventRecorder(amqpURL string) Recorder {
	return sink{name: "events", fn: func(ctx context.Context, rec model.ProbeRecord) error {
		return PublishProbeCompleted(ctx, amqpURL, EventFromRecord(rec))
	}}
}

// NewProbeRecord turns a probe result into a record with a fresh id.
func NewProbeRecord(res probe.Result) model.ProbeRecord {
	return model.ProbeRecord{
		ID:        uuid.NewString(),
		Host:      res.Host,
		Args:      res.Args,
		Succeeded: res.Succeeded(),
		ExitCode:  probe.ExitCode(res.Err),
		Stdout:    res.Stdout,
		Stderr:    res.Stderr,
		StartedAt: res.Started.UTC(),
		Duration:  res.Duration,
	}
}

// EventFromRecord builds the broker payload for rec.
func EventFromRecord(rec model.ProbeRecord) q.ProbeCompletedEvent {
	return q.ProbeCompletedEvent{
		ProbeID:     rec.ID,
		Host:        rec.Host,
		Args:        rec.Args,
		Succeeded:   rec.Succeeded,
		ExitCode:    rec.ExitCode,
		StdoutBytes: len(rec.Stdout),
		StderrBytes: len(rec.Stderr),
		DurationMS:  rec.Duration.Milliseconds(),
		StartedAt:   rec.StartedAt.UTC().Format(time.RFC3339),
	}
}
