package service_test

import (
	"context"
	"database/sql"
	"errors"
	"os/exec"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/iliyamo/secure-ping/internal/config"
	"github.com/iliyamo/secure-ping/internal/database"
	"github.com/iliyamo/secure-ping/internal/model"
	"github.com/iliyamo/secure-ping/internal/probe"
	"github.com/iliyamo/secure-ping/internal/repository"
	"github.com/iliyamo/secure-ping/internal/service"
)

type fakeRecorder struct {
	records []model.ProbeRecord
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, rec model.ProbeRecord) error {
	f.records = append(f.records, rec)
	return f.err
}

var _ = Describe("MultiRecorder", func() {
	var (
		ctx context.Context
		rec model.ProbeRecord
	)

	BeforeEach(func() {
		ctx = context.Background()
		rec = model.ProbeRecord{ID: "id-1", Host: "example.com"}
	})

	It("does nothing when empty", func() {
		Expect(service.MultiRecorder{}.Record(ctx, rec)).To(Succeed())
	})

	It("hands the record to every recorder even after a failure", func() {
		boom := errors.New("boom")
		first := &fakeRecorder{err: boom}
		second := &fakeRecorder{}

		err := service.MultiRecorder{first, second}.Record(ctx, rec)
		Expect(err).To(MatchError(boom))
		Expect(first.records).To(ConsistOf(rec))
		Expect(second.records).To(ConsistOf(rec))
	})

	It("names the sink that failed", func() {
		recent := repository.NewRecentProbes(nil, "probes", 10, 0)
		err := service.MultiRecorder{service.RecentRecorder(recent)}.Record(ctx, rec)
		Expect(err).To(MatchError(repository.ErrNotConfigured))
		Expect(err.Error()).To(HavePrefix("recent: "))
	})

	Context("with a history store", func() {
		var db *sql.DB

		BeforeEach(func() {
			var err error
			db, err = database.Open(config.DBConfig{Driver: "sqlite", Path: ":memory:"})
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(db.Close)
		})

		It("persists the record", func() {
			repo := repository.NewProbeRepo(db)
			Expect(repo.Migrate(ctx)).To(Succeed())

			rec.Args = []string{"-c", "4", "example.com"}
			rec.StartedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			Expect(service.MultiRecorder{service.HistoryRecorder(repo)}.Record(ctx, rec)).To(Succeed())

			got, err := repo.ListRecent(ctx, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(1))
			Expect(got[0].ID).To(Equal("id-1"))
		})
	})
})

var _ = Describe("NewProbeRecord", func() {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	It("captures a successful probe", func() {
		rec := service.NewProbeRecord(probe.Result{
			Host:     "127.0.0.1",
			Args:     []string{"-c", "4", "127.0.0.1"},
			Stdout:   "4 packets transmitted",
			Started:  started,
			Duration: 3 * time.Second,
		})

		Expect(rec.ID).To(HaveLen(36))
		Expect(rec.Succeeded).To(BeTrue())
		Expect(rec.ExitCode).To(BeZero())
		Expect(rec.Stdout).To(Equal("4 packets transmitted"))
		Expect(rec.StartedAt).To(Equal(started))
	})

	It("captures the exit status of a failed probe", func() {
		err := exec.Command("false").Run()
		Expect(err).To(HaveOccurred())

		rec := service.NewProbeRecord(probe.Result{Host: "nope", Err: err, Stderr: "unknown host"})
		Expect(rec.Succeeded).To(BeFalse())
		Expect(rec.ExitCode).To(Equal(1))
		Expect(rec.Stderr).To(Equal("unknown host"))
	})

	It("assigns a new id every time", func() {
		a := service.NewProbeRecord(probe.Result{Host: "a"})
		b := service.NewProbeRecord(probe.Result{Host: "a"})
		Expect(a.ID).NotTo(Equal(b.ID))
	})
})

var _ = Describe("EventFromRecord", func() {
	It("carries the outcome and output sizes", func() {
		ev := service.EventFromRecord(model.ProbeRecord{
			ID:        "id-2",
			Host:      "example.com",
			Args:      []string{"-c", "4", "example.com"},
			Succeeded: false,
			ExitCode:  2,
			Stdout:    "",
			Stderr:    "ping: unknown host",
			StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Duration:  1500 * time.Millisecond,
		})

		Expect(ev.ProbeID).To(Equal("id-2"))
		Expect(ev.ExitCode).To(Equal(2))
		Expect(ev.StderrBytes).To(Equal(len("ping: unknown host")))
		Expect(ev.DurationMS).To(Equal(int64(1500)))
		Expect(ev.StartedAt).To(Equal("2024-05-01T12:00:00Z"))
	})
})
