package commands

import (
	"context"
	"database/sql"
	"time"

	"code.cloudfoundry.org/lager/v3"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/secure-ping/internal/config"
	"github.com/iliyamo/secure-ping/internal/database"
	"github.com/iliyamo/secure-ping/internal/repository"
	"github.com/iliyamo/secure-ping/internal/service"
)

// stores holds the optional backends opened at startup.  Any field may be
// nil.
type stores struct {
	db  *sql.DB
	rdb *redis.Client
}

func openStores(logger lager.Logger) stores {
	var s stores
	if cfg.DB.Enabled() {
		db, err := database.Open(cfg.DB)
		if err != nil {
			logger.Error("failed-to-open-history", err, lager.Data{"driver": cfg.DB.Driver})
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = repository.NewProbeRepo(db).Migrate(ctx)
			cancel()
			if err != nil {
				logger.Error("failed-to-migrate-history", err)
				_ = db.Close()
			} else {
				s.db = db
			}
		}
	}
	s.rdb = config.NewRedisClient(cfg.Redis)
	return s
}

func (s stores) close() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
}

func (s stores) recent() *repository.RecentProbes {
	return repository.NewRecentProbes(s.rdb, cfg.Recent.Prefix, cfg.Recent.Max, cfg.Recent.TTL)
}

// newRecorder opens every configured sink and returns the fan-out recorder
// together with a function that releases the sinks.
func newRecorder(logger lager.Logger) (service.Recorder, func()) {
	s := openStores(logger)

	var recorder service.MultiRecorder
	sinks := []string{}
	if s.db != nil {
		recorder = append(recorder, service.HistoryRecorder(repository.NewProbeRepo(s.db)))
		sinks = append(sinks, "history")
	}
	if s.rdb != nil {
		recorder = append(recorder, service.RecentRecorder(s.recent()))
		sinks = append(sinks, "recent")
	}
	if cfg.AMQPURL != "" {
		recorder = append(recorder, service.EventRecorder(cfg.AMQPURL))
		sinks = append(sinks, "events")
	}
	logger.Info("recording", lager.Data{"sinks": sinks})
	return recorder, s.close
}
