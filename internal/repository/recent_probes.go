package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/secure-ping/internal/model"
)

// RecentProbes keeps the newest probe records in a capped Redis list.
type RecentProbes struct {
	rdb *redis.Client
	key string
	max int
	ttl time.Duration
}

// NewRecentProbes builds the list under "<prefix>:recent".  max below 1
// becomes 50; a ttl of zero or less disables expiry.
func NewRecentProbes(rdb *redis.Client, prefix string, max int, ttl time.Duration) *RecentProbes {
	if prefix == "" {
		prefix = "probes"
	}
	if max < 1 {
		max = 50
	}
	return &RecentProbes{rdb: rdb, key: prefix + ":recent", max: max, ttl: ttl}
}

// Key returns the Redis key of the list.
func (r *RecentProbes) Key() string { return r.key }

// Push prepends rec, trims the list to max entries and refreshes its TTL in
// a single round trip.
func (r *RecentProbes) Push(ctx context.Context, rec model.ProbeRecord) error {
	if r.rdb == nil {
		return ErrNotConfigured
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode probe record: %w", err)
	}
	pipe := r.rdb.TxPipeline()
	pipe.LPush(ctx, r.key, payload)
	pipe.LTrim(ctx, r.key, 0, int64(r.max-1))
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key, r.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// List returns up to n records, newest first.  Entries that fail to decode
// are skipped.
func (r *RecentProbes) List(ctx context.Context, n int) ([]model.ProbeRecord, error) {
	if r.rdb == nil {
		return nil, ErrNotConfigured
	}
	if n < 1 || n > r.max {
		n = r.max
	}
	raw, err := r.rdb.LRange(ctx, r.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.ProbeRecord, 0, len(raw))
	for _, s := range raw {
		var rec model.ProbeRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
