// Package yatelemetry persists yabench reports outside the process.
//
// RedisCollector keeps a run's batches as a MessagePack list per label and run
// summaries in one hash per run. GormCollector writes the same reports as rows
// through GORM, so any dialect GORM supports can hold benchmark history.
package yatelemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/YaCodeDev/GoYaRSABench/yabench"
	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const DefaultKeyPrefix = "yarsabench"

// RedisCollector implements yabench.Collector on top of a Redis client.
//
// Keys:
//   - <prefix>:<run>:<label>:batches  list of MessagePack BatchReport, in batch order
//   - <prefix>:<run>:runs             hash label -> MessagePack RunReport
type RedisCollector struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCollector builds a collector. An empty prefix means DefaultKeyPrefix;
// ttl <= 0 keeps keys forever.
func NewRedisCollector(client *redis.Client, prefix string, ttl time.Duration) *RedisCollector {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	return &RedisCollector{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisCollector) batchesKey(runID, label string) string {
	return fmt.Sprintf("%s:%s:%s:batches", r.prefix, runID, label)
}

func (r *RedisCollector) runsKey(runID string) string {
	return fmt.Sprintf("%s:%s:runs", r.prefix, runID)
}

func (r *RedisCollector) ObserveBatch(ctx context.Context, report yabench.BatchReport) yaerrors.Error {
	payload, err := msgpack.Marshal(&report)
	if err != nil {
		return yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[REDIS] failed to marshal batch report",
		)
	}

	key := r.batchesKey(report.RunID, report.Label)

	if err := r.client.RPush(ctx, key, payload).Err(); err != nil {
		return yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			fmt.Sprintf("[REDIS] failed to push batch report to `%s`", key),
		)
	}

	return r.expire(ctx, key)
}

func (r *RedisCollector) ObserveRun(ctx context.Context, report yabench.RunReport) yaerrors.Error {
	payload, err := msgpack.Marshal(&report)
	if err != nil {
		return yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[REDIS] failed to marshal run report",
		)
	}

	key := r.runsKey(report.RunID)

	if err := r.client.HSet(ctx, key, report.Label, payload).Err(); err != nil {
		return yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			fmt.Sprintf("[REDIS] failed to set run report in `%s:%s`", key, report.Label),
		)
	}

	return r.expire(ctx, key)
}

// Batches returns every batch report recorded for runID and label, in batch order.
func (r *RedisCollector) Batches(
	ctx context.Context,
	runID string,
	label string,
) ([]yabench.BatchReport, yaerrors.Error) {
	key := r.batchesKey(runID, label)

	raw, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			fmt.Sprintf("[REDIS] failed to read batch reports from `%s`", key),
		)
	}

	reports := make([]yabench.BatchReport, len(raw))

	for i, item := range raw {
		if err := msgpack.Unmarshal([]byte(item), &reports[i]); err != nil {
			return nil, yaerrors.FromError(
				http.StatusInternalServerError,
				err,
				fmt.Sprintf("[REDIS] failed to decode batch report %d of `%s`", i, key),
			)
		}
	}

	return reports, nil
}

// Runs returns all run summaries of runID keyed by label.
func (r *RedisCollector) Runs(ctx context.Context, runID string) (map[string]yabench.RunReport, yaerrors.Error) {
	key := r.runsKey(runID)

	raw, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			fmt.Sprintf("[REDIS] failed to get run reports by `%s`", key),
		)
	}

	runs := make(map[string]yabench.RunReport, len(raw))

	for label, item := range raw {
		var report yabench.RunReport

		if err := msgpack.Unmarshal([]byte(item), &report); err != nil {
			return nil, yaerrors.FromError(
				http.StatusInternalServerError,
				err,
				fmt.Sprintf("[REDIS] failed to decode run report `%s:%s`", key, label),
			)
		}

		runs[label] = report
	}

	return runs, nil
}

func (r *RedisCollector) expire(ctx context.Context, key string) yaerrors.Error {
	if r.ttl <= 0 {
		return nil
	}

	if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
		return yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			fmt.Sprintf("[REDIS] failed to set ttl on `%s`", key),
		)
	}

	return nil
}
