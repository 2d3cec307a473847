package runner

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/YaCodeDev/GoYaRSABench/config"
	"github.com/YaCodeDev/GoYaRSABench/yabackoff"
	"github.com/YaCodeDev/GoYaRSABench/yabench"
	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/YaCodeDev/GoYaRSABench/yalogger"
	"github.com/YaCodeDev/GoYaRSABench/yatelemetry"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// Sinks is the collector set of one process together with the connections it owns.
type Sinks struct {
	Collector yabench.Collector

	closers []func() error
}

// OpenSinks always logs reports and additionally records them in Redis and in
// a sqlite database when cfg names them. Connections are checked up front.
func OpenSinks(ctx context.Context, cfg *config.Bench, log yalogger.Logger) (*Sinks, yaerrors.Error) {
	if log == nil {
		log = yalogger.NewBaseLogger(nil).NewLogger()
	}

	sinks := &Sinks{}
	collectors := yabench.MultiCollector{yabench.NewLogCollector(log)}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		sinks.closers = append(sinks.closers, client.Close)

		backoff := yabackoff.NewExponential(cfg.Redis.ConnectBackoff, 0, 0)

		err := yabackoff.Retry(ctx, cfg.Redis.ConnectAttempts, backoff, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		if err != nil {
			sinks.Close()

			return nil, err.WrapWithLog("[Sinks] redis at "+cfg.Redis.Addr+" is unreachable", log)
		}

		collectors = append(collectors, yatelemetry.NewRedisCollector(client, yatelemetry.DefaultKeyPrefix, cfg.Redis.TTL))

		log.Infof("Recording reports in redis at %s", cfg.Redis.Addr)
	}

	if cfg.SqlitePath != "" {
		sqlDB, err := sql.Open("sqlite", cfg.SqlitePath)
		if err != nil {
			sinks.Close()

			return nil, yaerrors.FromErrorWithLog(
				http.StatusInternalServerError,
				err,
				"[Sinks] failed to open "+cfg.SqlitePath,
				log,
			)
		}

		sinks.closers = append(sinks.closers, sqlDB.Close)

		// sqlite serializes writers anyway.
		sqlDB.SetMaxOpenConns(1)

		poolDB, err := gorm.Open(sqlite.Dialector{Conn: sqlDB, DriverName: "sqlite"}, &gorm.Config{})
		if err != nil {
			sinks.Close()

			return nil, yaerrors.FromErrorWithLog(
				http.StatusInternalServerError,
				err,
				"[Sinks] failed to initialize gorm",
				log,
			)
		}

		gormCollector, yaErr := yatelemetry.NewGormCollector(poolDB)
		if yaErr != nil {
			sinks.Close()

			return nil, yaErr.WrapWithLog("[Sinks] failed to prepare sqlite sink", log)
		}

		collectors = append(collectors, gormCollector)

		log.Infof("Recording reports in %s", cfg.SqlitePath)
	}

	sinks.Collector = collectors

	return sinks, nil
}

// Close releases every connection in reverse order of opening.
func (s *Sinks) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}

	s.closers = nil
}
