package yatelemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/YaCodeDev/GoYaRSABench/yabench"
	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BatchRecord is one measured batch.
type BatchRecord struct {
	ID           uint   `gorm:"primaryKey"`
	RunID        string `gorm:"index:idx_batch_run_label;size:64"`
	Label        string `gorm:"index:idx_batch_run_label;size:255"`
	BatchIndex   int
	Size         int
	ElapsedNanos int64
	PeakMemory   int64
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// RunRecord is the summary of one labelled run. A repeated report for the same
// run and label replaces the previous totals.
type RunRecord struct {
	RunID        string `gorm:"primaryKey;size:64"`
	Label        string `gorm:"primaryKey;size:255"`
	Batches      int
	Units        int
	ElapsedNanos int64
	PeakMemory   int64
	StartedAt    time.Time
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

var runUpdateColumns = []string{
	"batches",
	"units",
	"elapsed_nanos",
	"peak_memory",
	"started_at",
	"updated_at",
}

// GormCollector implements yabench.Collector on a GORM connection.
type GormCollector struct {
	poolDB *gorm.DB
}

// NewGormCollector runs the migrations for BatchRecord and RunRecord.
func NewGormCollector(poolDB *gorm.DB) (*GormCollector, yaerrors.Error) {
	if err := poolDB.AutoMigrate(&BatchRecord{}, &RunRecord{}); err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[GORM] failed to make auto migrate",
		)
	}

	return &GormCollector{poolDB: poolDB}, nil
}

func (g *GormCollector) ObserveBatch(ctx context.Context, report yabench.BatchReport) yaerrors.Error {
	record := BatchRecord{
		RunID:        report.RunID,
		Label:        report.Label,
		BatchIndex:   report.Index,
		Size:         report.Size,
		ElapsedNanos: report.Elapsed.Nanoseconds(),
		PeakMemory:   int64(report.PeakMemory), //nolint:gosec
	}

	if err := g.poolDB.WithContext(ctx).Create(&record).Error; err != nil {
		return yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[GORM] failed to insert batch record",
		)
	}

	return nil
}

func (g *GormCollector) ObserveRun(ctx context.Context, report yabench.RunReport) yaerrors.Error {
	record := RunRecord{
		RunID:        report.RunID,
		Label:        report.Label,
		Batches:      report.Batches,
		Units:        report.Units,
		ElapsedNanos: report.TotalElapsed.Nanoseconds(),
		PeakMemory:   int64(report.TotalPeakMemory), //nolint:gosec
		StartedAt:    report.StartedAt,
	}

	if err := g.poolDB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "run_id"}, {Name: "label"}},
			DoUpdates: clause.AssignmentColumns(runUpdateColumns),
		}).
		Create(&record).Error; err != nil {
		return yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[GORM] failed to upsert run record",
		)
	}

	return nil
}

// Batches returns the batch records of runID and label ordered by batch index.
func (g *GormCollector) Batches(ctx context.Context, runID, label string) ([]BatchRecord, yaerrors.Error) {
	var records []BatchRecord

	if err := g.poolDB.WithContext(ctx).
		Where(&BatchRecord{RunID: runID, Label: label}).
		Order("batch_index").
		Find(&records).Error; err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[GORM] failed to fetch batch records",
		)
	}

	return records, nil
}

// Runs returns every run summary recorded under runID ordered by label.
func (g *GormCollector) Runs(ctx context.Context, runID string) ([]RunRecord, yaerrors.Error) {
	var records []RunRecord

	if err := g.poolDB.WithContext(ctx).
		Where(&RunRecord{RunID: runID}).
		Order("label").
		Find(&records).Error; err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[GORM] failed to fetch run records",
		)
	}

	return records, nil
}
