package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-bootstrapper/core/status"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

const (
	RunRunning = "running"
	RunDone    = "done"
	RunFailed  = "failed"
)

// Run is one bootstrap run.
type Run struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Instance   string     `gorm:"size:255;index" json:"instance"`
	SpecKey    string     `gorm:"size:512" json:"specKey,omitempty"`
	Status     string     `gorm:"size:16;index" json:"status"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	DurationMs int64      `json:"durationMs"`
	Error      string     `gorm:"type:text" json:"error,omitempty"`

	Areas    []AreaProgress `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"areas,omitempty"`
	Warnings []AreaWarning  `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"warnings,omitempty"`
}

// AreaProgress is the last known progress of one area of a run.
type AreaProgress struct {
	ID       uint    `gorm:"primaryKey" json:"-"`
	RunID    string  `gorm:"size:36;index" json:"-"`
	Area     string  `gorm:"size:64" json:"area"`
	Progress float64 `json:"progress"`
}

// AreaWarning is one warning recorded for an area of a run.
type AreaWarning struct {
	ID      uint   `gorm:"primaryKey" json:"-"`
	RunID   string `gorm:"size:36;index" json:"-"`
	Area    string `gorm:"size:64" json:"area"`
	Message string `gorm:"type:text" json:"message"`
	Cause   string `gorm:"type:text" json:"cause,omitempty"`
}

// Journal persists runs and their status snapshots.
type Journal struct {
	db *gorm.DB
}

// NewJournal creates a journal on db.
func NewJournal(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

// Migrate creates or updates the journal tables.
func (j *Journal) Migrate() error {
	return j.db.AutoMigrate(&Run{}, &AreaProgress{}, &AreaWarning{})
}

// StartRun records a new running run.
func (j *Journal) StartRun(ctx context.Context, instance, specKey string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Instance:  instance,
		SpecKey:   specKey,
		Status:    RunRunning,
		StartedAt: time.Now(),
	}
	if err := j.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}
	return run, nil
}

// RecordSnapshot replaces the stored progress and warnings of a run with snap.
func (j *Journal) RecordSnapshot(ctx context.Context, runID string, snap status.Snapshot) error {
	areas := make([]AreaProgress, 0, len(status.Areas()))
	var warnings []AreaWarning
	for _, a := range status.Areas() {
		st := snap.Area(a)
		areas = append(areas, AreaProgress{RunID: runID, Area: string(a), Progress: st.Progress})
		for _, w := range st.Warnings {
			warnings = append(warnings, AreaWarning{RunID: runID, Area: string(a), Message: w.Message, Cause: w.Cause})
		}
	}

	return j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", runID).Delete(&AreaProgress{}).Error; err != nil {
			return fmt.Errorf("clear progress: %w", err)
		}
		if err := tx.Create(&areas).Error; err != nil {
			return fmt.Errorf("write progress: %w", err)
		}
		if err := tx.Where("run_id = ?", runID).Delete(&AreaWarning{}).Error; err != nil {
			return fmt.Errorf("clear warnings: %w", err)
		}
		if len(warnings) == 0 {
			return nil
		}
		if err := tx.Create(&warnings).Error; err != nil {
			return fmt.Errorf("write warnings: %w", err)
		}
		return nil
	})
}

// FinishRun marks a run done or failed.
func (j *Journal) FinishRun(ctx context.Context, runID string, finishedAt time.Time, duration time.Duration, runErr error) error {
	updates := map[string]any{
		"status":      RunDone,
		"finished_at": finishedAt,
		"duration_ms": duration.Milliseconds(),
	}
	if runErr != nil {
		updates["status"] = RunFailed
		updates["error"] = runErr.Error()
	}

	res := j.db.WithContext(ctx).Model(&Run{}).Where("id = ?", runID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("finish run: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// ListRuns returns the latest runs, newest first, without areas and warnings.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []Run
	if err := j.db.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a run with its areas and warnings.
func (j *Journal) GetRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	err := j.db.WithContext(ctx).
		Preload("Areas").
		Preload("Warnings").
		Where("id = ?", runID).
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}
