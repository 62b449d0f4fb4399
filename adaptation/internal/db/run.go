package db

import (
	"github.com/google/uuid"

	"github.com/763021701/ttt-plus-plus/adaptation/schema"
)

func (d *DB) AddRun(run *schema.Run) error {
	ret := d.db.Create(&run)
	return ret.Error
}

func (d *DB) GetRun(id *uuid.UUID) (schema.Run, error) {
	run := schema.Run{}
	ret := d.db.Where(&schema.Run{ID: id}).First(&run)
	return run, ret.Error
}

func (d *DB) GetNextRun(state ProgressState) (schema.Run, error) {
	run := schema.Run{}
	ret := d.db.Where(&schema.Run{Progress: state.String()}).Order("created_at").Limit(1).Find(&run)
	return run, ret.Error
}

func (d *DB) ListRuns(corruption string, latest bool) ([]schema.Run, error) {
	var runs []schema.Run
	query := d.db.Where(&schema.Run{Corruption: corruption})
	if latest {
		query = query.Order("created_at DESC").Limit(1)
	}
	ret := query.Find(&runs)
	return runs, ret.Error
}

func (d *DB) PendingRunCount() (int64, error) {
	var count int64
	ret := d.db.Model(&schema.Run{}).
		Where(&schema.Run{Progress: ProgressStateQueued.String()}).
		Count(&count)
	if ret.Error != nil {
		return 0, ret.Error
	}
	return count, nil
}

func (d *DB) UpdateRun(id *uuid.UUID, new schema.Run) error {
	ret := d.db.Where(&schema.Run{ID: id}).Where("progress <> ?", ProgressStateFailed.String()).Updates(new)
	return ret.Error
}

func (d *DB) GetRunProgress(id *uuid.UUID) (string, error) {
	run, err := d.GetRun(id)
	if err != nil {
		return "", err
	}
	return run.Progress, nil
}

func (d *DB) UpdateRunProgress(id *uuid.UUID, oldProgress, newProgress ProgressState) error {
	ret := d.db.Model(&schema.Run{}).Where(&schema.Run{ID: id, Progress: oldProgress.String()}).Update("progress", newProgress.String())
	return ret.Error
}

func (d *DB) MarkRunFailed(run *schema.Run) error {
	return d.UpdateRun(run.ID, schema.Run{
		Progress: ProgressStateFailed.String(),
	})
}

func (d *DB) MarkInProgressRunsAsFailed() error {
	ret := d.db.Model(&schema.Run{}).
		Where("progress <> ? AND progress <> ?", ProgressStateFailed.String(), ProgressStateFinished.String()).
		Update("progress", ProgressStateFailed.String())

	return ret.Error
}

func (d *DB) IncrementRetryCount(run *schema.Run) error {
	return d.UpdateRun(run.ID, schema.Run{
		NumRetries: run.NumRetries + 1,
	})
}

// HandleExecutorFailure re-queues the run until its retries are
// exhausted, then marks it failed. Returns whether the run was re-queued.
func (d *DB) HandleExecutorFailure(run *schema.Run, maxRetries uint, from, to ProgressState) (bool, error) {
	if run.NumRetries >= maxRetries {
		return false, d.MarkRunFailed(run)
	}

	if err := d.IncrementRetryCount(run); err != nil {
		return false, err
	}

	return true, d.UpdateRunProgress(run.ID, from, to)
}
