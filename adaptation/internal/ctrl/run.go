package ctrl

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/763021701/ttt-plus-plus/adaptation/internal/db"
	"github.com/763021701/ttt-plus-plus/adaptation/internal/launcher"
	"github.com/763021701/ttt-plus-plus/adaptation/internal/results"
	"github.com/763021701/ttt-plus-plus/adaptation/monitor"
	"github.com/763021701/ttt-plus-plus/adaptation/schema"
	"github.com/763021701/ttt-plus-plus/common/errors"
)

var ErrQueueFull = errors.New("run queue is full")

// CreateRun resolves the submitted parameters and queues the run. The
// resolution rule is the historical one: unless both corruption and
// method were supplied, all three tunable fields take their defaults.
func (c *Ctrl) CreateRun(run *schema.Run) error {
	pending, err := c.db.PendingRunCount()
	if err != nil {
		return errors.Wrap(err, "count pending runs")
	}
	if pending >= int64(c.config.MaxRunQueueSize) {
		return ErrQueueFull
	}

	var args []string
	if run.Corruption != "" && run.Method != "" {
		args = []string{run.Corruption, run.Method}
		if run.NumSample != "" {
			args = append(args, run.NumSample)
		}
	}
	resolved := launcher.Resolve(args)
	run.Corruption = resolved.Corruption
	run.Method = resolved.Method
	run.NumSample = resolved.NumSample

	id := uuid.New()
	run.ID = &id
	run.Progress = db.ProgressStateQueued.String()

	if err := c.runLogger.InitRunDirectory(run.ID); err != nil {
		return errors.Wrap(err, "initialize run directory")
	}
	if err := c.runLogger.WriteToLogFile(run.ID, fmt.Sprintf("queued run %s: %s", run.ID, resolved.Summary())); err != nil {
		return errors.Wrap(err, "initialize run log")
	}

	if err := c.db.AddRun(run); err != nil {
		return errors.Wrap(err, "store run")
	}

	monitor.RunQueuedCount.Inc()
	c.logger.Infof("queued run %s (corruption=%s method=%s)", run.ID, run.Corruption, run.Method)
	return nil
}

func (c *Ctrl) GetRun(id *uuid.UUID) (schema.Run, error) {
	return c.db.GetRun(id)
}

func (c *Ctrl) ListRuns(corruption string, latest bool) ([]schema.Run, error) {
	return c.db.ListRuns(corruption, latest)
}

func (c *Ctrl) GetRunLog(id *uuid.UUID) (string, error) {
	return c.runLogger.ReadLogFile(id)
}

// GetRunResult returns the parsed result of a finished run, from the
// snapshot when present and the run log otherwise. Parsed results are
// cached.
func (c *Ctrl) GetRunResult(id *uuid.UUID) (*results.RunResult, error) {
	if cached, ok := c.resultCache.Get(id.String()); ok {
		return cached.(*results.RunResult), nil
	}

	result, err := results.Load(c.runLogger.GetRunDir(id))
	if err != nil {
		content, readErr := c.runLogger.ReadLogFile(id)
		if readErr != nil {
			return nil, errors.Wrap(readErr, "read run log")
		}
		result, err = results.ParseString(content)
		if err != nil {
			return nil, errors.Wrap(err, "parse run output")
		}
	}

	c.resultCache.Set(id.String(), result, cache.DefaultExpiration)
	return result, nil
}
