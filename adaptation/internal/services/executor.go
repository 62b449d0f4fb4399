package services

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/sirupsen/logrus"

	"github.com/763021701/ttt-plus-plus/adaptation/config"
	constant "github.com/763021701/ttt-plus-plus/adaptation/const"
	"github.com/763021701/ttt-plus-plus/adaptation/internal/db"
	"github.com/763021701/ttt-plus-plus/adaptation/internal/launcher"
	"github.com/763021701/ttt-plus-plus/adaptation/internal/results"
	"github.com/763021701/ttt-plus-plus/adaptation/monitor"
	"github.com/763021701/ttt-plus-plus/adaptation/schema"
	"github.com/763021701/ttt-plus-plus/common/errors"
	"github.com/763021701/ttt-plus-plus/common/log"
)

const (
	ExecutorModeContainer = "container"

	stopEpoch = 25
)

type Executor struct {
	*Service
}

func NewExecutor(
	database *db.DB,
	cfg *config.Config,
	runLogger *log.RunLogger,
	logger log.Logger,
) (*Executor, error) {
	srv := &Executor{
		Service: NewService(
			"executor",
			RunStates{
				Initial:      db.ProgressStateQueued,
				Intermediate: db.ProgressStateRunning,
				Final:        db.ProgressStateFinished,
			},
			time.Duration(cfg.PollIntervalSecs)*time.Second,
			cfg,
			database,
			runLogger,
			logger.WithFields(logrus.Fields{"name": "executor"}),
			workerpool.New(cfg.RunWorkerCount),
		),
	}
	srv.runProcessor = srv

	return srv, nil
}

func (e *Executor) GetRunTimeout(ctx context.Context) (time.Duration, error) {
	return time.Duration(e.config.RunTimeoutSecs) * time.Second, nil
}

func (e *Executor) HandleNoRun(ctx context.Context) error {
	return nil
}

func (e *Executor) HandleExecuteFailure(err error, run *schema.Run) (bool, error) {
	monitor.RunFailedCount.Inc()
	return e.db.HandleExecutorFailure(run, e.config.MaxExecutorRetriesPerRun, e.states.Intermediate, e.states.Initial)
}

func (e *Executor) Execute(ctx context.Context, run *schema.Run, runDir string) error {
	monitor.RunStartedCount.Inc()

	if e.config.ExecutorMode == ExecutorModeContainer {
		if err := e.handleContainerLifecycle(ctx, run, runDir); err != nil {
			return err
		}
	} else {
		if err := e.launchProcess(ctx, run, runDir); err != nil {
			return err
		}
	}

	if err := e.collectResult(run, runDir); err != nil {
		return err
	}

	monitor.RunCompletedCount.Inc()
	return nil
}

// evaluationConfig maps a stored run record to the script's flag set. The
// stored fields are forwarded verbatim; the constants come from config.
func evaluationConfig(cfg *config.Config, run *schema.Run, runDir string) launcher.RunConfig {
	d := cfg.Defaults
	return launcher.RunConfig{
		Dataset:      d.Dataset,
		Corruption:   run.Corruption,
		Level:        d.Level,
		Method:       run.Method,
		NumSample:    run.NumSample,
		LearningRate: d.LearningRate,
		BatchSize:    d.BatchSize,
		Workers:      d.Workers,
		DataRoot:     cfg.DataRoot,
		ResumePath:   filepath.Join("results", d.Dataset+"_joint_resnet50"),
		OutputPath:   filepath.Join(runDir, "output"),
	}
}

func scriptFor(method string) string {
	if script, ok := constant.SCRIPT_MAP[method]; ok {
		return script
	}
	return launcher.DefaultScript
}

func (e *Executor) launchProcess(ctx context.Context, run *schema.Run, runDir string) error {
	logFile, err := e.runLogger.OpenLogFile(run.ID)
	if err != nil {
		return errors.Wrap(err, "open run log")
	}
	defer logFile.Close()

	if err := os.MkdirAll(filepath.Join(runDir, "output"), 0755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	l := &launcher.Launcher{
		Python: e.config.Python,
		Script: scriptFor(run.Method),
		Dir:    e.config.ScriptDir,
		Stdout: logFile,
		Stderr: logFile,
	}

	cfg := evaluationConfig(e.config, run, runDir)
	e.logger.Infof("launching %s for run %s", l.Script, run.ID)

	return l.Launch(ctx, cfg)
}

func (e *Executor) collectResult(run *schema.Run, runDir string) error {
	content, err := e.runLogger.ReadLogFile(run.ID)
	if err != nil {
		return errors.Wrap(err, "read run log")
	}

	result, err := results.ParseString(content)
	if err != nil {
		return errors.Wrap(err, "parse run output")
	}

	if err := result.Save(runDir); err != nil {
		return errors.Wrap(err, "save result snapshot")
	}

	stats := result.Stats()
	e.logger.Infof("run %s: %d epochs, final error %.2f%%, best error %.2f%%",
		run.ID, stats.Epochs, stats.FinalError, stats.BestError)

	// stopEpoch matches the scripts' early-stop window; the series
	// starts at epoch 1, the epoch-0 record is the baseline evaluation
	errs := result.AdaptationErrors()
	if !result.Terminated && results.ShouldStop(errs, len(errs), stopEpoch) {
		e.logger.Warnf("run %s plateaued but the script did not report termination", run.ID)
	}
	return nil
}
