package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gammazero/workerpool"

	"github.com/763021701/ttt-plus-plus/adaptation/config"
	"github.com/763021701/ttt-plus-plus/adaptation/internal/db"
	"github.com/763021701/ttt-plus-plus/adaptation/schema"
	"github.com/763021701/ttt-plus-plus/common/errors"
	"github.com/763021701/ttt-plus-plus/common/log"
)

var (
	ErrNoRunAvailable = errors.New("no run found")
	ErrRunTimeout     = errors.New("run timeout reached")
)

type RunProcessor interface {
	GetRunTimeout(ctx context.Context) (time.Duration, error)
	HandleNoRun(ctx context.Context) error
	Execute(ctx context.Context, run *schema.Run, runDir string) error
	HandleExecuteFailure(err error, run *schema.Run) (bool, error)
}

type RunStates struct {
	Initial      db.ProgressState
	Intermediate db.ProgressState
	Final        db.ProgressState
}

type Service struct {
	mu         sync.RWMutex
	workerPool *workerpool.WorkerPool

	name   string
	states RunStates

	pollInterval time.Duration

	config    *config.Config
	db        *db.DB
	runLogger *log.RunLogger
	logger    log.Logger

	runProcessor RunProcessor
}

func NewService(
	name string,
	states RunStates,
	pollInterval time.Duration,
	cfg *config.Config,
	database *db.DB,
	runLogger *log.RunLogger,
	logger log.Logger,
	pool *workerpool.WorkerPool,
) *Service {
	return &Service{
		name:         name,
		states:       states,
		pollInterval: pollInterval,
		config:       cfg,
		db:           database,
		runLogger:    runLogger,
		logger:       logger,
		workerPool:   pool,
	}
}

func (s *Service) Start(ctx context.Context) error {
	go func() {
		s.logger.Info("service started")
		defer s.logger.Info("service stopped")

		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run, err := s.fetchNextRun(ctx)
				if err != nil {
					if errors.Is(err, ErrNoRunAvailable) {
						s.runProcessor.HandleNoRun(ctx)
					} else {
						s.logger.Warnf("failed to fetch run: %v", err)
					}

					continue
				}

				if err := s.queueRun(ctx, run); err != nil {
					s.logger.Warnf("failed to queue run: %v", err)
				}
			}
		}
	}()

	return nil
}

func (s *Service) fetchNextRun(ctx context.Context) (*schema.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.db.GetNextRun(s.states.Initial)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get run from db")
	}

	if run.ID == nil {
		return nil, ErrNoRunAvailable
	}

	if err := s.db.UpdateRunProgress(run.ID, s.states.Initial, s.states.Intermediate); err != nil {
		return nil, errors.Wrap(err, "failed to update run progress")
	}

	s.logger.Infof("fetched next run: %s", run.ID)
	return &run, nil
}

func (s *Service) queueRun(ctx context.Context, run *schema.Run) error {
	if s.workerPool.WaitingQueueSize() > 0 {
		s.logger.Infof("worker pool queue size: %d", s.workerPool.WaitingQueueSize())
	}

	s.workerPool.Submit(func() {
		if err := s.processRun(ctx, run); err != nil {
			s.logger.Errorf("run processing failed: %v", err)
		}
	})

	return nil
}

func (s *Service) processRun(ctx context.Context, run *schema.Run) error {
	s.logger.Infof("processing run: %s", run.ID)

	if err := s.runWithTimeout(ctx, run); err != nil {
		if err := s.handleRunFailure(err, run); err != nil {
			s.logger.Errorf("failed to handle run failure: %v", err)
		}

		return err
	}

	return s.markRunCompleted(run)
}

func (s *Service) runWithTimeout(ctx context.Context, run *schema.Run) error {
	timeout, err := s.runProcessor.GetRunTimeout(ctx)
	if err != nil {
		return err
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.execute(ctxWithTimeout, run)
	}()

	select {
	case err := <-done:
		if err != nil {
			return err
		}

		s.logger.Infof("run %s completed", run.ID)
		return nil
	case <-ctxWithTimeout.Done():
		return ErrRunTimeout
	}
}

func (s *Service) execute(ctxWithTimeout context.Context, run *schema.Run) error {
	progress, err := s.db.GetRunProgress(run.ID)
	if err != nil {
		return err
	}

	if progress != s.states.Intermediate.String() {
		return fmt.Errorf("run %s is not in the expected state: %s", run.ID, progress)
	}

	return s.runProcessor.Execute(ctxWithTimeout, run, s.runLogger.GetRunDir(run.ID))
}

func (s *Service) handleRunFailure(err error, run *schema.Run) error {
	if err := s.runLogger.WriteToLogFile(run.ID, fmt.Sprintf("Error executing run %v: %v\n", run.ID, err)); err != nil {
		s.logger.Errorf("Write into run log failed: %v", err)
	}

	retry, err := s.runProcessor.HandleExecuteFailure(err, run)
	if retry {
		if err := s.runLogger.WriteToLogFile(run.ID, fmt.Sprintf("Retrying run %v\n", run.ID)); err != nil {
			s.logger.Errorf("Write into run log failed: %v", err)
		}
	}

	return err
}

func (s *Service) markRunCompleted(run *schema.Run) error {
	if err := s.db.UpdateRunProgress(run.ID, s.states.Intermediate, s.states.Final); err != nil {
		return err
	}

	return s.runLogger.WriteToLogFile(run.ID, fmt.Sprintf("Evaluation for %v run %s finished successfully\n", s.name, run.ID))
}
