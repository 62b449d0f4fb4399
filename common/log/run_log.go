package log

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const RunLogFileName = "progress.log"

// RunLogger manages the per-run progress.log files that capture the
// adaptation script's output.
type RunLogger struct {
	baseDir string
}

func NewRunLogger(baseDir string) *RunLogger {
	return &RunLogger{baseDir: baseDir}
}

// GetRunDir returns the directory path for a run's artifacts
func (l *RunLogger) GetRunDir(id *uuid.UUID) string {
	return filepath.Join(l.baseDir, id.String())
}

// InitRunDirectory creates the run directory if it doesn't exist
func (l *RunLogger) InitRunDirectory(id *uuid.UUID) error {
	dir := l.GetRunDir(id)
	return os.MkdirAll(dir, 0755)
}

// LogFilePath returns the path of the run's progress.log
func (l *RunLogger) LogFilePath(id *uuid.UUID) string {
	return filepath.Join(l.GetRunDir(id), RunLogFileName)
}

// WriteToLogFile appends a timestamped entry to the progress.log file
func (l *RunLogger) WriteToLogFile(id *uuid.UUID, content string) error {
	if err := l.InitRunDirectory(id); err != nil {
		return fmt.Errorf("failed to create run dir: %w", err)
	}
	f, err := os.OpenFile(l.LogFilePath(id), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	_, err = f.WriteString(fmt.Sprintf("[%s] %s", time.Now().Format(time.RFC3339), content))
	return err
}

// OpenLogFile opens the progress.log for raw appends, used to capture
// the child process output.
func (l *RunLogger) OpenLogFile(id *uuid.UUID) (*os.File, error) {
	if err := l.InitRunDirectory(id); err != nil {
		return nil, err
	}
	return os.OpenFile(l.LogFilePath(id), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// ReadLogFile reads the content of the progress.log file
func (l *RunLogger) ReadLogFile(id *uuid.UUID) (string, error) {
	data, err := os.ReadFile(l.LogFilePath(id))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CleanupRunDir removes the run directory
func (l *RunLogger) CleanupRunDir(id *uuid.UUID) error {
	return os.RemoveAll(l.GetRunDir(id))
}
