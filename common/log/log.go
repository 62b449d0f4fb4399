package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// LoggerConfig controls the process logger. Format is "text" or "json",
// Level is any logrus level name, Path is an optional log file (stderr
// when empty).
type LoggerConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
	Path   string `yaml:"path"`
}

type Logger interface {
	logrus.FieldLogger
}

func GetLogger(conf *LoggerConfig) (Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(conf.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	switch conf.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if conf.Path != "" {
		file, err := os.OpenFile(conf.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		logger.SetOutput(file)
	}

	return logger, nil
}
