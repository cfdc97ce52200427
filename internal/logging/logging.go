package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Victoradukwu/FlightsHub/internal/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger from config.
func New(cfg config.LoggingConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	}

	var output io.Writer = os.Stdout
	if cfg.Output == "file" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		output = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	}
	logger.SetOutput(output)

	return logger, nil
}

// TemporalLogger adapts a logrus logger to the Temporal SDK log.Logger
// interface (key/value pairs after the message).
type TemporalLogger struct {
	entry *logrus.Entry
}

func NewTemporalLogger(l logrus.FieldLogger) *TemporalLogger {
	return &TemporalLogger{entry: l.WithField("component", "temporal")}
}

func (t *TemporalLogger) Debug(msg string, keyvals ...interface{}) {
	t.entry.WithFields(fields(keyvals)).Debug(msg)
}

func (t *TemporalLogger) Info(msg string, keyvals ...interface{}) {
	t.entry.WithFields(fields(keyvals)).Info(msg)
}

func (t *TemporalLogger) Warn(msg string, keyvals ...interface{}) {
	t.entry.WithFields(fields(keyvals)).Warn(msg)
}

func (t *TemporalLogger) Error(msg string, keyvals ...interface{}) {
	t.entry.WithFields(fields(keyvals)).Error(msg)
}

func fields(keyvals []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if i+1 < len(keyvals) {
			f[key] = keyvals[i+1]
		} else {
			f[key] = "(missing)"
		}
	}
	return f
}
