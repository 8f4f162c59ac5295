package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

var (
	loggerMu   sync.RWMutex
	logger     *logrus.Logger
	fileLogger *FileLogger
)

// NewLogger builds a logrus logger from cfg. Unknown levels fall back to info.
func NewLogger(cfg *Config) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.LogFormat == "text" {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "@timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}
	return l
}

// InitLogger installs the process logger returned by L.
func InitLogger(cfg *Config) error {
	l := NewLogger(cfg)

	var fl *FileLogger
	if cfg.ExportToFile && cfg.LogsFilePath != "" {
		var err error
		fl, err = NewFileLogger(cfg.LogsFilePath, cfg)
		if err != nil {
			return err
		}
		l.AddHook(fl)
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if fileLogger != nil {
		_ = fileLogger.Close()
	}
	logger, fileLogger = l, fl
	return nil
}

// FileLogger is a logrus hook appending every entry to a JSON lines file.
type FileLogger struct {
	mu      sync.Mutex
	file    *os.File
	encoder *jsoniter.Encoder
	service logrus.Fields
}

// NewFileLogger opens (or creates) filePath for appending.
func NewFileLogger(filePath string, cfg *Config) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &FileLogger{
		file:    file,
		encoder: jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(file),
		service: logrus.Fields{
			"service.name":    cfg.ServiceName,
			"service.version": cfg.ServiceVersion,
			"environment":     cfg.Environment,
		},
	}, nil
}

// Levels implements logrus.Hook.
func (f *FileLogger) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (f *FileLogger) Fire(entry *logrus.Entry) error {
	data := make(map[string]interface{}, len(entry.Data)+len(f.service)+3)
	for k, v := range f.service {
		data[k] = v
	}
	for k, v := range entry.Data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		data[k] = v
	}
	data["@timestamp"] = entry.Time.Format(timestampFormat)
	data["level"] = entry.Level.String()
	data["message"] = entry.Message

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.encoder.Encode(data)
}

// Close closes the log file.
func (f *FileLogger) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}

// L returns the process logger, or the logrus standard logger before
// InitLogger ran.
func L() *logrus.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger
}

// WithContext returns an entry carrying the trace and span ids of the span
// in ctx, if any.
func WithContext(ctx context.Context) *logrus.Entry {
	return entryWithTrace(L().WithContext(ctx), ctx)
}

func entryWithTrace(entry *logrus.Entry, ctx context.Context) *logrus.Entry {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return entry
	}
	return entry.WithFields(logrus.Fields{
		"trace.id": sc.TraceID().String(),
		"span.id":  sc.SpanID().String(),
	})
}

// CloseLogger closes the log file opened by InitLogger.
func CloseLogger() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if fileLogger == nil {
		return nil
	}
	err := fileLogger.Close()
	fileLogger = nil
	return err
}
