package log

import (
	"fmt"
	"os"
	"path/filepath"

	"postview/app/config"

	"github.com/sirupsen/logrus"
)

// VersionKey is the field carrying the build version
const VersionKey = "version"

// Logger is the application logger
type Logger struct {
	*logrus.Logger
	logFile *os.File
}

// New returns a text logger writing to stderr at info level
func New() *Logger {
	l := &Logger{Logger: logrus.New()}
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Init configures level, format and output. The returned func closes the log file, if any.
func (l *Logger) Init(c *config.Logger) (func(), error) {
	if err := l.SetLevelName(c.Level); err != nil {
		return nil, err
	}

	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch c.Output {
	case "stdout":
		l.SetOutput(os.Stdout)
	case "file":
		if c.OutputFile == "" {
			return nil, fmt.Errorf("logger output is file but no output_file is set")
		}
		if err := l.openFile(c.OutputFile); err != nil {
			return nil, err
		}
	default:
		l.SetOutput(os.Stderr)
	}

	return func() {
		if l.logFile != nil {
			_ = l.logFile.Close()
			l.logFile = nil
		}
	}, nil
}

// SetLevelName sets the level from its name, e.g. "debug"
func (l *Logger) SetLevelName(name string) error {
	if name == "" {
		name = "info"
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	l.SetLevel(level)
	return nil
}

// WithVersion returns an entry tagged with the build version
func (l *Logger) WithVersion(version string) *logrus.Entry {
	return l.WithField(VersionKey, version)
}

func (l *Logger) openFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if l.logFile != nil {
		_ = l.logFile.Close()
	}
	l.logFile = f
	l.SetOutput(f)
	return nil
}
