package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide structured logger.
var Logger = logrus.New()

// Options control where and how log entries are written.
type Options struct {
	Level  string
	Format string
	File   string
}

// Init configures Logger. Entries always go to stdout; when File is set they
// are also written to a rotated log file.
func Init(opts Options) error {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	if opts.Format == "json" {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.File == "" {
		Logger.SetOutput(os.Stdout)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
		return err
	}

	logFile := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	Logger.SetOutput(io.MultiWriter(os.Stdout, logFile))
	return nil
}
