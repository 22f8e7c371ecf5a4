package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gpos_engine/config"

	rotatelogs "github.com/lestrrat/go-file-rotatelogs"
	"github.com/mgutz/ansi"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

const (
	logFileName   = "gpos_engine.log"
	rotationTime  = 24 * time.Hour
	maxRotatedAge = 30 * 24 * time.Hour
)

var (
	logger  *logrus.Logger
	logOnce sync.Once
)

type consoleFormatter struct {
	inner logrus.TextFormatter
}

func (f *consoleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b, err := f.inner.Format(entry)
	if err != nil {
		return nil, err
	}
	switch entry.Level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return []byte(ansi.Color(string(b), "red")), nil
	case logrus.WarnLevel:
		return []byte(ansi.Color(string(b), "yellow")), nil
	}
	return b, nil
}

// GetLogger returns the process-wide logger, creating a console-only one if
// the log service was never started.
func GetLogger() *logrus.Logger {
	logOnce.Do(func() {
		if logger == nil {
			logger = newConsoleLogger()
		}
	})
	return logger
}

// StartLogService wires file rotation onto the logger using the configured
// log path. Must run after the config is loaded.
func StartLogService() (*logrus.Logger, error) {
	l := GetLogger()
	logPath := config.GetLogOutputPath()
	if logPath == "" {
		return l, nil
	}
	if err := os.MkdirAll(logPath, 0755); err != nil {
		return nil, fmt.Errorf("fail to create log dir %v, the error is %v", logPath, err)
	}
	writer, err := rotatelogs.New(
		filepath.Join(logPath, logFileName)+".%Y%m%d",
		rotatelogs.WithLinkName(filepath.Join(logPath, logFileName)),
		rotatelogs.WithRotationTime(rotationTime),
		rotatelogs.WithMaxAge(maxRotatedAge),
	)
	if err != nil {
		return nil, fmt.Errorf("fail to create rotate logs, the error is %v", err)
	}
	hook := lfshook.NewHook(lfshook.WriterMap{
		logrus.DebugLevel: writer,
		logrus.InfoLevel:  writer,
		logrus.WarnLevel:  writer,
		logrus.ErrorLevel: writer,
		logrus.FatalLevel: writer,
		logrus.PanicLevel: writer,
	}, &logrus.TextFormatter{TimestampFormat: "2006-01-02 15:04:05", FullTimestamp: true})
	l.AddHook(hook)
	return l, nil
}

func newConsoleLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stdout
	l.SetLevel(logrus.DebugLevel)
	l.Formatter = &consoleFormatter{inner: logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	}}
	return l
}
