package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It writes text until Init is called.
var Log = logrus.New()

// Init configures Log. format is "json" or "text".
func Init(level, format string, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	Log.SetOutput(out)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		Log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	default:
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}
}

// With returns an entry carrying the given fields.
func With(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}

func Infof(format string, args ...any)  { Log.Infof(format, args...) }
func Warnf(format string, args ...any)  { Log.Warnf(format, args...) }
func Errorf(format string, args ...any) { Log.Errorf(format, args...) }
func Debugf(format string, args ...any) { Log.Debugf(format, args...) }
func Fatalf(format string, args ...any) { Log.Fatalf(format, args...) }
