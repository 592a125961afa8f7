package app

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
	Debugf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}
func (NoopLogger) Debugf(component, format string, args ...interface{}) {}

// LogrusLogger tags every entry with a component field.
type LogrusLogger struct{ log *logrus.Logger }

// NewLogrusLogger writes text entries with full timestamps to w. Unknown
// level names fall back to debug.
func NewLogrusLogger(w io.Writer, level string) LogrusLogger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.DebugLevel
	}
	l.SetLevel(lvl)
	return LogrusLogger{log: l}
}

func (l LogrusLogger) Infof(component string, format string, args ...interface{}) {
	l.log.WithField("component", component).Infof(format, args...)
}

func (l LogrusLogger) Errorf(component string, format string, args ...interface{}) {
	l.log.WithField("component", component).Errorf(format, args...)
}

func (l LogrusLogger) Debugf(component string, format string, args ...interface{}) {
	l.log.WithField("component", component).Debugf(format, args...)
}
