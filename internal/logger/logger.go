// Package logger provides the Enter/Exit/Tracef-style call-site API used
// throughout this repository, backed by github.com/sirupsen/logrus.
package logger

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// MiniLogger mirrors the call-site conventions seen across the package:
// Enter()/Exit() bracket a function body, Debugf/Tracef/Warningf/Errorf
// format like fmt.Sprintf, and Errorf both logs and returns an error so
// call sites can write `return getLogger().Errorf(...)`.
type MiniLogger struct {
	entry *logrus.Entry
	level logrus.Level
}

var (
	once     sync.Once
	instance *MiniLogger
)

// Log returns the process-wide logger instance, initializing it on first use.
func Log() *MiniLogger {
	once.Do(func() {
		base := logrus.New()
		base.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
			DisableColors:    false,
		})
		instance = &MiniLogger{entry: logrus.NewEntry(base), level: logrus.InfoLevel}
	})
	return instance
}

// SetLevel adjusts verbosity (Trace < Debug < Info < Warn < Error).
func (l *MiniLogger) SetLevel(level logrus.Level) {
	l.level = level
	l.entry.Logger.SetLevel(level)
}

func callerName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return "?"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "?"
	}
	parts := strings.Split(fn.Name(), ".")
	return parts[len(parts)-1]
}

// Enter logs function entry along with any arguments of interest.
func (l *MiniLogger) Enter(args ...interface{}) {
	name := callerName(2)
	if len(args) == 0 {
		l.entry.Tracef("--> %s()", name)
		return
	}
	l.entry.Tracef("--> %s(%v)", name, args)
}

// Exit logs function exit, optionally including the returned error.
func (l *MiniLogger) Exit(args ...interface{}) {
	name := callerName(2)
	if len(args) == 0 {
		l.entry.Tracef("<-- %s()", name)
		return
	}
	l.entry.Tracef("<-- %s(%v)", name, args)
}

func (l *MiniLogger) Tracef(format string, args ...interface{}) {
	l.entry.Tracef(format, args...)
}

func (l *MiniLogger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *MiniLogger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *MiniLogger) Info(args ...interface{}) {
	l.entry.Info(args...)
}

func (l *MiniLogger) Warningf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *MiniLogger) Warning(args ...interface{}) {
	l.entry.Warn(args...)
}

// Errorf logs at error level and returns the formatted error so callers
// can `return getLogger().Errorf(...)` in one line.
func (l *MiniLogger) Errorf(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	l.entry.Error(err)
	return err
}

func (l *MiniLogger) Error(err error) error {
	l.entry.Error(err)
	return err
}

// FormatStruct renders a value for debug logging without forcing every
// call site to import fmt.
func (l *MiniLogger) FormatStruct(v interface{}) string {
	return fmt.Sprintf("%+v", v)
}
