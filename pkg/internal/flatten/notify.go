package flatten

import (
	"fmt"

	"github.com/joeydtaylor/sideband/pkg/internal/types"
)

// NotifyLoggers sends a formatted log message to all attached loggers,
// facilitating unified logging across various components of the library.
func (f *Flattener) NotifyLoggers(level types.LogLevel, format string, args ...interface{}) {
	f.loggersLock.Lock()
	defer f.loggersLock.Unlock()
	notify(f.loggers, level, format, args...)
}

// NotifyLoggers sends a formatted log message to all attached loggers,
// facilitating unified logging across various components of the library.
func (u *Unflattener) NotifyLoggers(level types.LogLevel, format string, args ...interface{}) {
	u.loggersLock.Lock()
	defer u.loggersLock.Unlock()
	notify(u.loggers, level, format, args...)
}

func notify(loggers []types.Logger, level types.LogLevel, format string, args ...interface{}) {
	if len(loggers) == 0 {
		return
	}
	msg := fmt.Sprintf(format, args...)
	for _, logger := range loggers {
		if logger == nil {
			continue // Skip if the logger is nil.
		}
		switch level {
		case types.DebugLevel:
			logger.Debug(msg)
		case types.InfoLevel:
			logger.Info(msg)
		case types.WarnLevel:
			logger.Warn(msg)
		case types.ErrorLevel:
			logger.Error(msg)
		case types.DPanicLevel:
			logger.DPanic(msg)
		case types.PanicLevel:
			logger.Panic(msg)
		case types.FatalLevel:
			logger.Fatal(msg)
		}
	}
}
