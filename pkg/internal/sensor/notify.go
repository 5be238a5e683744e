package sensor

import (
	"fmt"

	"github.com/joeydtaylor/sideband/pkg/internal/types"
)

// NotifyLoggers sends a formatted log message to all attached loggers,
// facilitating unified logging across various components of the library.
func (s *Sensor) NotifyLoggers(level types.LogLevel, format string, args ...interface{}) {
	s.loggersLock.Lock()
	defer s.loggersLock.Unlock()
	if len(s.loggers) == 0 {
		return
	}
	msg := fmt.Sprintf(format, args...)
	for _, logger := range s.loggers {
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
