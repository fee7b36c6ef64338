package dtos

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// SetLogger sets the logger used to report lenient operations, e.g. a nil DTO
// that was dropped by [Collection.Append]. Passing nil disables logging again.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}

	logger.Store(l)
}

func log() *zap.Logger {
	return logger.Load()
}
