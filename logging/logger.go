package logging

import (
	"time"

	"go.uber.org/zap"
)

// Logger wraps a *zap.SugaredLogger with the periodic-logging interval the
// rest of the module uses to throttle progress logs (e.g. redis.Client's
// periodic logging of its counters).
type Logger struct {
	*zap.SugaredLogger

	interval time.Duration
}

// NewLogger wraps sugared with the given periodic-logging interval.
func NewLogger(sugared *zap.SugaredLogger, interval time.Duration) *Logger {
	return &Logger{SugaredLogger: sugared, interval: interval}
}

// Interval returns the configured periodic-logging interval.
func (l *Logger) Interval() time.Duration { return l.interval }
