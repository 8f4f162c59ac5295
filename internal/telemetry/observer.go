package telemetry

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/birbparty/commerce-sdk/sdk"
)

type loggingObserver struct {
	logger logrus.FieldLogger
}

// NewLoggingObserver logs every SDK request, circuit transition and cache
// lookup. Failures log at warn, everything else at debug.
func NewLoggingObserver(logger logrus.FieldLogger) sdk.Observer {
	if logger == nil {
		logger = L()
	}
	return &loggingObserver{logger: logger}
}

func (o *loggingObserver) OnRequestStart(method, path string) {
	o.logger.WithFields(logrus.Fields{"method": method, "path": path}).Debug("Request started")
}

func (o *loggingObserver) OnRequestEnd(method, path string, statusCode int, duration time.Duration, err error) {
	entry := o.logger.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   statusCode,
		"duration": duration.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("Request failed")
		return
	}
	entry.Debug("Request completed")
}

func (o *loggingObserver) OnCircuitBreakerStateChange(endpoint string, oldState, newState sdk.CircuitState) {
	o.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"from":     oldState.String(),
		"to":       newState.String(),
	}).Warn("Circuit breaker state changed")
}

func (o *loggingObserver) OnCacheHit(key string) {
	o.logger.WithField("key", key).Debug("Cache hit")
}

func (o *loggingObserver) OnCacheMiss(key string) {
	o.logger.WithField("key", key).Debug("Cache miss")
}
