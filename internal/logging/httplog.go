package logging

import (
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// retryableLogger adapts zerolog to retryablehttp.LeveledLogger.
type retryableLogger struct {
	logger zerolog.Logger
}

// RetryableHTTPLogger returns a retryablehttp.LeveledLogger that writes to l.
// Per-request chatter from the client is demoted to trace level.
func RetryableHTTPLogger(l zerolog.Logger) retryablehttp.LeveledLogger {
	return retryableLogger{logger: l}
}

func (r retryableLogger) Error(msg string, keysAndValues ...interface{}) {
	r.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (r retryableLogger) Warn(msg string, keysAndValues ...interface{}) {
	r.logger.Warn().Fields(keysAndValues).Msg(msg)
}

func (r retryableLogger) Info(msg string, keysAndValues ...interface{}) {
	r.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (r retryableLogger) Debug(msg string, keysAndValues ...interface{}) {
	r.logger.Trace().Fields(keysAndValues).Msg(msg)
}
