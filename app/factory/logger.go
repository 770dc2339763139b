package factory

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// ConfigureLogging sets the process-wide logrus formatter and level.
func ConfigureLogging(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

func NewModuleLogger(module string) logrus.FieldLogger {
	return logrus.WithField("module", module)
}

func LoggerWithContext(logger logrus.FieldLogger, ctx echo.Context) logrus.FieldLogger {
	if ctx == nil {
		return logger
	}

	fields := logrus.Fields{
		"method": ctx.Request().Method,
		"path":   ctx.Path(),
	}
	if requestID := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID)); requestID != "" {
		fields["request_id"] = requestID
	}
	return logger.WithFields(fields)
}
