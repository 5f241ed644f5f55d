package telemetry

import (
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Bridge tees logger into the OTLP log pipeline. Entries below level stay
// local. Without a log pipeline logger is returned unchanged.
func (p *Providers) Bridge(logger *zap.Logger, serviceName string, level zapcore.Level) *zap.Logger {
	if p == nil || p.logs == nil {
		return logger
	}
	remote := &minLevelCore{
		Core: otelzap.NewCore(serviceName, otelzap.WithLoggerProvider(p.logs)),
		min:  level,
	}
	return logger.WithOptions(zap.WrapCore(func(local zapcore.Core) zapcore.Core {
		return zapcore.NewTee(local, remote)
	}))
}

// minLevelCore drops entries below min before they reach the wrapped core.
type minLevelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *minLevelCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.min && c.Core.Enabled(lvl)
}

func (c *minLevelCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if entry.Level < c.min {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *minLevelCore) With(fields []zapcore.Field) zapcore.Core {
	return &minLevelCore{Core: c.Core.With(fields), min: c.min}
}
