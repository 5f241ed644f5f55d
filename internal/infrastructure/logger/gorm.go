package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// SQLLogger routes GORM output through zap. Statements carry the request
// and actor of the HTTP call that issued them.
type SQLLogger struct {
	log   *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

var _ gormlogger.Interface = (*SQLLogger)(nil)

// NewSQLLogger takes the application log level name. Statements slower than
// slow are logged as warnings; zero disables the check.
func NewSQLLogger(log *zap.Logger, level string, slow time.Duration) *SQLLogger {
	return &SQLLogger{
		log:   log.Named("sql"),
		level: gormLevel(level),
		slow:  slow,
	}
}

// gormLevel keeps SQL quieter than the app: only info and debug show
// every statement.
func gormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	}
	return gormlogger.Warn
}

func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *l
	c.level = level
	return &c
}

func (l *SQLLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.scoped(ctx).Info(fmt.Sprintf(msg, data...))
	}
}

func (l *SQLLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.scoped(ctx).Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *SQLLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.scoped(ctx).Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs a finished statement. A missing row is a normal repository
// outcome and is not logged.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent || errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}

	elapsed := time.Since(begin)
	statement, rows := fc()
	fields := []zap.Field{
		zap.String("sql", statement),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	log := l.scoped(ctx)

	if err != nil {
		if l.level >= gormlogger.Error {
			log.Error("SQL error", append(fields, zap.Error(err))...)
		}
		return
	}
	if l.slow > 0 && elapsed > l.slow {
		if l.level >= gormlogger.Warn {
			log.Warn("Slow SQL", append(fields, zap.Duration("threshold", l.slow))...)
		}
		return
	}
	if l.level >= gormlogger.Info {
		log.Debug("SQL query", fields...)
	}
}

func (l *SQLLogger) scoped(ctx context.Context) *zap.Logger {
	log := WithTraceContext(ctx, l.log)
	if id := GetRequestID(ctx); id != "" {
		log = log.With(zap.String("request_id", id))
	}
	if id := GetActorID(ctx); id != "" {
		log = log.With(zap.String("actor_id", id))
	}
	return log
}
