package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFn() (string, int64) {
	return "SELECT * FROM products", 3
}

func TestSQLLogger_Trace(t *testing.T) {
	t.Run("errors are logged", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), "warn", 200*time.Millisecond)

		l.Trace(context.Background(), time.Now(), sqlFn, errors.New("syntax error"))
		assert.Equal(t, 1, recorded.FilterMessage("SQL error").Len())
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), "warn", 200*time.Millisecond)

		l.Trace(context.Background(), time.Now(), sqlFn, gormlogger.ErrRecordNotFound)
		assert.Zero(t, recorded.Len())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), "warn", time.Millisecond)

		l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
		entries := recorded.FilterMessage("Slow SQL").All()
		assert.Len(t, entries, 1)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), "info", 0).LogMode(gormlogger.Silent)

		l.Trace(context.Background(), time.Now(), sqlFn, errors.New("boom"))
		assert.Zero(t, recorded.Len())
	})

	t.Run("info level logs queries at debug", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), "info", 0)

		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-9")
		l.Trace(ctx, time.Now(), sqlFn, nil)
		entries := recorded.FilterMessage("SQL query").All()
		if assert.Len(t, entries, 1) {
			assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
			assert.Equal(t, int64(3), entries[0].ContextMap()["rows"])
		}
	})
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, gormLevel("silent"))
	assert.Equal(t, gormlogger.Error, gormLevel("error"))
	assert.Equal(t, gormlogger.Info, gormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, gormLevel("whatever"))
}

func TestSQLLogger_CarriesActor(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := NewSQLLogger(zap.New(core), "warn", 0)

	ctx, _ := WithActorID(context.Background(), zap.NewNop(), "farmer-1")
	l.Warn(ctx, "pool at %d%%", 90)

	entries := recorded.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "pool at 90%", entries[0].Message)
		assert.Equal(t, "farmer-1", entries[0].ContextMap()["actor_id"])
	}
}
