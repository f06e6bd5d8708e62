package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, 100*time.Millisecond, true), logs
}

func sqlOf(query string) func() (string, int64) {
	return func() (string, int64) { return query, 1 }
}

func TestGormLoggerTrace(t *testing.T) {
	ctx := context.Background()

	t.Run("failed query goes to zap with sql", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Warn)
		l.Trace(ctx, time.Now(), sqlOf(`SELECT * FROM "users"`), errors.New("relation does not exist"))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
		assert.Equal(t, "gorm", entry.LoggerName)
		assert.Equal(t, `SELECT * FROM "users"`, entry.ContextMap()["sql"])
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Warn)
		l.Trace(ctx, time.Now(), sqlOf("SELECT 1"), gorm.ErrRecordNotFound)
		assert.Zero(t, logs.Len())
	})

	t.Run("slow query is a warning", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Warn)
		l.Trace(ctx, time.Now().Add(-time.Second), sqlOf("SELECT pg_sleep(1)"), nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
		assert.Equal(t, "slow query", logs.All()[0].Message)
	})

	t.Run("fast query is silent below info", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Warn)
		l.Trace(ctx, time.Now(), sqlOf("SELECT 1"), nil)
		assert.Zero(t, logs.Len())
	})

	t.Run("silent mode logs nothing", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Warn)
		silent := l.LogMode(gormlogger.Silent)
		silent.Trace(ctx, time.Now(), sqlOf("SELECT 1"), errors.New("boom"))
		silent.Error(ctx, "boom %d", 1)
		assert.Zero(t, logs.Len())
	})
}
