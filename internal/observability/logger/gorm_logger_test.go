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

func TestOperationFromSQL(t *testing.T) {
	cases := []struct {
		sql  string
		want string
	}{
		{"INSERT INTO invoices (id) VALUES (1)", "INSERT"},
		{"  delete from payments", "DELETE"},
		{"WITH x AS (SELECT 1) SELECT * FROM x", "SELECT"},
		{"(SELECT 1)", "SELECT"},
		{"CREATE TABLE vendors (vendor_id text)", "CREATE"},
		{"", "UNKNOWN"},
		{"PRAGMA foreign_keys = ON", "UNKNOWN"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, operationFromSQL(tc.sql), tc.sql)
	}
}

func TestGormLoggerTraceLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), DefaultGormLoggerConfig())

	fc := func() (string, int64) { return "INSERT INTO vendors VALUES (?)", 1 }

	l.Trace(context.Background(), time.Now(), fc, nil)
	assert.Equal(t, 0, logs.Len(), "fast successful statements are not logged at warn level")

	l.Trace(context.Background(), time.Now(), fc, errors.New("constraint failed"))
	l.Trace(context.Background(), time.Now(), fc, gormlogger.ErrRecordNotFound)
	l.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "INSERT", entries[0].ContextMap()["operation"])
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	}
}

func TestWithContextAddsRunID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithRunID(context.Background(), "01HZX")

	WithContext(ctx, zap.New(core)).Info("hello")

	if assert.Equal(t, 1, logs.Len()) {
		assert.Equal(t, "01HZX", logs.All()[0].ContextMap()["run_id"])
	}
	assert.Equal(t, "01HZX", RunIDFromContext(ctx))
	assert.Empty(t, RunIDFromContext(context.Background()))
}
