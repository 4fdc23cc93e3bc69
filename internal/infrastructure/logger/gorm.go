package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowSQL = 200 * time.Millisecond

// GormLogger writes GORM statements to zap with the request and tenant
// fields of the calling context. Statements taking row locks are tagged so
// contention on order and sequence rows is easy to find. Record-not-found is
// never logged; the repositories turn it into a domain not-found error.
type GormLogger struct {
	log     *zap.Logger
	level   gormlogger.LogLevel
	slowSQL time.Duration
}

// NewGormLogger creates a GORM logger at level ("silent", "error", "warn",
// "info" or "debug"; anything else is warn)
func NewGormLogger(log *zap.Logger, level string) *GormLogger {
	return &GormLogger{
		log:     log.Named("gorm"),
		level:   gormLevel(level),
		slowSQL: defaultSlowSQL,
	}
}

func gormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		Enrich(ctx, l.log).Info(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		Enrich(ctx, l.log).Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		Enrich(ctx, l.log).Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs one executed statement: failures at error, slow statements at
// warn and everything else at debug when the level is info
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent || errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}
	elapsed := time.Since(begin)
	slow := l.slowSQL > 0 && elapsed > l.slowSQL

	switch {
	case err != nil && l.level >= gormlogger.Error:
	case slow && l.level >= gormlogger.Warn:
	case l.level >= gormlogger.Info:
	default:
		return
	}

	sql, rows := fc()
	fields := []zap.Field{zap.Duration("elapsed", elapsed), zap.String("sql", sql)}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	if strings.Contains(sql, "FOR UPDATE") {
		fields = append(fields, zap.Bool("row_lock", true))
	}
	log := Enrich(ctx, l.log)

	switch {
	case err != nil:
		log.Error("SQL failed", append(fields, zap.Error(err))...)
	case slow:
		log.Warn("Slow SQL", append(fields, zap.Duration("threshold", l.slowSQL))...)
	default:
		log.Debug("SQL", fields...)
	}
}
