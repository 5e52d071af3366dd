package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

// GormLogger sends GORM's statement log to zap. Statements carry the
// request correlation and span ids of the context they ran under.
type GormLogger struct {
	logger        *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

type GormOption func(*GormLogger)

// WithSlowThreshold sets the duration above which statements log as slow.
// Zero disables slow statement logging.
func WithSlowThreshold(d time.Duration) GormOption {
	return func(l *GormLogger) { l.slowThreshold = d }
}

func NewGormLogger(logger *zap.Logger, level gormlogger.LogLevel, opts ...GormOption) *GormLogger {
	l := &GormLogger{
		logger:        logger.Named("gorm"),
		level:         level,
		slowThreshold: defaultSlowThreshold,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, min gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < min {
		return
	}
	if ce := l.logger.Check(lvl, fmt.Sprintf(msg, data...)); ce != nil {
		ce.Write(Fields(ctx)...)
	}
}

// Trace logs one executed statement. Missing rows are an expected outcome
// for the repositories and are not reported as errors.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound):
		if l.level >= gormlogger.Error {
			l.statement(ctx, zapcore.ErrorLevel, "SQL error", elapsed, fc, zap.Error(err))
		}
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		if l.level >= gormlogger.Warn {
			l.statement(ctx, zapcore.WarnLevel, "Slow SQL", elapsed, fc, zap.Duration("threshold", l.slowThreshold))
		}
	case l.level >= gormlogger.Info:
		l.statement(ctx, zapcore.DebugLevel, "SQL", elapsed, fc)
	}
}

func (l *GormLogger) statement(ctx context.Context, lvl zapcore.Level, msg string, elapsed time.Duration, fc func() (string, int64), extra ...zap.Field) {
	ce := l.logger.Check(lvl, msg)
	if ce == nil {
		return
	}
	sql, rows := fc()
	fields := append(Fields(ctx),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)
	ce.Write(append(fields, extra...)...)
}

var gormLevels = map[string]gormlogger.LogLevel{
	"silent": gormlogger.Silent,
	"error":  gormlogger.Error,
	"warn":   gormlogger.Warn,
	"info":   gormlogger.Info,
	"debug":  gormlogger.Info,
}

// MapGormLogLevel converts a config level name to a GORM level. Unknown
// names map to Warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	if l, ok := gormLevels[strings.ToLower(level)]; ok {
		return l
	}
	return gormlogger.Warn
}
