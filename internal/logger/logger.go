package logger

import (
	"context"
	"os"

	"github.com/membermatters/memberportal/internal/config"
	"github.com/membermatters/memberportal/internal/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap's sugared logger.
type Logger struct {
	*zap.SugaredLogger
}

// L is the default global logger, safe to use before full wiring.
var L = &Logger{
	SugaredLogger: zap.NewNop().Sugar(),
}

// NewLogger creates a logger configured from the application config.
func NewLogger(cfg *config.Configuration) (*Logger, error) {
	var zapCfg zap.Config
	if cfg.Deployment.Mode == types.ModeProd {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zapLog, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	l := &Logger{SugaredLogger: zapLog.Sugar()}
	L = l
	return l, nil
}

// GetLogger returns the global logger instance.
func GetLogger() *Logger {
	return L
}

// With returns a child logger with the given structured context.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(args...)}
}

// WithContext returns a logger annotated with request scoped fields.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	args := make([]interface{}, 0, 4)
	if reqID := types.GetRequestID(ctx); reqID != "" {
		args = append(args, "request_id", reqID)
	}
	if memberID := types.GetMemberID(ctx); memberID != "" {
		args = append(args, "member_id", memberID)
	}
	if len(args) == 0 {
		return l
	}
	return l.With(args...)
}

// Fatalf logs a formatted message then exits.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.SugaredLogger.Fatalf(format, args...)
	os.Exit(1)
}
