package logger

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var l atomic.Pointer[zap.Logger]

func init() {
	l.Store(zap.NewNop())
}

// InitLogger builds the process logger. Until it is called every helper
// writes to a no-op logger, so library users of the client stay silent.
func InitLogger(env string) {
	var cfg zap.Config

	switch env {
	case "prod":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "cli":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		cfg.EncoderConfig.CallerKey = ""
		cfg.DisableStacktrace = true
		cfg.EncoderConfig.TimeKey = ""
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}

	l.Store(logger)
}

// L returns the underlying logger for callers that need child loggers.
func L() *zap.Logger {
	return l.Load().WithOptions(zap.AddCallerSkip(-1))
}

func Info(msg string, fields ...zap.Field) {
	l.Load().Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	l.Load().Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	l.Load().Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	l.Load().Warn(msg, fields...)
}

func Sync() error {
	return l.Load().Sync()
}
