package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global = zap.NewNop()
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init builds the process logger. format is "json" or "console".
func Init(lvl, format string) error {
	SetLevel(lvl)

	var cfg zap.Config
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = level

	l, err := cfg.Build(zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return err
	}
	global = l
	return nil
}

// Replace swaps the global logger, mostly for tests.
func Replace(l *zap.Logger) func() {
	previous := global
	global = l
	return func() { global = previous }
}

func L() *zap.Logger {
	return global
}

func Sync() error {
	return global.Sync()
}

func SetLevel(lvl string) {
	var parsed zapcore.Level
	if err := parsed.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(lvl)))); err != nil {
		parsed = zapcore.InfoLevel
	}
	level.SetLevel(parsed)
}

func IsDebugEnabled() bool {
	return level.Enabled(zapcore.DebugLevel)
}

func Debug(msg string, fields ...zap.Field) { global.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { global.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { global.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { global.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { global.Fatal(msg, fields...) }
