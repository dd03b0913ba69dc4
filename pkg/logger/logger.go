package logger

import (
	"go.uber.org/zap"
)

var sugar = zap.NewNop().Sugar()

// Init replaces the no-op default with a real zap logger. Call once at
// startup; packages log through the package-level helpers below.
func Init(environment string) {
	var (
		l   *zap.Logger
		err error
	)

	if environment == "development" {
		l, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		l, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		panic(err)
	}

	sugar = l.Sugar()
}

// Sync flushes buffered log entries. Safe to defer from main.
func Sync() {
	_ = sugar.Sync()
}

func Debug(msg string, keysAndValues ...any) {
	sugar.Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...any) {
	sugar.Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...any) {
	sugar.Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...any) {
	sugar.Errorw(msg, keysAndValues...)
}

func Fatal(msg string, keysAndValues ...any) {
	sugar.Fatalw(msg, keysAndValues...)
}
