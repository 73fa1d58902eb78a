package utils

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = newLogger(zapcore.InfoLevel)
)

func newLogger(level zapcore.Level) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	enc.EncodeCaller = nil
	enc.CallerKey = ""

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.Lock(os.Stdout),
		level,
	)
	return zap.New(core)
}

// SetVerbose switches Debug output on or off.
func SetVerbose(verbose bool) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	mu.Lock()
	defer mu.Unlock()
	_ = logger.Sync()
	logger = newLogger(level)
}

// L returns the structured logger for field-style logging.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Sync() {
	_ = L().Sync()
}

func Debug(format string, a ...interface{}) {
	L().Sugar().Debugf(format, a...)
}

func Info(format string, a ...interface{}) {
	L().Sugar().Infof(format, a...)
}

func Success(format string, a ...interface{}) {
	L().Sugar().Infof("✓ "+format, a...)
}

func Warn(format string, a ...interface{}) {
	L().Sugar().Warnf(format, a...)
}

func Error(format string, a ...interface{}) {
	L().Sugar().Errorf(format, a...)
}

func Section(title string) {
	bar := strings.Repeat("═", 10)
	L().Info(fmt.Sprintf("%s %s %s", bar, title, bar))
}
