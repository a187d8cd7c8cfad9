// Package log is the process-wide structured logger, a thin facade over zap.
package log

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sugar starts as a no-op logger so that packages (and tests) can log before Init.
var sugar = zap.NewNop().Sugar()

// Init replaces the logger. format is "json" (default) or "console"; when outputPath is set,
// entries are also appended to <outputPath>/app.log.
func Init(level, format, outputPath string) {
	logger, err := buildConfig(level, format, outputPath).Build()
	if err != nil {
		panic(err)
	}
	sugar = logger.Sugar()
}

func buildConfig(level, format, outputPath string) zap.Config {
	var cfg zap.Config
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	atomic := zap.NewAtomicLevelAt(zap.InfoLevel)
	if level != "" {
		// Unknown levels keep info.
		_ = atomic.UnmarshalText([]byte(strings.ToLower(level)))
	}
	cfg.Level = atomic

	cfg.OutputPaths = []string{"stdout"}
	if outputPath != "" {
		_ = os.MkdirAll(outputPath, 0o755)
		cfg.OutputPaths = append(cfg.OutputPaths, filepath.Join(outputPath, "app.log"))
	}
	return cfg
}

func Debugf(template string, args ...interface{}) { sugar.Debugf(template, args...) }

func Info(msg string) { sugar.Info(msg) }

func Infof(template string, args ...interface{}) { sugar.Infof(template, args...) }

// Infow logs msg with key/value pairs, e.g. Infow("usage created", "userId", 3).
func Infow(msg string, keysAndValues ...interface{}) { sugar.Infow(msg, keysAndValues...) }

func Warnf(template string, args ...interface{}) { sugar.Warnf(template, args...) }

func Warnw(msg string, keysAndValues ...interface{}) { sugar.Warnw(msg, keysAndValues...) }

// Error logs msg with err under the "error" key.
func Error(msg string, err error) { sugar.Errorw(msg, "error", err) }

func Errorf(template string, args ...interface{}) { sugar.Errorf(template, args...) }

func Errorw(msg string, keysAndValues ...interface{}) { sugar.Errorw(msg, keysAndValues...) }

// Fatal logs msg with err and exits with status 1.
func Fatal(msg string, err error) { sugar.Fatalw(msg, "error", err) }

func Fatalf(template string, args ...interface{}) { sugar.Fatalf(template, args...) }

// Sync flushes buffered entries; call it before the process exits.
func Sync() { _ = sugar.Sync() }
