package log

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBuildConfigLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zap.AtomicLevel
	}{
		{"debug", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"WARN", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"chatty", zap.NewAtomicLevelAt(zap.InfoLevel)},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := buildConfig(tt.level, "json", "")
			assert.Equal(t, tt.want.Level(), cfg.Level.Level())
		})
	}
}

func TestBuildConfigFormatAndOutput(t *testing.T) {
	dir := t.TempDir()

	cfg := buildConfig("info", "console", dir)
	assert.Equal(t, "console", cfg.Encoding)
	assert.Equal(t, []string{"stdout", filepath.Join(dir, "app.log")}, cfg.OutputPaths)

	cfg = buildConfig("info", "json", "")
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)
}
