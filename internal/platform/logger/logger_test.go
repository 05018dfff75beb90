package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfigZapLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, Config{Level: "debug"}.ZapLevel())
	assert.Equal(t, zapcore.WarnLevel, Config{Level: "warning"}.ZapLevel())
	assert.Equal(t, zapcore.InfoLevel, Config{Level: "bogus"}.ZapLevel())
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "estate.log")
	l := New(Config{Level: "info", Format: "json", OutputFile: path})
	l.Named("ledger").Info("hello")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logger":"ledger"`)
	assert.Contains(t, string(data), "hello")
}
