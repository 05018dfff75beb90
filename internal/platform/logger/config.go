package logger

import "go.uber.org/zap/zapcore"

// Config holds configuration for the logger.
type Config struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format     string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
	OutputFile string `yaml:"output_file" env:"LOG_OUTPUT_FILE" env-default:"stdout"`
}

// ZapLevel converts the configured level to zapcore.Level.
func (c Config) ZapLevel() zapcore.Level {
	switch c.Level {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
