package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultDir is where run logs go when no directory is given
const DefaultDir = "logs"

// InitLogger builds a logger that writes human-readable Info lines to stdout
// and every Debug line as JSON to <dir>/<env>_<timestamp>.log. The returned
// path is the log file.
func InitLogger(env, dir string) (*zap.Logger, string, error) {
	if env == "" {
		env = "default"
	}

	logFile, path, err := openRunLog(dir, env)
	if err != nil {
		return nil, "", err
	}

	logger := zap.New(newCore(zapcore.AddSync(os.Stdout), zapcore.AddSync(logFile)),
		zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("environment", env))

	return logger, path, nil
}

// openRunLog creates dir if needed and opens a fresh timestamped file in it
func openRunLog(dir, env string) (*os.File, string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create logs directory: %w", err)
	}

	// One file per run, so two solves never share a log
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.log", env, timestamp))
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file: %w", err)
	}

	return logFile, path, nil
}

// newCore tees a coloured Info console core with a JSON Debug file core
func newCore(console, file zapcore.WriteSyncer) zapcore.Core {
	// Console: short time and coloured level
	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	// File: JSON with an ISO timestamp
	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoderConfig.TimeKey = "timestamp"
	fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig), console, zapcore.InfoLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), file, zapcore.DebugLevel),
	)
}
