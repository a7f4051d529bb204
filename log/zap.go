package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"factreel/internal/appdirs"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logFileName = "factreel.log"

var appDirsResolver = appdirs.Resolve

// New builds the process logger: JSON lines at debug level into the log file
// and a console encoder at info level on stdout. The caller owns the logger
// and hands it to every component.
func New(logDir string) (*zap.Logger, error) {
	if strings.TrimSpace(logDir) == "" {
		logDir = "."
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", logDir, err)
	}

	logFilePath := filepath.Join(logDir, logFileName)
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", logFilePath, err)
	}

	fileSyncer := zapcore.AddSync(file)
	consoleSyncer := zapcore.AddSync(os.Stdout)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileSyncer, zap.DebugLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), consoleSyncer, zap.InfoLevel),
	)

	return zap.New(core, zap.AddCaller()), nil
}

// NewDefault builds the logger in the resolved application log directory.
func NewDefault() (*zap.Logger, error) {
	logDir, err := ResolveLogDir()
	if err != nil {
		return nil, fmt.Errorf("resolve log dir: %w", err)
	}
	return New(logDir)
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func ResolveLogDir() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}

	logDir := strings.TrimSpace(dirs.LogDir)
	if logDir == "" {
		return ".", nil
	}

	return logDir, nil
}

func ResolveLogFilePath() (string, error) {
	logDir, err := ResolveLogDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(logDir, logFileName), nil
}
