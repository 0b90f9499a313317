package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"devcert/internal/paths"
)

// New creates a logger that writes colorized output to stdout at the given
// level and the full debug stream to a timestamped file inside the save
// directory's logs dir. The returned closer should be closed when logging is
// no longer needed.
func New(p paths.SavePaths, level string) (*zap.SugaredLogger, io.Closer, error) {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	filePath := filepath.Join(p.LogsDir, filename)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	consoleEncoder := zap.NewDevelopmentEncoderConfig()
	consoleEncoder.EncodeLevel = zapcore.CapitalColorLevelEncoder

	fileEncoder := zap.NewDevelopmentEncoderConfig()
	fileEncoder.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoder), zapcore.Lock(os.Stdout), ParseLevel(level)),
		zapcore.NewCore(zapcore.NewConsoleEncoder(fileEncoder), zapcore.AddSync(file), zapcore.DebugLevel),
	)

	return zap.New(core).Sugar(), file, nil
}

// ParseLevel maps a config log level string onto a zap level. Unknown values
// fall back to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Nop returns a logger that discards everything. Useful in tests and for
// components constructed without logging wired up yet.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
