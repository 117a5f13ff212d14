package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxLogSize = 10 * 1024 * 1024

var (
	logFile *os.File
	logPath string
)

// Init configures the global zerolog logger.
// An empty path writes human-readable output to stderr.
func Init(level, path string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
	if path != "" {
		f, err := openRotated(path)
		if err != nil {
			return err
		}
		logFile = f
		logPath = path
		out = f
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	log.Debug().Str("level", lvl.String()).Str("path", logPath).Msg("logger initialized")
	return nil
}

// InitClient logs to ~/.citychain/client.log, the terminal belongs to the UI.
func InitClient(level string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return Init(level, filepath.Join(homeDir, ".citychain", "client.log"))
}

// openRotated opens path for appending, moving it aside first when it is over 10MB.
func openRotated(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		backupPath := fmt.Sprintf("%s.%d", path, time.Now().Unix())
		_ = os.Rename(path, backupPath)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// Close closes the log file, if any
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// LogPanic logs a recovered panic with its stack trace
func LogPanic(r any) {
	log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
}

// GetLogPath returns the current log file path
func GetLogPath() string {
	return logPath
}
