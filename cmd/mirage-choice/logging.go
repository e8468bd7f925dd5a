package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	logDir      = "logs"
	logFileName = "mirage-choice.log"
	maxLogSize  = 10 * 1024 * 1024 // 10MB
)

// setupLogging opens the debug log file and returns a logger writing to it
// Without debug every record is discarded since the terminal owns stdout and stderr
// An empty path means logs/mirage-choice.log; files past maxLogSize are rotated aside
func setupLogging(debug bool, path string, level slog.Level) (*os.File, *slog.Logger) {
	if !debug {
		logger := slog.New(slog.DiscardHandler)
		slog.SetDefault(logger)
		return nil, logger
	}

	if path == "" {
		path = filepath.Join(logDir, logFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "log directory: %v\n", err)
		logger := slog.New(slog.DiscardHandler)
		slog.SetDefault(logger)
		return nil, logger
	}

	rotateLog(path)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file: %v\n", err)
		logger := slog.New(slog.DiscardHandler)
		slog.SetDefault(logger)
		return nil, logger
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("logging started", "pid", os.Getpid(), "level", level.String())
	return f, logger
}

// rotateLog renames an oversized log to <name>-<timestamp>.log
func rotateLog(path string) {
	info, err := os.Stat(path)
	if err != nil || info.Size() <= maxLogSize {
		return
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if ext == "" {
		ext = ".log"
	}
	rotated := fmt.Sprintf("%s-%s%s", base, time.Now().Format("20060102-150405"), ext)
	_ = os.Rename(path, rotated)
}
