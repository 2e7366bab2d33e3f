package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileEmitter appends events to a JSON Lines file with automatic rotation.
type FileEmitter struct {
	filePath        string
	maxSizeBytes    int64
	maxRotatedFiles int
	logger          *slog.Logger
	file            *os.File
	encoder         *json.Encoder
	mu              sync.Mutex
	closed          bool
}

// FileEmitterOption configures a FileEmitter.
type FileEmitterOption func(*FileEmitter)

// WithMaxSize sets the maximum file size before rotation (default: 10MB).
func WithMaxSize(bytes int64) FileEmitterOption {
	return func(fe *FileEmitter) {
		fe.maxSizeBytes = bytes
	}
}

// WithMaxRotatedFiles sets how many rotated files to keep (default: 5).
func WithMaxRotatedFiles(count int) FileEmitterOption {
	return func(fe *FileEmitter) {
		fe.maxRotatedFiles = count
	}
}

// WithErrorLogger sets the logger that receives swallowed write failures.
func WithErrorLogger(logger *slog.Logger) FileEmitterOption {
	return func(fe *FileEmitter) {
		fe.logger = logger
	}
}

// NewFileEmitter creates a file-backed emitter. The file is opened
// immediately; rotation is checked on each emit.
func NewFileEmitter(filePath string, opts ...FileEmitterOption) (*FileEmitter, error) {
	fe := &FileEmitter{
		filePath:        filePath,
		maxSizeBytes:    10 * 1024 * 1024,
		maxRotatedFiles: 5,
	}
	for _, opt := range opts {
		opt(fe)
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create telemetry directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open telemetry file: %w", err)
	}

	fe.file = file
	fe.encoder = json.NewEncoder(file)
	return fe, nil
}

// Emit writes one event as a JSON line. Write failures are logged and
// swallowed; Emit never surfaces an error to the caller.
func (fe *FileEmitter) Emit(event, userID string, fields map[string]any) {
	rec := newEvent(event, userID, fields, time.Now(), uuid.New().String())

	fe.mu.Lock()
	defer fe.mu.Unlock()

	if fe.closed {
		return
	}

	if err := fe.encoder.Encode(rec); err != nil {
		fe.logError("telemetry encode failed", err, event)
		return
	}

	if err := fe.rotateIfNeeded(); err != nil {
		fe.logError("telemetry rotation failed", err, event)
	}
}

// Close flushes and closes the telemetry file.
func (fe *FileEmitter) Close() error {
	fe.mu.Lock()
	defer fe.mu.Unlock()

	if fe.closed {
		return nil
	}
	fe.closed = true

	if fe.file != nil {
		if err := fe.file.Sync(); err != nil {
			fe.file.Close()
			return fmt.Errorf("sync telemetry file: %w", err)
		}
		return fe.file.Close()
	}
	return nil
}

func (fe *FileEmitter) logError(msg string, err error, event string) {
	if fe.logger != nil {
		fe.logger.Error(msg, "error", err, "event", event)
	}
}

// rotateIfNeeded checks file size and rotates past the threshold.
// Must be called with the lock held.
func (fe *FileEmitter) rotateIfNeeded() error {
	info, err := fe.file.Stat()
	if err != nil {
		return fmt.Errorf("stat telemetry file: %w", err)
	}
	if info.Size() < fe.maxSizeBytes {
		return nil
	}

	if err := fe.file.Close(); err != nil {
		return fmt.Errorf("close telemetry file for rotation: %w", err)
	}

	if err := fe.rotateFiles(); err != nil {
		return fmt.Errorf("rotate files: %w", err)
	}

	file, err := os.OpenFile(fe.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open new telemetry file after rotation: %w", err)
	}
	fe.file = file
	fe.encoder = json.NewEncoder(file)
	return nil
}

// rotateFiles shifts existing rotated files: current -> .1, .N-1 -> .N,
// dropping the oldest at the limit. Must be called with the lock held.
func (fe *FileEmitter) rotateFiles() error {
	oldestPath := fmt.Sprintf("%s.%d", fe.filePath, fe.maxRotatedFiles)
	if _, err := os.Stat(oldestPath); err == nil {
		if err := os.Remove(oldestPath); err != nil {
			return fmt.Errorf("remove oldest rotated file: %w", err)
		}
	}

	for i := fe.maxRotatedFiles - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", fe.filePath, i)
		newPath := fmt.Sprintf("%s.%d", fe.filePath, i+1)
		if _, err := os.Stat(oldPath); err == nil {
			if err := os.Rename(oldPath, newPath); err != nil {
				return fmt.Errorf("shift rotated file %s -> %s: %w", oldPath, newPath, err)
			}
		}
	}

	if err := os.Rename(fe.filePath, fmt.Sprintf("%s.1", fe.filePath)); err != nil {
		return fmt.Errorf("rotate current file to .1: %w", err)
	}
	return nil
}
