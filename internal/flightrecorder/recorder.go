// Package flightrecorder captures execution traces around requests that blow
// their deadline, typically oversized import documents, so slow runs can be
// diagnosed from production without always-on tracing.
package flightrecorder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync/atomic"
	"time"

	"github.com/mkarvone/repsmith/internal/errors"
)

const (
	defaultMinAge   = 5 * time.Minute
	defaultMaxBytes = 64 * 1024 * 1024
	defaultCooldown = 30 * time.Minute
)

// Config configures the recorder. Zero durations and sizes get defaults.
type Config struct {
	Logger    *slog.Logger
	Directory string
	MinAge    time.Duration
	MaxBytes  uint64
	// Cooldown is the minimum time between captures, protecting the
	// filesystem when many requests time out at once.
	Cooldown time.Duration
}

// Recorder wraps the runtime flight recorder with rate-limited capture to
// disk.
type Recorder struct {
	logger      *slog.Logger
	recorder    *trace.FlightRecorder
	directory   string
	cooldown    time.Duration
	lastCapture atomic.Int64
}

func New(cfg Config) (*Recorder, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.Directory == "" {
		return nil, errors.New("trace directory is required")
	}
	if stat, err := os.Stat(cfg.Directory); err != nil {
		if err = os.MkdirAll(cfg.Directory, 0o700); err != nil {
			return nil, fmt.Errorf("create trace directory: %w", err)
		}
	} else if !stat.IsDir() {
		return nil, fmt.Errorf("trace path is not a directory: %s", cfg.Directory)
	}

	if cfg.MinAge == 0 {
		cfg.MinAge = defaultMinAge
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = defaultCooldown
	}

	recorder := trace.NewFlightRecorder(trace.FlightRecorderConfig{
		MinAge:   cfg.MinAge,
		MaxBytes: cfg.MaxBytes,
	})
	if recorder == nil {
		return nil, errors.New("create flight recorder")
	}

	return &Recorder{
		logger:    cfg.Logger,
		recorder:  recorder,
		directory: cfg.Directory,
		cooldown:  cfg.Cooldown,
	}, nil
}

func (r *Recorder) Start(ctx context.Context) error {
	if err := r.recorder.Start(); err != nil {
		return fmt.Errorf("start flight recorder: %w", err)
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started",
		slog.String("directory", r.directory),
		slog.Duration("cooldown", r.cooldown))
	return nil
}

func (r *Recorder) Stop(ctx context.Context) {
	r.recorder.Stop()
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped")
}

// Capture writes the in-memory trace buffer to a file named after the reason
// and the current time. Captures inside the cooldown window are dropped.
func (r *Recorder) Capture(ctx context.Context, reason string) {
	now := time.Now()
	last := r.lastCapture.Load()
	if last > 0 && now.Sub(time.Unix(last, 0)) < r.cooldown {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "trace capture skipped during cooldown",
			slog.Time("last_capture", time.Unix(last, 0)))
		return
	}
	if !r.lastCapture.CompareAndSwap(last, now.Unix()) {
		// Another goroutine claimed this capture window.
		return
	}

	name := fmt.Sprintf("%s-%s.trace", reason, now.UTC().Format("20060102-150405"))
	path := filepath.Join(r.directory, name)
	file, err := os.Create(path)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "create trace file failed",
			slog.String("file", path), errors.SlogError(err))
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "close trace file failed",
				slog.String("file", path), errors.SlogError(closeErr))
		}
	}()

	written, err := r.recorder.WriteTo(file)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "write trace failed",
			slog.String("file", path), errors.SlogError(err))
		return
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured trace",
		slog.String("file", path), slog.Int64("bytes", written))
}
