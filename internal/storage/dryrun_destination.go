package storage

import (
	"context"
	"io"
	"log/slog"

	"github.com/hydessg/hyde/internal/logfields"
)

// DryRunDestination logs every operation and discards the data.
type DryRunDestination struct {
	logger *slog.Logger
}

// NewDryRunDestination creates a destination that only logs.
func NewDryRunDestination(logger *slog.Logger) *DryRunDestination {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRunDestination{logger: logger}
}

// WriteFile drains r so that upstream errors still surface, then logs the write.
func (d *DryRunDestination) WriteFile(ctx context.Context, relPath, contentType string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return &WriteError{Path: relPath, Err: err}
	}
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return &WriteError{Path: relPath, Err: err}
	}
	d.logger.Info("Would write file",
		logfields.Path(relPath),
		logfields.ContentType(contentType),
		slog.Int64("bytes", n))
	return nil
}

// Clean logs the clean.
func (d *DryRunDestination) Clean(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &CleanError{Err: err}
	}
	d.logger.Info("Would clean destination")
	return nil
}

var _ Destination = (*DryRunDestination)(nil)
