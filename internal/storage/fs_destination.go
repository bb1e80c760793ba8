package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/hydessg/hyde/internal/logfields"
)

// Published sites are served by other users, so outputs are world-readable.
const (
	FileMode os.FileMode = 0o644
	DirMode  os.FileMode = 0o755
)

// FSDestination writes files under a root directory on the local filesystem.
// Each file is written to a temporary sibling and renamed into place, so an
// interrupted run never leaves a partially written file behind.
type FSDestination struct {
	root   string
	logger *slog.Logger
}

// NewFSDestination creates a destination rooted at root. The directory is
// created lazily by the first write.
func NewFSDestination(root string, logger *slog.Logger) (*FSDestination, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty destination root", ErrInvalidPath)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve destination root %s: %w", root, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FSDestination{root: abs, logger: logger}, nil
}

// Root returns the absolute destination root.
func (d *FSDestination) Root() string { return d.root }

// WriteFile implements Destination.
func (d *FSDestination) WriteFile(ctx context.Context, relPath, contentType string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return &WriteError{Path: relPath, Err: err}
	}
	clean, err := CleanPath(relPath)
	if err != nil {
		return &WriteError{Path: relPath, Err: err}
	}

	full := filepath.Join(d.root, filepath.FromSlash(clean))
	// #nosec G301 -- site output is meant to be world-readable
	if err := os.MkdirAll(filepath.Dir(full), DirMode); err != nil {
		return &WriteError{Path: clean, Err: fmt.Errorf("create parent directory: %w", err)}
	}
	if err := atomic.WriteFile(full, r); err != nil {
		return &WriteError{Path: clean, Err: err}
	}
	// atomic.WriteFile keeps the temp file's 0600 mode for new files.
	// #nosec G302 -- site output is meant to be world-readable
	if err := os.Chmod(full, FileMode); err != nil {
		return &WriteError{Path: clean, Err: fmt.Errorf("set file mode: %w", err)}
	}

	d.logger.Debug("Wrote file", logfields.Path(clean), logfields.ContentType(contentType))
	return nil
}

// Clean implements Destination by removing the whole root directory.
func (d *FSDestination) Clean(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &CleanError{Root: d.root, Err: err}
	}
	if err := os.RemoveAll(d.root); err != nil {
		return &CleanError{Root: d.root, Err: err}
	}
	d.logger.Info("Cleaned destination", logfields.Root(d.root))
	return nil
}

var _ Destination = (*FSDestination)(nil)
