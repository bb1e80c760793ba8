// Package storage provides the destinations a site generation run writes to.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// Destination receives the output of a generation run.
type Destination interface {
	// WriteFile stores the stream under relPath, a slash separated path
	// relative to the destination root. Parent directories are created as
	// needed. contentType is informational.
	WriteFile(ctx context.Context, relPath, contentType string, r io.Reader) error

	// Clean removes everything previously written to the destination. It is
	// unconditional and destructive.
	Clean(ctx context.Context) error
}

var (
	// ErrDestinationWrite is matched by every *WriteError.
	ErrDestinationWrite = errors.New("destination write failed")
	// ErrDestinationClean is matched by every *CleanError.
	ErrDestinationClean = errors.New("destination clean failed")
	// ErrInvalidPath reports a relative path that escapes the destination root.
	ErrInvalidPath = errors.New("invalid destination path")
)

// WriteError reports a failed WriteFile.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDestinationWrite) hold for any WriteError.
func (e *WriteError) Is(target error) bool { return target == ErrDestinationWrite }

// CleanError reports a failed Clean.
type CleanError struct {
	Root string
	Err  error
}

func (e *CleanError) Error() string { return fmt.Sprintf("clean %s: %v", e.Root, e.Err) }
func (e *CleanError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDestinationClean) hold for any CleanError.
func (e *CleanError) Is(target error) bool { return target == ErrDestinationClean }

// CleanPath normalizes relPath to a slash separated path that stays inside
// the destination root.
func CleanPath(relPath string) (string, error) {
	p := strings.TrimSpace(filepath.ToSlash(relPath))
	if p == "" || path.IsAbs(p) || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, relPath)
	}
	p = path.Clean(p)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, relPath)
	}
	return p, nil
}
