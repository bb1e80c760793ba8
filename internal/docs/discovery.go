// Package docs discovers the source files of a site and classifies them for
// rendering or copying.
package docs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	derrors "github.com/hydessg/hyde/internal/docs/errors"
	"github.com/hydessg/hyde/internal/logfields"
)

// ReservedPrefix marks directories that never contribute to the output.
const ReservedPrefix = "_"

// SourceFile is a discovered file under the site root.
type SourceFile struct {
	Path         string // Absolute path to the file
	RelativePath string // Slash separated path relative to the site root
	Extension    string // File extension including the dot
	ContentType  string // Media type without parameters, empty when unknown
	Kind         Kind
	Content      []byte // Loaded on demand
}

// Discovery walks a site root.
type Discovery struct {
	root       string
	classifier *Classifier
	logger     *slog.Logger
}

// NewDiscovery creates a discovery for root.
func NewDiscovery(root string, classifier *Classifier, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{root: root, classifier: classifier, logger: logger}
}

// Discover returns every file under the root whose name has an extension and
// none of whose ancestor directories, relative to the root, is reserved.
// Files are returned in lexical order of their relative path.
func (d *Discovery) Discover(ctx context.Context) ([]SourceFile, error) {
	info, err := os.Stat(d.root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", derrors.ErrSourceRootNotFound, d.root)
	}

	var files []SourceFile
	walkErr := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if entry.IsDir() {
			if path != d.root && IsReserved(entry.Name()) {
				d.logger.Debug("Skipping reserved directory", logfields.Path(path))
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.Contains(entry.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return fmt.Errorf("%w: %w", derrors.ErrInvalidRelativePath, err)
		}
		rel = filepath.ToSlash(rel)

		ct, kind := d.classifier.Classify(rel)
		files = append(files, SourceFile{
			Path:         path,
			RelativePath: rel,
			Extension:    filepath.Ext(entry.Name()),
			ContentType:  ct,
			Kind:         kind,
		})
		d.logger.Debug("Discovered file",
			logfields.Path(rel),
			logfields.ContentType(ct),
			logfields.Kind(string(kind)))
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrWalkFailed, d.root, walkErr)
	}

	d.logger.Info("Source files discovered", logfields.Root(d.root), slog.Int("count", len(files)))
	return files, nil
}

// IsReserved reports whether a directory name is reserved.
func IsReserved(name string) bool {
	return strings.HasPrefix(name, ReservedPrefix)
}

// HasReservedAncestor reports whether any directory component of the slash
// separated relative path is reserved.
func HasReservedAncestor(rel string) bool {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, part := range parts[:len(parts)-1] {
		if IsReserved(part) {
			return true
		}
	}
	return false
}

// LoadContent loads the content of the source file.
func (sf *SourceFile) LoadContent() error {
	if sf.Content != nil {
		return nil
	}
	// #nosec G304 - path comes from walking the configured site root
	content, err := os.ReadFile(sf.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, sf.Path, err)
	}
	sf.Content = content
	return nil
}
