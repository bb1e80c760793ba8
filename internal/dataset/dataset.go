// Package dataset loads the site-wide named datasets exposed to every template
// as read-only global data for the duration of one generation run.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hydessg/hyde/internal/frontmatter"
	"github.com/hydessg/hyde/internal/logfields"
)

// Extensions lists the structured-data file extensions loaded as datasets.
var Extensions = []string{".yaml", ".yml", ".json"}

var (
	// ErrReservedDatasetName reports a dataset whose name carries the directive sigil.
	ErrReservedDatasetName = errors.New("dataset name collides with the directive sigil")
	// ErrInvalidDatasetName reports a dataset name that templates cannot address.
	ErrInvalidDatasetName = errors.New("dataset name is not a valid identifier")
	// ErrDuplicateDataset reports two files that map to the same dataset name.
	ErrDuplicateDataset = errors.New("duplicate dataset name")
	// ErrDatasetParse reports a dataset file that is not valid structured data.
	ErrDatasetParse = errors.New("dataset parse error")
)

var identifier = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Snapshot is an immutable mapping from dataset name to parsed value. It is
// built once before rendering begins and passed by reference into every
// render; it offers no mutators.
type Snapshot struct {
	values  map[string]any
	sources map[string]string
}

// Empty returns a snapshot with no datasets.
func Empty() *Snapshot {
	return &Snapshot{values: map[string]any{}, sources: map[string]string{}}
}

// Get returns the dataset with the given name.
func (s *Snapshot) Get(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[name]
	return v, ok
}

// Names returns dataset names in sorted order.
func (s *Snapshot) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of datasets.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Source returns the file a dataset was loaded from.
func (s *Snapshot) Source(name string) string {
	if s == nil {
		return ""
	}
	return s.sources[name]
}

// Values exposes the dataset mapping to the template engine. The engine only
// reads it; callers must not modify the returned map.
func (s *Snapshot) Values() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return s.values
}

// Builder accumulates datasets before freezing them into a Snapshot.
type Builder struct {
	values  map[string]any
	sources map[string]string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{values: map[string]any{}, sources: map[string]string{}}
}

// Add registers a dataset value under name.
func (b *Builder) Add(name, source string, value any) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if prev, ok := b.sources[name]; ok {
		return fmt.Errorf("%w: %q from %s and %s", ErrDuplicateDataset, name, prev, source)
	}
	b.values[name] = value
	b.sources[name] = source
	return nil
}

// Snapshot freezes the builder. The builder must not be used afterwards.
func (b *Builder) Snapshot() *Snapshot {
	s := &Snapshot{values: b.values, sources: b.sources}
	b.values, b.sources = nil, nil
	return s
}

// ValidateName checks that a dataset name is addressable from templates and
// does not collide with directive keys.
func ValidateName(name string) error {
	if frontmatter.IsDirectiveKey(name) {
		return fmt.Errorf("%w: %q", ErrReservedDatasetName, name)
	}
	if !identifier.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidDatasetName, name)
	}
	return nil
}

// NameFor returns the dataset name of a data file, or false when the file is
// not a supported structured-data file.
func NameFor(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, supported := range Extensions {
		if ext == supported {
			return strings.TrimSuffix(filename, filepath.Ext(filename)), true
		}
	}
	return "", false
}

// Load reads every structured-data file directly inside dir as one named
// dataset. A missing directory yields an empty snapshot.
func Load(dir string, logger *slog.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("No data directory, continuing without datasets", logfields.Path(dir))
			return Empty(), nil
		}
		return nil, fmt.Errorf("read data directory %s: %w", dir, err)
	}

	b := NewBuilder()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := NameFor(entry.Name())
		if !ok {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		value, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := b.Add(name, path, value); err != nil {
			return nil, err
		}
		logger.Debug("Loaded dataset", logfields.Dataset(name), logfields.Path(path))
	}
	return b.Snapshot(), nil
}

func readFile(path string) (any, error) {
	// #nosec G304 - path comes from listing the configured data directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	var value any
	if err := yaml.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDatasetParse, path, err)
	}
	return value, nil
}
