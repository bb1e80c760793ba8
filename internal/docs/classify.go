package docs

import (
	"fmt"
	"mime"
	"path"
	"strings"

	derrors "github.com/hydessg/hyde/internal/docs/errors"
)

// Kind is the processing class of a source file.
type Kind string

const (
	// KindTemplate files have a text/* content type and are rendered.
	KindTemplate Kind = "template"
	// KindAsset files have a known non-text content type and are copied verbatim.
	KindAsset Kind = "asset"
	// KindUnknown files have no known content type and are skipped.
	KindUnknown Kind = "unknown"
)

// defaultTypes covers extensions the platform tables commonly lack.
var defaultTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
}

// Classifier guesses content types from file extensions.
type Classifier struct {
	overrides map[string]string
}

// NewClassifier creates a classifier. overrides maps extensions (with or
// without the leading dot) to content types and takes precedence over both
// the built-in registrations and the platform MIME tables.
func NewClassifier(overrides map[string]string) (*Classifier, error) {
	c := &Classifier{overrides: make(map[string]string, len(defaultTypes)+len(overrides))}
	for ext, ct := range defaultTypes {
		c.overrides[ext] = ct
	}
	for ext, ct := range overrides {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, fmt.Errorf("%w: %s for %s: %w", derrors.ErrInvalidContentType, ct, ext, err)
		}
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.overrides[ext] = mediaType
	}
	return c, nil
}

// ContentType returns the media type for name without parameters, or "" when
// the extension is unknown.
func (c *Classifier) ContentType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return ""
	}
	if ct, ok := c.overrides[ext]; ok {
		return ct
	}
	guessed := mime.TypeByExtension(ext)
	if guessed == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(guessed)
	if err != nil {
		return ""
	}
	return mediaType
}

// Classify returns the content type and processing kind for name.
func (c *Classifier) Classify(name string) (string, Kind) {
	ct := c.ContentType(name)
	switch {
	case ct == "":
		return "", KindUnknown
	case strings.HasPrefix(ct, "text/"):
		return ct, KindTemplate
	default:
		return ct, KindAsset
	}
}
