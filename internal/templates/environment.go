// Package templates resolves template names against an ordered list of search
// roots, strips their front matter and compiles the remaining body with the
// pongo2 expression engine.
package templates

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/hydessg/hyde/internal/frontmatter"
	"github.com/hydessg/hyde/internal/logfields"
)

// LayoutExtension is appended to a $layout directive to form a template name.
const LayoutExtension = ".html"

// Option configures an Environment.
type Option func(*options)

type options struct {
	strict       bool
	logger       *slog.Logger
	trimBlocks   bool
	lstripBlocks bool
}

// WithStrict makes malformed front matter fail template resolution instead of
// falling back to the raw text.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithLogger sets the logger used for front matter diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWhitespaceControl enables the engine's trim_blocks and lstrip_blocks behavior.
func WithWhitespaceControl(trimBlocks, lstripBlocks bool) Option {
	return func(o *options) {
		o.trimBlocks = trimBlocks
		o.lstripBlocks = lstripBlocks
	}
}

func init() {
	SetAutoescape(false)
}

// SetAutoescape turns the engine's HTML autoescaping on or off for every
// Environment in the process. It is off by default and is meant to be set
// once, before any template is resolved. Injected layout content is never
// escaped.
func SetAutoescape(enabled bool) {
	pongo2.SetAutoescape(enabled)
}

// Environment owns template-source resolution and compilation. It caches
// nothing between Resolve calls.
type Environment struct {
	roots  []string
	loader *frontmatter.Loader
	set    *pongo2.TemplateSet
	logger *slog.Logger
}

// NewEnvironment creates an Environment searching roots in order; the first
// root containing a template wins.
func NewEnvironment(roots []string, opts ...Option) (*Environment, error) {
	if len(roots) == 0 {
		return nil, errors.New("templates: at least one search root is required")
	}
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	cleaned := make([]string, 0, len(roots))
	for _, root := range roots {
		if strings.TrimSpace(root) == "" {
			return nil, errors.New("templates: empty search root")
		}
		cleaned = append(cleaned, filepath.Clean(root))
	}

	env := &Environment{
		roots:  cleaned,
		loader: frontmatter.NewLoader(o.strict, o.logger),
		logger: o.logger,
	}
	env.set = pongo2.NewSet("hyde", env)
	env.set.Options.TrimBlocks = o.trimBlocks
	env.set.Options.LStripBlocks = o.lstripBlocks
	return env, nil
}

// Roots returns the search roots in resolution order.
func (e *Environment) Roots() []string {
	out := make([]string, len(e.roots))
	copy(out, e.roots)
	return out
}

// Strict reports whether malformed front matter fails resolution.
func (e *Environment) Strict() bool {
	return e.loader.Strict()
}

// Resolve loads the named template from the first search root that has it,
// extracts its front matter and compiles the body.
func (e *Environment) Resolve(name string) (*Template, error) {
	src, err := e.Source(name)
	if err != nil {
		return nil, err
	}
	tpl, err := e.set.FromBytes(src.Body)
	if err != nil {
		return nil, &CompileError{Template: src.Name, Err: err}
	}
	return &Template{source: src, tpl: tpl}, nil
}

// ResolveLayout resolves the template named by a $layout directive value.
func (e *Environment) ResolveLayout(layout string) (*Template, error) {
	return e.Resolve(LayoutName(layout))
}

// LayoutName maps a $layout directive value to a template name.
func LayoutName(layout string) string {
	return layout + LayoutExtension
}

// Source reads and splits the named template without compiling it.
func (e *Environment) Source(name string) (Source, error) {
	clean, ok := cleanName(name)
	if !ok {
		return Source{}, &NotFoundError{Name: name, Roots: e.Roots()}
	}

	raw, root, fullPath, err := e.read(clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Source{}, &NotFoundError{Name: clean, Roots: e.Roots()}
		}
		return Source{}, err
	}

	matter, body, err := e.loader.Load(clean, raw)
	if err != nil {
		return Source{}, err
	}
	return Source{
		Name:   clean,
		Root:   root,
		Path:   fullPath,
		Raw:    raw,
		Body:   body,
		Matter: matter,
	}, nil
}

func (e *Environment) read(name string) ([]byte, string, string, error) {
	for _, root := range e.roots {
		candidate := filepath.Join(root, filepath.FromSlash(name))
		info, statErr := os.Stat(candidate)
		if statErr != nil {
			if errors.Is(statErr, fs.ErrNotExist) {
				continue
			}
			return nil, "", "", fmt.Errorf("stat template %s: %w", candidate, statErr)
		}
		if info.IsDir() {
			continue
		}
		// #nosec G304 - candidate is confined to a configured search root by cleanName
		data, readErr := os.ReadFile(candidate)
		if readErr != nil {
			return nil, "", "", fmt.Errorf("read template %s: %w", candidate, readErr)
		}
		e.logger.Debug("Resolved template", logfields.Template(name), logfields.Root(root))
		return data, root, candidate, nil
	}
	return nil, "", "", fs.ErrNotExist
}

// cleanName normalizes a template name to a slash separated path relative to
// a search root. Names escaping the root are rejected.
func cleanName(name string) (string, bool) {
	name = strings.TrimSpace(filepath.ToSlash(name))
	if name == "" || path.IsAbs(name) || filepath.IsAbs(name) {
		return "", false
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}

// Abs implements pongo2.TemplateLoader. Names used by include and extends
// tags are always relative to the search roots.
func (e *Environment) Abs(_, name string) string {
	return name
}

// Get implements pongo2.TemplateLoader so that include and extends resolve
// through the same search roots, with front matter stripped.
func (e *Environment) Get(name string) (io.Reader, error) {
	src, err := e.Source(name)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(src.Body), nil
}

var _ pongo2.TemplateLoader = (*Environment)(nil)
