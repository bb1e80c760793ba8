// Package render composes render contexts and runs the content and layout
// passes for a single template.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/hydessg/hyde/internal/dataset"
	"github.com/hydessg/hyde/internal/frontmatter"
	"github.com/hydessg/hyde/internal/logfields"
	"github.com/hydessg/hyde/internal/metrics"
	"github.com/hydessg/hyde/internal/templates"
)

// DefaultMaxLayoutDepth bounds layout chains when no depth is configured.
const DefaultMaxLayoutDepth = 8

// Stage is a step of the render state machine.
type Stage string

const (
	StageResolving        Stage = "resolving"
	StageComposing        Stage = "composing"
	StageRenderingContent Stage = "rendering_content"
	StageConverting       Stage = "converting"
	StageResolvingLayout  Stage = "resolving_layout"
	StageRenderingLayout  Stage = "rendering_layout"
	StageDone             Stage = "done"
)

// Resolver provides compiled templates by name.
type Resolver interface {
	Resolve(name string) (*templates.Template, error)
}

// Converter transforms rendered content of matching templates before the
// layout pass, e.g. Markdown to HTML.
type Converter interface {
	// Extensions lists the template name extensions handled, with leading dot.
	Extensions() []string
	Convert(src []byte) ([]byte, error)
}

// Page is the result of rendering one template.
type Page struct {
	Name    string
	Content []byte
	// Layouts lists the layout templates applied, innermost first.
	Layouts []string
	// Converted is set when a Converter transformed the content.
	Converted bool
}

// Reader returns a reader positioned at the start of the rendered content.
func (p *Page) Reader() io.Reader { return bytes.NewReader(p.Content) }

// Option configures a Renderer.
type Option func(*Renderer)

// WithMaxLayoutDepth limits how many layouts may be chained. Values below 1
// fall back to DefaultMaxLayoutDepth.
func WithMaxLayoutDepth(depth int) Option {
	return func(r *Renderer) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithConverter registers a content converter.
func WithConverter(c Converter) Option {
	return func(r *Renderer) {
		if c == nil {
			return
		}
		for _, ext := range c.Extensions() {
			r.converters[strings.ToLower(ext)] = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Renderer) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// Renderer renders templates against a fixed dataset snapshot.
type Renderer struct {
	env        Resolver
	globals    *dataset.Snapshot
	maxDepth   int
	converters map[string]Converter
	logger     *slog.Logger
	recorder   metrics.Recorder
}

// New creates a Renderer resolving templates through env.
func New(env Resolver, globals *dataset.Snapshot, opts ...Option) *Renderer {
	r := &Renderer{
		env:        env,
		globals:    globals,
		maxDepth:   DefaultMaxLayoutDepth,
		converters: map[string]Converter{},
		logger:     slog.Default(),
		recorder:   metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Render renders the named template, wrapping it in its layout when the
// template declares one, and returns the final output.
func (r *Renderer) Render(ctx context.Context, name string) (io.Reader, error) {
	page, err := r.RenderPage(ctx, name)
	if err != nil {
		return nil, err
	}
	return page.Reader(), nil
}

// RenderPage is Render with details about the passes that ran.
func (r *Renderer) RenderPage(ctx context.Context, name string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tpl, err := r.env.Resolve(name)
	if err != nil {
		return nil, r.resolveFailure(name, "", StageResolving, err)
	}

	r.warnUnknownDirectives(tpl)
	rc := Compose(tpl, r.globals)
	page := &Page{Name: tpl.Name()}

	content, err := r.execute(tpl, rc.Vars(), metrics.PassContent)
	if err != nil {
		return nil, &RenderError{Template: tpl.Name(), Stage: StageRenderingContent, Err: err}
	}

	if conv, ok := r.converters[strings.ToLower(path.Ext(tpl.Name()))]; ok {
		start := time.Now()
		converted, convErr := conv.Convert(content)
		r.recorder.ObservePassDuration(metrics.PassConvert, time.Since(start))
		if convErr != nil {
			return nil, &RenderError{Template: tpl.Name(), Stage: StageConverting, Err: convErr}
		}
		content = converted
		page.Converted = true
	}

	seen := map[string]bool{}
	layout := rc.Layout()
	for layout != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		layoutName := templates.LayoutName(layout)
		if len(page.Layouts) >= r.maxDepth {
			return nil, &RenderError{
				Template: tpl.Name(),
				Layout:   layoutName,
				Stage:    StageResolvingLayout,
				Err:      fmt.Errorf("%w: limit is %d", ErrLayoutDepthExceeded, r.maxDepth),
			}
		}
		if seen[layoutName] {
			return nil, &RenderError{
				Template: tpl.Name(),
				Layout:   layoutName,
				Stage:    StageResolvingLayout,
				Err:      fmt.Errorf("%w: %s -> %s", ErrLayoutCycle, strings.Join(page.Layouts, " -> "), layoutName),
			}
		}
		seen[layoutName] = true

		layoutTpl, err := r.env.Resolve(layoutName)
		if err != nil {
			return nil, r.resolveFailure(tpl.Name(), layoutName, StageResolvingLayout, err)
		}
		r.warnUnknownDirectives(layoutTpl)

		r.logger.Debug("Applying layout", logfields.Template(tpl.Name()), logfields.Layout(layoutName))
		content, err = r.execute(layoutTpl, rc.Vars(Content(content)), metrics.PassLayout)
		if err != nil {
			return nil, &RenderError{Template: tpl.Name(), Layout: layoutName, Stage: StageRenderingLayout, Err: err}
		}
		page.Layouts = append(page.Layouts, layoutName)
		layout = layoutTpl.Matter().Layout()
	}

	page.Content = content
	return page, nil
}

func (r *Renderer) warnUnknownDirectives(tpl *templates.Template) {
	for _, d := range tpl.Matter().ParsedDirectives() {
		if d.Kind == frontmatter.DirectiveUnknown {
			r.logger.Warn("Ignoring unknown directive", logfields.Template(tpl.Name()), slog.String("directive", d.Key))
		}
	}
}

func (r *Renderer) execute(tpl *templates.Template, vars pongo2.Context, pass string) ([]byte, error) {
	start := time.Now()
	defer func() { r.recorder.ObservePassDuration(pass, time.Since(start)) }()

	var buf bytes.Buffer
	if err := tpl.Execute(vars, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// resolveFailure keeps not-found and front matter errors matchable as they
// are, adding the requesting template for layouts. Compile errors become
// render errors.
func (r *Renderer) resolveFailure(name, layout string, stage Stage, err error) error {
	if errors.Is(err, templates.ErrCompile) {
		return &RenderError{Template: name, Layout: layout, Stage: stage, Err: err}
	}
	if layout != "" {
		return fmt.Errorf("resolve layout %q for %q: %w", layout, name, err)
	}
	return err
}
