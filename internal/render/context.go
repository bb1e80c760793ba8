package render

import (
	"maps"

	"github.com/flosch/pongo2/v6"

	"github.com/hydessg/hyde/internal/dataset"
	"github.com/hydessg/hyde/internal/frontmatter"
	"github.com/hydessg/hyde/internal/templates"
)

// Names of the variables visible to template expressions.
const (
	VarPage    = frontmatter.PageKey
	VarData    = "data"
	VarContent = "content"
)

// Var is a variable injected into a single render pass.
type Var struct {
	Name  string
	Value any
}

// Content injects rendered output for a layout pass. The value is marked safe
// so it is embedded verbatim even when autoescaping is enabled.
func Content(rendered []byte) Var {
	return Var{Name: VarContent, Value: pongo2.AsSafeValue(string(rendered))}
}

type layer struct {
	name   string
	values map[string]any
}

// Context is the read-only scope of one render call. It layers the page data
// of the template being rendered over the run's global datasets and carries
// the template's directives for orchestration. It is never mutated after
// Compose; every pass builds a fresh variable map from it.
type Context struct {
	template string
	matter   frontmatter.Matter
	// layers is ordered from highest to lowest precedence.
	layers []layer
}

// Compose builds the render context for tpl. The page layer is copied so that
// nothing composed for one template is observable from another.
func Compose(tpl *templates.Template, globals *dataset.Snapshot) *Context {
	matter := tpl.Matter()
	page := maps.Clone(matter.Page)
	if page == nil {
		page = map[string]any{}
	}
	return &Context{
		template: tpl.Name(),
		matter:   matter,
		layers: []layer{
			{name: "page", values: map[string]any{VarPage: page}},
			{name: "global", values: map[string]any{VarData: globals.Values()}},
		},
	}
}

// Template returns the name of the template the context was composed for.
func (c *Context) Template() string { return c.template }

// Layout returns the layout selected by the template's $layout directive.
func (c *Context) Layout() string { return c.matter.Layout() }

// Directive returns the raw value of a directive of the composed template.
// Directives are not exposed to template expressions.
func (c *Context) Directive(key string) (any, bool) { return c.matter.Directive(key) }

// Lookup resolves a top-level variable name, consulting the page layer before
// the global layer.
func (c *Context) Lookup(name string) (any, bool) {
	for _, l := range c.layers {
		if v, ok := l.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Vars flattens the layers into a new engine context, lowest precedence
// first, then applies the injected variables for this pass only.
func (c *Context) Vars(injected ...Var) pongo2.Context {
	vars := make(pongo2.Context, 2+len(injected))
	for i := len(c.layers) - 1; i >= 0; i-- {
		maps.Copy(vars, c.layers[i].values)
	}
	for _, v := range injected {
		vars[v.Name] = v.Value
	}
	return vars
}
