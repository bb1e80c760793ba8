package frontmatter

import (
	"fmt"
	"sort"
	"strings"
)

// Sigil marks a front matter key as a directive rather than page data.
const Sigil = "$"

// PageKey is the namespace under which page data is exposed to templates.
const PageKey = "page"

// LayoutKey is the directive naming the layout that wraps a template.
const LayoutKey = Sigil + "layout"

// DirectiveKind enumerates the directives understood by the renderer.
type DirectiveKind int

const (
	// DirectiveUnknown is a sigil-prefixed key with no defined meaning. The
	// renderer logs a warning for it.
	DirectiveUnknown DirectiveKind = iota
	// DirectiveLayout selects the layout template (Value is the layout name).
	DirectiveLayout
)

func (k DirectiveKind) String() string {
	switch k {
	case DirectiveLayout:
		return "layout"
	default:
		return "unknown"
	}
}

// Directive is a parsed control-plane entry of a Matter.
type Directive struct {
	Kind  DirectiveKind
	Key   string
	Value any
}

// Matter is the partitioned result of a front matter block.
//
// Directives holds sigil-prefixed keys verbatim; Page holds every other key.
// The two never collide because page data lives one level below PageKey.
type Matter struct {
	Directives map[string]any
	Page       map[string]any

	layout string
	parsed []Directive
}

// EmptyMatter returns a Matter with no directives and an empty page mapping.
func EmptyMatter() Matter {
	return Matter{
		Directives: map[string]any{},
		Page:       map[string]any{},
	}
}

// IsDirectiveKey reports whether key carries the directive sigil.
func IsDirectiveKey(key string) bool {
	return strings.HasPrefix(key, Sigil)
}

// NewMatter partitions parsed front matter fields into directives and page
// data. Typed directives are parsed once here rather than inspected by prefix
// at use time.
func NewMatter(fields map[string]any) (Matter, error) {
	m := EmptyMatter()
	for key, value := range fields {
		if IsDirectiveKey(key) {
			m.Directives[key] = value
			continue
		}
		m.Page[key] = value
	}

	keys := make([]string, 0, len(m.Directives))
	for key := range m.Directives {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := m.Directives[key]
		switch key {
		case LayoutKey:
			switch v := value.(type) {
			case nil:
			case string:
				m.layout = strings.TrimSpace(v)
			default:
				return Matter{}, fmt.Errorf("directive %s must be a string, got %T", LayoutKey, value)
			}
			m.parsed = append(m.parsed, Directive{Kind: DirectiveLayout, Key: key, Value: m.layout})
		default:
			m.parsed = append(m.parsed, Directive{Kind: DirectiveUnknown, Key: key, Value: value})
		}
	}
	return m, nil
}

// Layout returns the layout named by the $layout directive, or "" when absent.
func (m Matter) Layout() string {
	return m.layout
}

// Directive returns the raw value of a directive key.
func (m Matter) Directive(key string) (any, bool) {
	v, ok := m.Directives[key]
	return v, ok
}

// ParsedDirectives returns the typed directives sorted by key.
func (m Matter) ParsedDirectives() []Directive {
	out := make([]Directive, len(m.parsed))
	copy(out, m.parsed)
	return out
}
