package templates

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/hydessg/hyde/internal/frontmatter"
)

// Source is the raw identity of a resolved template. It is created once per
// resolve and never modified.
type Source struct {
	// Name is the slash separated name relative to the search root.
	Name string
	// Root is the search root the template was found in.
	Root string
	// Path is the filesystem path that was read.
	Path string
	// Raw is the original text including any front matter block.
	Raw []byte
	// Body is the text left after removing the front matter block.
	Body   []byte
	Matter frontmatter.Matter
}

// Template is a compiled, renderable template bound to its front matter.
type Template struct {
	source Source
	tpl    *pongo2.Template
}

// Name returns the template name.
func (t *Template) Name() string { return t.source.Name }

// Source returns the template source.
func (t *Template) Source() Source { return t.source }

// Matter returns the parsed front matter.
func (t *Template) Matter() frontmatter.Matter { return t.source.Matter }

// Execute renders the template with vars into w.
func (t *Template) Execute(vars pongo2.Context, w io.Writer) error {
	return t.tpl.ExecuteWriter(vars, w)
}

// ErrTemplateNotFound is matched by every *NotFoundError.
var ErrTemplateNotFound = errors.New("template not found")

// NotFoundError reports a template name that does not resolve under any
// search root.
type NotFoundError struct {
	Name  string
	Roots []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("template %q not found in [%s]", e.Name, strings.Join(e.Roots, ", "))
}

// Is makes errors.Is(err, ErrTemplateNotFound) hold for any NotFoundError.
func (e *NotFoundError) Is(target error) bool { return target == ErrTemplateNotFound }

// ErrCompile is matched by every *CompileError.
var ErrCompile = errors.New("template compile error")

// CompileError reports a template body the engine could not parse.
type CompileError struct {
	Template string
	Err      error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile template %q: %v", e.Template, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCompile) hold for any CompileError.
func (e *CompileError) Is(target error) bool { return target == ErrCompile }
