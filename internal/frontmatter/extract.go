package frontmatter

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hydessg/hyde/internal/logfields"
)

// ResultKind classifies the outcome of Extract.
type ResultKind int

const (
	// NoFrontMatter means the text did not start with Delimiter.
	NoFrontMatter ResultKind = iota
	// Parsed means a block was found, parsed and partitioned.
	Parsed
	// Malformed means a block was started but could not be split or parsed.
	Malformed
)

func (k ResultKind) String() string {
	switch k {
	case NoFrontMatter:
		return "none"
	case Parsed:
		return "parsed"
	case Malformed:
		return "malformed"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is the typed outcome of a bounded front matter split.
//
// For NoFrontMatter, Body is the original text. For Parsed, Body is the text
// after the closing delimiter. For Malformed, Err describes the failure and
// Body is the original text.
type Result struct {
	Kind   ResultKind
	Matter Matter
	Body   []byte
	Err    error
}

// Extract detects, splits and parses a leading front matter block. It never
// fails outright; a broken block is reported as a Malformed result.
func Extract(src []byte) Result {
	raw, body, had, err := Split(src)
	if err != nil {
		return Result{Kind: Malformed, Matter: EmptyMatter(), Body: src, Err: err}
	}
	if !had {
		return Result{Kind: NoFrontMatter, Matter: EmptyMatter(), Body: src}
	}

	fields, err := ParseYAML(raw)
	if err != nil {
		return Result{Kind: Malformed, Matter: EmptyMatter(), Body: src, Err: err}
	}
	matter, err := NewMatter(fields)
	if err != nil {
		return Result{Kind: Malformed, Matter: EmptyMatter(), Body: src, Err: err}
	}
	return Result{Kind: Parsed, Matter: matter, Body: body}
}

// ErrFrontMatterParse is matched by every *ParseError.
var ErrFrontMatterParse = errors.New("front matter parse error")

// ParseError reports a malformed front matter block in strict mode.
type ParseError struct {
	Template string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse front matter of %q: %v", e.Template, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFrontMatterParse) hold for any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrFrontMatterParse }

// Loader applies the front matter failure policy on top of Extract.
type Loader struct {
	strict bool
	logger *slog.Logger
}

// NewLoader returns a Loader. In strict mode malformed front matter is
// returned as a *ParseError; otherwise it is logged and the template falls
// back to its original text with empty matter.
func NewLoader(strict bool, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{strict: strict, logger: logger}
}

// Strict reports whether the loader propagates parse failures.
func (l *Loader) Strict() bool { return l.strict }

// Load extracts front matter from the named template source.
func (l *Loader) Load(name string, src []byte) (Matter, []byte, error) {
	res := Extract(src)
	switch res.Kind {
	case Parsed, NoFrontMatter:
		return res.Matter, res.Body, nil
	}

	l.logger.Error("Unable to parse front matter from template",
		logfields.Template(name),
		logfields.Error(res.Err))
	if l.strict {
		return Matter{}, nil, &ParseError{Template: name, Err: res.Err}
	}
	return EmptyMatter(), src, nil
}
