package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "template not found", err: NotFoundError("missing").Build(), expected: 3},
		{name: "front matter", err: FrontMatterError("bad yaml").Build(), expected: 4},
		{name: "render", err: RenderError("bad expression").Build(), expected: 4},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "dataset", err: DatasetError("bad dataset").Build(), expected: 7},
		{name: "destination", err: DestinationError("write failed").Build(), expected: 11},
		{name: "wrapped render", err: fmt.Errorf("build: %w", RenderError("x").Build()), expected: 4},
		{name: "unclassified error", err: &customError{msg: "unknown error"}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{name: "nil error", err: nil, contains: []string{""}},
		{
			name:     "internal error hides details",
			err:      InternalError("internal issue").Build(),
			contains: []string{"use -v for details"},
		},
		{
			name: "render error names the template",
			err: WrapError(errors.New("unexpected token"), CategoryRender, "render failed").
				WithContext("template", "blog/post.html").
				WithContext("kind", "render").
				Build(),
			contains: []string{"render failed", "template=blog/post.html", "kind=render", "unexpected token"},
		},
		{
			name:     "unclassified error",
			err:      &customError{msg: "something broke"},
			contains: []string{"Error: something broke"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.FormatError(tt.err)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatError() = %q, want to contain %q", got, want)
				}
			}
		})
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var stderr, logs bytes.Buffer
	adapter := NewCLIErrorAdapter(true, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.stderr = &stderr
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(NotFoundError("template not found").WithContext("template", "x.html").Build())

	if code != 3 {
		t.Errorf("expected exit code 3, got %d", code)
	}
	if !strings.Contains(stderr.String(), "template not found") {
		t.Errorf("expected message on stderr, got %q", stderr.String())
	}
	if !strings.Contains(logs.String(), "category=not_found") {
		t.Errorf("expected category in log output, got %q", logs.String())
	}

	code = -1
	adapter.HandleError(nil)
	if code != -1 {
		t.Errorf("expected nil error to not exit, got %d", code)
	}
}

type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}
