package render

import (
	"errors"
	"fmt"
)

// ErrRender is matched by every *RenderError.
var ErrRender = errors.New("render error")

var (
	// ErrLayoutCycle reports a layout chain that returns to a layout already in it.
	ErrLayoutCycle = errors.New("layout cycle")
	// ErrLayoutDepthExceeded reports a layout chain longer than the configured depth.
	ErrLayoutDepthExceeded = errors.New("layout chain too deep")
)

// RenderError reports a failure while evaluating a template or layout.
type RenderError struct {
	Template string
	// Layout is the layout template involved, empty for the content pass.
	Layout string
	Stage  Stage
	Err    error
}

func (e *RenderError) Error() string {
	if e.Layout != "" {
		return fmt.Sprintf("render %q (%s, layout %q): %v", e.Template, e.Stage, e.Layout, e.Err)
	}
	return fmt.Sprintf("render %q (%s): %v", e.Template, e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRender) hold for any RenderError.
func (e *RenderError) Is(target error) bool { return target == ErrRender }
