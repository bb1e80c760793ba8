package build

import (
	"context"
	"errors"
	"fmt"
	"strings"

	docerrors "github.com/hydessg/hyde/internal/docs/errors"
	ferrors "github.com/hydessg/hyde/internal/foundation/errors"
	"github.com/hydessg/hyde/internal/frontmatter"
	"github.com/hydessg/hyde/internal/render"
	"github.com/hydessg/hyde/internal/storage"
	"github.com/hydessg/hyde/internal/templates"
)

// Failure kinds recorded in error context and build reports.
const (
	KindFrontMatter      = "front_matter_parse"
	KindTemplateNotFound = "template_not_found"
	KindRender           = "render"
	KindDestinationWrite = "destination_write"
	KindDestinationClean = "destination_clean"
	KindRead             = "read"
	KindOutputConflict   = "output_conflict"
	KindCanceled         = "canceled"
	KindUnknown          = "unknown"
)

// Context keys attached to classified per-file errors.
const (
	ContextTemplate = "template"
	ContextKind     = "kind"
)

// ErrBuildFailed is wrapped by the aggregate error of a keep-going run.
var ErrBuildFailed = errors.New("build failed")

// ErrOutputConflict is returned when two sources map to the same output path.
var ErrOutputConflict = errors.New("output path already written")

// classifyFileError maps a per-file failure to its kind and category and
// wraps it with the template name.
func classifyFileError(rel string, err error) (*ferrors.ClassifiedError, string) {
	kind, newError := failureKind(err)
	return newError("failed to process "+rel).
		WithCause(err).
		WithContext(ContextTemplate, rel).
		WithContext(ContextKind, kind).
		Build(), kind
}

// failureKind picks the failure kind and the matching error constructor.
func failureKind(err error) (string, func(string) *ferrors.ErrorBuilder) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled, ferrors.RuntimeError
	case errors.Is(err, frontmatter.ErrFrontMatterParse):
		return KindFrontMatter, ferrors.FrontMatterError
	case errors.Is(err, templates.ErrTemplateNotFound):
		return KindTemplateNotFound, ferrors.NotFoundError
	case errors.Is(err, render.ErrRender), errors.Is(err, templates.ErrCompile):
		return KindRender, ferrors.RenderError
	case errors.Is(err, storage.ErrDestinationWrite):
		return KindDestinationWrite, ferrors.DestinationError
	case errors.Is(err, storage.ErrDestinationClean):
		return KindDestinationClean, ferrors.DestinationError
	case errors.Is(err, ErrOutputConflict):
		return KindOutputConflict, ferrors.ValidationError
	case errors.Is(err, docerrors.ErrFileReadFailed):
		return KindRead, ferrors.FileSystemError
	default:
		return KindUnknown, ferrors.InternalError
	}
}

// aggregate combines the failures of a keep-going run. The category of the
// first failure is kept so the exit code reflects it.
func aggregate(failures []*ferrors.ClassifiedError, total int) error {
	if len(failures) == 0 {
		return nil
	}
	names := make([]string, 0, len(failures))
	errs := make([]error, 0, len(failures)+1)
	errs = append(errs, ErrBuildFailed)
	for _, f := range failures {
		name, _ := f.Context().GetString(ContextTemplate)
		names = append(names, name)
		errs = append(errs, f)
	}
	return ferrors.WrapError(errors.Join(errs...), failures[0].Category(),
		fmt.Sprintf("%d of %d files failed", len(failures), total)).
		WithContext("failed", strings.Join(names, ", ")).
		Build()
}
