package build

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	docerrors "github.com/hydessg/hyde/internal/docs/errors"
	ferrors "github.com/hydessg/hyde/internal/foundation/errors"
	"github.com/hydessg/hyde/internal/frontmatter"
	"github.com/hydessg/hyde/internal/render"
	"github.com/hydessg/hyde/internal/storage"
	"github.com/hydessg/hyde/internal/templates"
)

func TestClassifyFileError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     string
		category ferrors.ErrorCategory
		severity ferrors.ErrorSeverity
	}{
		{"canceled", fmt.Errorf("write: %w", context.Canceled), KindCanceled, ferrors.CategoryRuntime, ferrors.SeverityFatal},
		{"front matter", &frontmatter.ParseError{Template: "a.html", Err: errors.New("bad")}, KindFrontMatter, ferrors.CategoryFrontMatter, ferrors.SeverityError},
		{"not found", &templates.NotFoundError{Name: "missing.html"}, KindTemplateNotFound, ferrors.CategoryNotFound, ferrors.SeverityError},
		{"render", &render.RenderError{Template: "a.html", Err: errors.New("boom")}, KindRender, ferrors.CategoryRender, ferrors.SeverityError},
		{"compile", &templates.CompileError{Template: "a.html", Err: errors.New("syntax")}, KindRender, ferrors.CategoryRender, ferrors.SeverityError},
		{"write", &storage.WriteError{Path: "a.html", Err: errors.New("disk full")}, KindDestinationWrite, ferrors.CategoryDestination, ferrors.SeverityError},
		{"output conflict", fmt.Errorf("%w: index.html", ErrOutputConflict), KindOutputConflict, ferrors.CategoryValidation, ferrors.SeverityFatal},
		{"read", fmt.Errorf("%w: a.png", docerrors.ErrFileReadFailed), KindRead, ferrors.CategoryFileSystem, ferrors.SeverityError},
		{"unknown", errors.New("mystery"), KindUnknown, ferrors.CategoryInternal, ferrors.SeverityFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified, kind := classifyFileError("a.html", tt.err)
			require.Equal(t, tt.kind, kind)
			require.Equal(t, tt.category, classified.Category())
			require.Equal(t, tt.severity, classified.Severity())
			require.ErrorIs(t, classified, tt.err)

			tpl, _ := classified.Context().GetString(ContextTemplate)
			require.Equal(t, "a.html", tpl)
			got, _ := classified.Context().GetString(ContextKind)
			require.Equal(t, tt.kind, got)
		})
	}
}

func TestAggregateKeepsFirstCategory(t *testing.T) {
	require.NoError(t, aggregate(nil, 3))

	first, _ := classifyFileError("a.html", &templates.NotFoundError{Name: "layout.html"})
	second, _ := classifyFileError("b.html", &render.RenderError{Template: "b.html", Err: errors.New("boom")})

	err := aggregate([]*ferrors.ClassifiedError{first, second}, 3)
	require.ErrorIs(t, err, ErrBuildFailed)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
	require.Contains(t, err.Error(), "2 of 3 files failed")

	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	failed, _ := classified.Context().GetString("failed")
	require.Equal(t, "a.html, b.html", failed)
}
