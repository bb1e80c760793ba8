// Package markdown converts rendered Markdown pages to HTML with goldmark.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Extensions handled by the converter.
var Extensions = []string{".md", ".markdown"}

// OutputExtension replaces the source extension of converted pages.
const OutputExtension = ".html"

// OutputContentType is the content type of converted pages.
const OutputContentType = "text/html"

// Options controls goldmark behavior.
type Options struct {
	// GFM enables tables, strikethrough, autolinks and task lists.
	GFM bool
	// Typographer replaces quotes and dashes with typographic entities.
	Typographer bool
	// UnsafeHTML passes raw HTML in the Markdown through to the output.
	UnsafeHTML bool
	// HeadingIDs adds generated id attributes to headings.
	HeadingIDs bool
}

// Converter turns Markdown into HTML.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter builds a converter for opts.
func NewConverter(opts Options) *Converter {
	var exts []goldmark.Extender
	if opts.GFM {
		exts = append(exts, extension.GFM)
	}
	if opts.Typographer {
		exts = append(exts, extension.Typographer)
	}

	var parserOpts []parser.Option
	if opts.HeadingIDs {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}

	var rendererOpts []goldmark.Option
	if opts.UnsafeHTML {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	all := append([]goldmark.Option{
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parserOpts...),
	}, rendererOpts...)
	return &Converter{md: goldmark.New(all...)}
}

// Extensions lists the source extensions the converter handles.
func (c *Converter) Extensions() []string {
	out := make([]string, len(Extensions))
	copy(out, Extensions)
	return out
}

// Convert renders Markdown src to HTML.
func (c *Converter) Convert(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// OutputPath maps the relative path of a converted page to its output path.
func OutputPath(rel string) string {
	for _, ext := range Extensions {
		if n := len(rel) - len(ext); n > 0 && strings.EqualFold(rel[n:], ext) {
			return rel[:n] + OutputExtension
		}
	}
	return rel
}
