package render

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hydessg/hyde/internal/dataset"
	"github.com/hydessg/hyde/internal/frontmatter"
	"github.com/hydessg/hyde/internal/templates"
)

type site struct {
	t       *testing.T
	root    string
	layouts string
}

func newSite(t *testing.T) *site {
	t.Helper()
	return &site{t: t, root: t.TempDir(), layouts: t.TempDir()}
}

func (s *site) page(name, content string) *site {
	s.t.Helper()
	writeFile(s.t, s.root, name, content)
	return s
}

func (s *site) layout(name, content string) *site {
	s.t.Helper()
	writeFile(s.t, s.layouts, name, content)
	return s
}

func (s *site) env(opts ...templates.Option) *templates.Environment {
	s.t.Helper()
	opts = append([]templates.Option{templates.WithLogger(quietLogger())}, opts...)
	env, err := templates.NewEnvironment([]string{s.root, s.layouts}, opts...)
	require.NoError(s.t, err)
	return env
}

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func renderString(t *testing.T, r *Renderer, name string) string {
	t.Helper()
	out, err := r.Render(context.Background(), name)
	require.NoError(t, err)
	data, err := io.ReadAll(out)
	require.NoError(t, err)
	return string(data)
}

func TestRender_LayoutWrapsContent(t *testing.T) {
	s := newSite(t).
		page("index.html", "---\ntitle: Hi\n$layout: main\n---\n{{ page.title }}").
		layout("main.html", "<h1>{{ content }}</h1>")

	r := New(s.env(), dataset.Empty(), WithLogger(quietLogger()))
	require.Equal(t, "<h1>Hi</h1>", renderString(t, r, "index.html"))
}

func TestRender_NoLayoutMatchesContentPass(t *testing.T) {
	body := "{% for n in page.items %}[{{ n }}]{% endfor %}"
	s := newSite(t).page("list.html", "---\nitems: [1, 2, 3]\n---\n"+body)
	env := s.env()

	tpl, err := env.Resolve("list.html")
	require.NoError(t, err)
	var direct bytes.Buffer
	require.NoError(t, tpl.Execute(Compose(tpl, dataset.Empty()).Vars(), &direct))

	r := New(env, dataset.Empty())
	page, err := r.RenderPage(context.Background(), "list.html")
	require.NoError(t, err)
	require.Equal(t, direct.Bytes(), page.Content)
	require.Equal(t, "[1][2][3]", string(page.Content))
	require.Empty(t, page.Layouts)
}

func TestRender_NoFrontMatterIsRenderedAsIs(t *testing.T) {
	s := newSite(t).page("plain.txt", "hello {{ page.missing }}world")
	r := New(s.env(), dataset.Empty())
	require.Equal(t, "hello world", renderString(t, r, "plain.txt"))
}

func TestRender_LayoutContentIsVerbatim(t *testing.T) {
	s := newSite(t).
		page("raw.html", "---\n$layout: wrap\n---\n<b>a & b</b>").
		layout("wrap.html", "<main>{{ content }}</main>")

	templates.SetAutoescape(true)
	t.Cleanup(func() { templates.SetAutoescape(false) })
	r := New(s.env(), dataset.Empty())
	require.Equal(t, "<main><b>a & b</b></main>", renderString(t, r, "raw.html"))
}

func TestRender_LayoutSeesPageAndData(t *testing.T) {
	snap := dataset.NewBuilder()
	require.NoError(t, snap.Add("site", "site.yaml", map[string]any{"name": "Example"}))

	s := newSite(t).
		page("about.html", "---\ntitle: About\n$layout: base\n---\nbody").
		layout("base.html", "{{ data.site.name }}|{{ page.title }}|{{ content }}")

	r := New(s.env(), snap.Snapshot())
	require.Equal(t, "Example|About|body", renderString(t, r, "about.html"))
}

func TestRender_MissingLayout(t *testing.T) {
	s := newSite(t).page("index.html", "---\n$layout: nope\n---\nx")
	r := New(s.env(), dataset.Empty())

	_, err := r.Render(context.Background(), "index.html")
	require.ErrorIs(t, err, templates.ErrTemplateNotFound)
	var nf *templates.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "nope.html", nf.Name)
	require.Contains(t, err.Error(), "index.html")
}

func TestRender_MissingTemplate(t *testing.T) {
	r := New(newSite(t).env(), dataset.Empty())
	_, err := r.Render(context.Background(), "ghost.html")
	require.ErrorIs(t, err, templates.ErrTemplateNotFound)
}

func TestRender_EvaluationFailure(t *testing.T) {
	s := newSite(t).page("bad.html", "---\nn: 1\n---\n{{ page.n.foo }}")
	r := New(s.env(), dataset.Empty())

	_, err := r.Render(context.Background(), "bad.html")
	require.ErrorIs(t, err, ErrRender)
	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "bad.html", rerr.Template)
	require.Equal(t, StageRenderingContent, rerr.Stage)
}

func TestRender_CompileFailureIsRenderError(t *testing.T) {
	s := newSite(t).
		page("index.html", "---\n$layout: broken\n---\nx").
		layout("broken.html", "{{ content|nosuchfilter }}")
	r := New(s.env(), dataset.Empty())

	_, err := r.Render(context.Background(), "index.html")
	require.ErrorIs(t, err, ErrRender)
	require.ErrorIs(t, err, templates.ErrCompile)
	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "broken.html", rerr.Layout)
}

func TestRender_StrictFrontMatter(t *testing.T) {
	s := newSite(t).page("broken.html", "---\ntitle: [oops\n---\nbody")

	r := New(s.env(templates.WithStrict(true)), dataset.Empty())
	_, err := r.Render(context.Background(), "broken.html")
	require.ErrorIs(t, err, frontmatter.ErrFrontMatterParse)

	lenient := New(s.env(), dataset.Empty())
	require.Equal(t, "---\ntitle: [oops\n---\nbody", renderString(t, lenient, "broken.html"))
}

func TestRender_LayoutChain(t *testing.T) {
	s := newSite(t).
		page("post.html", "---\ntitle: T\n$layout: article\n---\n{{ page.title }}").
		layout("article.html", "---\n$layout: base\n---\n<article>{{ content }}</article>").
		layout("base.html", "<body>{{ content }}</body>")

	r := New(s.env(), dataset.Empty())
	page, err := r.RenderPage(context.Background(), "post.html")
	require.NoError(t, err)
	require.Equal(t, "<body><article>T</article></body>", string(page.Content))
	require.Equal(t, []string{"article.html", "base.html"}, page.Layouts)
}

func TestRender_LayoutCycle(t *testing.T) {
	s := newSite(t).
		page("index.html", "---\n$layout: a\n---\nx").
		layout("a.html", "---\n$layout: b\n---\n{{ content }}").
		layout("b.html", "---\n$layout: a\n---\n{{ content }}")

	_, err := New(s.env(), dataset.Empty()).Render(context.Background(), "index.html")
	require.ErrorIs(t, err, ErrLayoutCycle)
	require.ErrorIs(t, err, ErrRender)
}

func TestRender_LayoutDepthLimit(t *testing.T) {
	s := newSite(t).
		page("index.html", "---\n$layout: a\n---\nx").
		layout("a.html", "---\n$layout: b\n---\n{{ content }}").
		layout("b.html", "[{{ content }}]")

	_, err := New(s.env(), dataset.Empty(), WithMaxLayoutDepth(1)).Render(context.Background(), "index.html")
	require.ErrorIs(t, err, ErrLayoutDepthExceeded)

	require.Equal(t, "[x]", renderString(t, New(s.env(), dataset.Empty(), WithMaxLayoutDepth(2)), "index.html"))
}

func TestRender_CompositionIsPerTemplate(t *testing.T) {
	s := newSite(t).
		page("a.html", "---\ntitle: A\n---\n{{ page.title }}").
		page("b.html", "[{{ page.title }}]")

	r := New(s.env(), dataset.Empty())
	require.Equal(t, "A", renderString(t, r, "a.html"))
	require.Equal(t, "[]", renderString(t, r, "b.html"))
}

type upperConverter struct{}

func (upperConverter) Extensions() []string { return []string{".md"} }
func (upperConverter) Convert(src []byte) ([]byte, error) {
	return []byte(strings.ToUpper(string(src))), nil
}

func TestRender_ConverterRunsBeforeLayout(t *testing.T) {
	s := newSite(t).
		page("doc.md", "---\n$layout: wrap\n---\nhello").
		page("doc.txt", "hello").
		layout("wrap.html", "<{{ content }}>")

	r := New(s.env(), dataset.Empty(), WithConverter(upperConverter{}))
	page, err := r.RenderPage(context.Background(), "doc.md")
	require.NoError(t, err)
	require.True(t, page.Converted)
	require.Equal(t, "<HELLO>", string(page.Content))

	page, err = r.RenderPage(context.Background(), "doc.txt")
	require.NoError(t, err)
	require.False(t, page.Converted)
	require.Equal(t, "hello", string(page.Content))
}

func TestRender_CanceledContext(t *testing.T) {
	s := newSite(t).page("index.html", "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(s.env(), dataset.Empty()).Render(ctx, "index.html")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRender_WarnsOnUnknownDirectives(t *testing.T) {
	s := newSite(t).
		page("index.html", "---\n$draft: true\n$layout: main\n---\nbody").
		layout("main.html", "---\n$sidebar: left\n---\n<main>{{ content }}</main>")

	var logs bytes.Buffer
	r := New(s.env(), dataset.Empty(), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.Equal(t, "<main>body</main>", renderString(t, r, "index.html"))

	out := logs.String()
	require.Contains(t, out, "Ignoring unknown directive")
	require.Contains(t, out, "directive=$draft")
	require.Contains(t, out, "directive=$sidebar")
	require.NotContains(t, out, "directive=$layout")
}
