package content

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedStoreServesPolicies(t *testing.T) {
	t.Parallel()

	store := NewEmbeddedStore()

	pages, err := store.List()
	require.NoError(t, err)
	require.Len(t, pages, 3)
	require.Equal(t, []string{"shipping", "returns", "privacy"}, []string{pages[0].Slug, pages[1].Slug, pages[2].Slug})

	shipping, err := store.Get("Shipping")
	require.NoError(t, err)
	require.Equal(t, "Shipping", shipping.Title)
	require.Contains(t, shipping.HTML, "<table>")
	require.Contains(t, shipping.HTML, `<h2 id="processing">`)
	require.Equal(t, 2026, shipping.UpdatedAt.Year())

	_, err = store.Get("../secrets")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreDerivesTitleAndSummary(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"docs/gift-wrapping.md": {Data: []byte("We wrap *every* gift order in recycled paper.\n\n<script>alert(1)</script>\n")},
		"docs/notes.txt":        {Data: []byte("ignored")},
	}
	store := NewStore(fsys, "docs")

	page, err := store.Get("gift-wrapping")
	require.NoError(t, err)
	require.Equal(t, "Gift Wrapping", page.Title)
	require.Equal(t, "We wrap every gift order in recycled paper.", page.Summary)
	require.NotContains(t, page.HTML, "<script>")

	pages, err := store.List()
	require.NoError(t, err)
	require.Len(t, pages, 1)
}

func TestStoreReportsBadFrontMatter(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"docs/broken.md": {Data: []byte("---\ntitle: [unterminated\n---\nbody")},
	}
	_, err := NewStore(fsys, "docs").Get("broken")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestRendererSanitizesLinks(t *testing.T) {
	t.Parallel()

	out, err := NewRenderer().Render("[shop](https://example.com) ~~old~~ <img src=x onerror=alert(1)>")
	require.NoError(t, err)
	require.Contains(t, out, `rel="nofollow"`)
	require.Contains(t, out, "<del>old</del>")
	require.NotContains(t, out, "onerror")
}

func TestPlainTextTruncates(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Hello world & friends", PlainText("<p>Hello <em>world</em> &amp; friends</p>", 0))
	got := PlainText("<p>"+strings.Repeat("a", 20)+"</p>", 10)
	require.Equal(t, strings.Repeat("a", 10)+"…", got)
}
