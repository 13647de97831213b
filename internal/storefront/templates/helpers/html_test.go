package helpers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"
)

func TestHTMLEscapesTextAndAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := NewHTML(&buf)
	h.Raw("<a")
	h.Attr("href", `/products?q="x"&y=1`)
	h.AttrIf("title", "")
	h.Bool("hidden", true)
	h.Raw(">")
	h.Text("<Rem & Ram>")
	h.Raw("</a>")
	require.NoError(t, h.Err())
	require.Equal(t, `<a href="/products?q=&#34;x&#34;&amp;y=1" hidden>&lt;Rem &amp; Ram&gt;</a>`, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestHTMLKeepsFirstError(t *testing.T) {
	t.Parallel()

	h := NewHTML(failingWriter{})
	h.Raw("a", "b")
	h.Render(context.Background(), templ.ComponentFunc(func(context.Context, io.Writer) error {
		t.Fatal("child must not render after a write error")
		return nil
	}))
	require.EqualError(t, h.Err(), "closed")
}

func TestClasses(t *testing.T) {
	t.Parallel()

	require.Equal(t, "card is-sale", Classes("card", " ", "is-sale", ""))
}
