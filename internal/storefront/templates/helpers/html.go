// Package helpers holds the markup writer and small view helpers shared by storefront templates.
package helpers

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// HTML writes markup for a templ.ComponentFunc and keeps the first write error.
type HTML struct {
	w   io.Writer
	err error
}

// NewHTML wraps w.
func NewHTML(w io.Writer) *HTML {
	return &HTML{w: w}
}

// Raw writes trusted markup verbatim.
func (h *HTML) Raw(parts ...string) {
	for _, part := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, part)
	}
}

// Text writes escaped character data.
func (h *HTML) Text(s string) {
	h.Raw(templ.EscapeString(s))
}

// Attr writes ` name="value"` with value escaped.
func (h *HTML) Attr(name, value string) {
	h.Raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// AttrIf writes the attribute only when value is non-empty.
func (h *HTML) AttrIf(name, value string) {
	if value != "" {
		h.Attr(name, value)
	}
}

// Bool writes a boolean attribute when on.
func (h *HTML) Bool(name string, on bool) {
	if on {
		h.Raw(" ", name)
	}
}

// Int writes an integer as text.
func (h *HTML) Int(n int) {
	h.Raw(strconv.Itoa(n))
}

// Render writes a child component.
func (h *HTML) Render(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// Err returns the first error encountered.
func (h *HTML) Err() error {
	return h.err
}

// Classes joins the non-empty class names.
func Classes(names ...string) string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return strings.Join(out, " ")
}
