// Package templates renders the LifeOS HTML surface as templ components.
package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// markup accumulates escaped HTML and keeps the first write error, the way
// generated templ code threads its buffer.
type markup struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newMarkup(ctx context.Context, w io.Writer) *markup {
	return &markup{ctx: ctx, w: w}
}

func (m *markup) raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

func (m *markup) text(s string) {
	m.raw(templ.EscapeString(s))
}

// open writes a start tag. attrs are name/value pairs; an empty value with a
// name ending in "?" writes a boolean attribute only when the value is "true".
func (m *markup) open(tag string, attrs ...string) {
	m.raw("<" + tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		name, value := attrs[i], attrs[i+1]
		if boolean, ok := strings.CutSuffix(name, "?"); ok {
			if value == "true" {
				m.raw(" " + boolean)
			}
			continue
		}
		m.raw(" " + name + "=\"" + templ.EscapeString(value) + "\"")
	}
	m.raw(">")
}

func (m *markup) close(tag string) {
	m.raw("</" + tag + ">")
}

// elem writes a complete element with escaped text content.
func (m *markup) elem(tag, content string, attrs ...string) {
	m.open(tag, attrs...)
	m.text(content)
	m.close(tag)
}

func (m *markup) component(c templ.Component) {
	if m.err != nil || c == nil {
		return
	}
	m.err = c.Render(m.ctx, m.w)
}

func classes(names ...string) string {
	kept := names[:0:0]
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			kept = append(kept, name)
		}
	}
	return strings.Join(kept, " ")
}

func boolAttr(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
