package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
)

// AppName is the product name shown in the title and header.
const AppName = "LifeOS"

// PageContext provides shared layout context for pages.
type PageContext struct {
	Title       string
	CurrentPath string
	// ActiveModule marks the body so scripts and styles can key off it.
	ActiveModule string
}

// PageTitle returns the document title for a page heading.
func PageTitle(heading string) string {
	heading = strings.TrimSpace(heading)
	if heading == "" || heading == AppName {
		return AppName
	}
	return heading + " · " + AppName
}

// Page wraps body in the document shell: viewport meta, stylesheet, script,
// the LifeOS header and the settings control.
func Page(page PageContext, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.raw("<!DOCTYPE html>")
		m.open("html", "lang", "en")
		m.open("head")
		m.open("meta", "charset", "utf-8")
		m.open("meta", "name", "viewport", "content", "width=device-width, initial-scale=1")
		m.open("meta", "name", "theme-color", "content", "#1f2937")
		m.elem("title", PageTitle(page.Title))
		m.open("link", "rel", "stylesheet", "href", routepath.StaticPrefix+"app.css")
		m.open("link", "rel", "manifest", "href", routepath.Manifest)
		m.open("script", "src", routepath.StaticPrefix+"app.js", "defer?", "true")
		m.close("script")
		m.close("head")
		m.open("body", "data-path", page.CurrentPath, "data-active-module", page.ActiveModule)
		m.open("header", "class", "app-header")
		m.open("a", "class", "brand", "href", routepath.Root)
		m.elem("h1", AppName)
		m.close("a")
		m.open("a", "class", classes("settings-btn", activeClass(page.CurrentPath == routepath.Settings)), "href", routepath.Settings, "aria-label", "Settings")
		m.elem("span", "⚙", "aria-hidden", "true")
		m.elem("span", "Settings", "class", "settings-label")
		m.close("a")
		m.close("header")
		m.component(body)
		m.close("body")
		m.close("html")
		return m.err
	})
}

func activeClass(active bool) string {
	if active {
		return "active"
	}
	return ""
}
