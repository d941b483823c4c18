package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/louisbranch/lifeos/internal/lifeos/registry"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
)

// AppView is the dedicated app page of a module.
type AppView struct {
	Module      registry.ModuleDescriptor
	Content     registry.Content
	EntryNoun   string
	AmountLabel string
	Error       string
}

// AppPage renders a module's dedicated app: every entry with its controls
// and the add form.
func AppPage(view AppView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		desc := view.Module
		m.open("main", "class", "app-main module-app", "data-owner", desc.ID)
		m.open("nav", "class", "breadcrumbs", "aria-label", "Breadcrumb")
		m.open("a", "href", routepath.Root)
		m.text("Dashboard")
		m.close("a")
		m.elem("span", " / "+desc.Label, "aria-current", "page")
		m.close("nav")
		m.open("header", "class", "module-header")
		m.elem("h2", view.Content.Summary)
		if view.Content.Description != "" {
			m.elem("p", view.Content.Description, "class", "module-description")
		}
		m.close("header")
		if view.Error != "" {
			m.elem("p", view.Error, "class", "form-error", "role", "alert")
		}
		m.component(statList(view.Content.Stats))
		m.component(EntryForm(desc.ID, view.EntryNoun, view.AmountLabel, false))
		m.component(itemList(desc.ID, view.Content.Items, true, false))
		m.close("main")
		return m.err
	})
}
