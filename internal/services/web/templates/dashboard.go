package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/louisbranch/lifeos/internal/lifeos/dashboard"
	"github.com/louisbranch/lifeos/internal/lifeos/registry"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
)

// ModuleContentID is the DOM id of the region module switches replace.
const ModuleContentID = "module-content"

// ModuleView is the content region state.
type ModuleView struct {
	// Module is the zero descriptor when no module is active.
	Module   registry.ModuleDescriptor
	Content  registry.Content
	Degraded bool
	Error    string
	// NavSeq is the navigation sequence the view reflects; zero when unknown.
	NavSeq uint64
}

// Active reports whether the view shows a module.
func (v ModuleView) Active() bool {
	return v.Module.ID != ""
}

// DashboardView is the full dashboard page state.
type DashboardView struct {
	Nav     []dashboard.NavEntry
	Module  ModuleView
	Widgets []dashboard.WidgetResult
}

// Dashboard renders the navigation, the module content region and widgets.
func Dashboard(view DashboardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.open("div", "class", "app-layout")
		m.component(Nav(view.Nav))
		m.open("main", "class", "app-main")
		m.component(ModuleContent(view.Module))
		m.component(WidgetGrid(view.Widgets))
		m.close("main")
		m.close("div")
		return m.err
	})
}

// Nav renders the module navigation. The active entry carries the active
// class and aria-current.
func Nav(entries []dashboard.NavEntry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.open("nav", "class", "main-nav", "aria-label", "Modules")
		m.open("ul", "class", "nav-list")
		for _, entry := range entries {
			m.open("li")
			attrs := []string{
				"class", classes("nav-item", activeClass(entry.Active)),
				"href", routepath.Module(entry.ID),
				"data-module", entry.ID,
				"data-external", boolAttr(entry.External),
			}
			if entry.Active {
				attrs = append(attrs, "aria-current", "page")
			}
			m.open("a", attrs...)
			m.elem("span", entry.Icon, "class", "nav-icon", "aria-hidden", "true")
			m.elem("h3", entry.Label)
			m.elem("p", entry.Summary, "class", "nav-summary")
			m.close("a")
			m.close("li")
		}
		m.close("ul")
		m.close("nav")
		return m.err
	})
}

// ModuleContent renders the #module-content region. It is both part of the
// full page and the fragment answered to in-page switches.
func ModuleContent(view ModuleView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.open("section",
			"id", ModuleContentID,
			"class", "module-content",
			"aria-live", "polite",
			"data-active-module", view.Module.ID,
			"data-nav-seq", strconv.FormatUint(view.NavSeq, 10),
		)
		if !view.Active() {
			m.open("div", "class", "module-empty")
			m.elem("h2", "Welcome to "+AppName)
			m.elem("p", "Pick a module to get started.")
			m.close("div")
			m.close("section")
			return m.err
		}

		desc := view.Module
		content := view.Content
		m.open("article", "class", classes("module-view", degradedClass(view.Degraded)), "data-owner", desc.ID)
		m.open("header", "class", "module-header")
		m.elem("h2", content.Summary)
		if content.Description != "" {
			m.elem("p", content.Description, "class", "module-description")
		}
		m.close("header")
		if view.Error != "" {
			m.elem("p", view.Error, "class", "form-error", "role", "alert")
		}
		if view.Degraded {
			m.elem("p", "Saved data for this module could not be read.", "class", "module-warning", "role", "status")
		}
		m.component(statList(content.Stats))
		m.component(itemList(desc.ID, content.Items, content.Editable, true))
		if content.Editable {
			m.component(EntryForm(desc.ID, content.EntryNoun, content.AmountLabel, true))
		}
		if desc.External() {
			m.open("form", "class", "open-app", "method", "post", "action", routepath.ModuleOpen(desc.ID))
			m.elem("button", desc.ActionLabel, "type", "submit", "class", "open-app-btn", "data-owner", desc.ID)
			m.close("form")
		}
		m.close("article")
		m.close("section")
		return m.err
	})
}

// WidgetGrid renders every widget result.
func WidgetGrid(results []dashboard.WidgetResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.open("section", "class", "widgets", "aria-label", "Widgets")
		m.open("div", "class", "widget-grid")
		for _, result := range results {
			m.component(Widget(result))
		}
		m.close("div")
		m.close("section")
		return m.err
	})
}

// Widget renders one widget card, or its placeholder when rendering failed.
func Widget(result dashboard.WidgetResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		desc := result.Widget
		view := result.View
		state := ""
		switch {
		case result.Failed:
			state = "widget-failed"
		case view.Empty:
			state = "widget-empty"
		}
		m.open("article",
			"class", classes("widget", state),
			"id", "widget-"+desc.ID,
			"data-widget", desc.ID,
			"data-owner", desc.ModuleID,
			"data-kind", desc.Kind,
			"data-refresh", string(desc.Refresh),
			"data-src", routepath.Widget(desc.ID),
		)
		m.elem("h4", desc.Title, "class", "widget-title")
		if result.Failed {
			m.elem("p", dashboard.PlaceholderText, "class", "widget-placeholder")
			m.close("article")
			return m.err
		}
		m.elem("p", view.Headline, "class", "widget-headline")
		if view.Detail != "" {
			m.elem("p", view.Detail, "class", "widget-detail")
		}
		if len(view.Lines) > 0 {
			m.open("ul", "class", "widget-lines")
			for _, line := range view.Lines {
				m.elem("li", line)
			}
			m.close("ul")
		}
		m.open("a", "class", "widget-link", "href", routepath.Module(desc.ModuleID), "data-owner", desc.ModuleID)
		m.text("Go to module")
		m.close("a")
		m.close("article")
		return m.err
	})
}

// EntryForm renders the add-entry form of a module. inShell forms answer
// with the module content fragment instead of the dedicated app page.
func EntryForm(moduleID, noun, amountLabel string, inShell bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		if noun == "" {
			noun = "entry"
		}
		m.open("form", "class", "entry-form", "method", "post", "action", routepath.AppEntries(moduleID), "data-fragment?", boolAttr(inShell))
		if inShell {
			m.open("input", "type", "hidden", "name", "return", "value", "shell")
		}
		m.elem("label", "New "+noun, "for", "entry-text-"+moduleID, "class", "visually-hidden")
		m.open("textarea", "id", "entry-text-"+moduleID, "name", "text", "rows", "2", "required?", "true", "placeholder", "New "+noun)
		m.close("textarea")
		if amountLabel != "" {
			m.elem("label", amountLabel, "for", "entry-amount-"+moduleID)
			m.open("input", "id", "entry-amount-"+moduleID, "name", "amount", "type", "number", "step", "any", "inputmode", "decimal")
		}
		m.elem("button", "Add "+noun, "type", "submit", "class", "btn")
		m.close("form")
		return m.err
	})
}

func statList(stats []registry.Stat) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(stats) == 0 {
			return nil
		}
		m := newMarkup(ctx, w)
		m.open("dl", "class", "module-stats")
		for _, stat := range stats {
			m.open("div", "class", "stat")
			m.elem("dt", stat.Label)
			m.elem("dd", stat.Value)
			m.close("div")
		}
		m.close("dl")
		return m.err
	})
}

func itemList(moduleID string, items []registry.Item, editable, inShell bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		if len(items) == 0 {
			m.elem("p", "Nothing here yet.", "class", "module-items-empty")
			return m.err
		}
		m.open("ul", "class", "module-items")
		for _, item := range items {
			m.open("li", "class", classes("module-item", doneClass(item.Done)), "data-entry", item.ID)
			m.elem("span", item.Text, "class", "item-text")
			if item.Detail != "" {
				m.elem("small", item.Detail, "class", "item-detail")
			}
			if editable {
				m.component(itemControls(moduleID, item, inShell))
			}
			m.close("li")
		}
		m.close("ul")
		return m.err
	})
}

func itemControls(moduleID string, item registry.Item, inShell bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		toggleLabel := "Mark done"
		if item.Done {
			toggleLabel = "Mark open"
		}
		for _, control := range []struct {
			action string
			label  string
			class  string
		}{
			{action: routepath.AppEntryToggle(moduleID, item.ID), label: toggleLabel, class: "btn-toggle"},
			{action: routepath.AppEntryDelete(moduleID, item.ID), label: "Delete", class: "btn-delete"},
		} {
			m.open("form", "class", "item-control", "method", "post", "action", control.action, "data-fragment?", boolAttr(inShell))
			if inShell {
				m.open("input", "type", "hidden", "name", "return", "value", "shell")
			}
			m.elem("button", control.label, "type", "submit", "class", classes("btn", control.class))
			m.close("form")
		}
		return m.err
	})
}

func degradedClass(degraded bool) string {
	if degraded {
		return "module-degraded"
	}
	return ""
}

func doneClass(done bool) string {
	if done {
		return "done"
	}
	return ""
}
