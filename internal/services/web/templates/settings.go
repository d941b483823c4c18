package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
)

// NamespaceUsage is one row of the storage table.
type NamespaceUsage struct {
	ID   string
	Size string
}

// ReminderRow is one scheduled reminder.
type ReminderRow struct {
	Module string
	Text   string
	Due    string
	State  string
}

// ModuleOption is a selectable module in the reminder form.
type ModuleOption struct {
	ID    string
	Label string
}

// SettingsView is the settings page state.
type SettingsView struct {
	Used               string
	Quota              string
	Keys               int
	Namespaces         []NamespaceUsage
	ServiceWorker      string
	ServiceWorkerError string
	Notifications      string
	SecureContext      bool
	Reminders          []ReminderRow
	Modules            []ModuleOption
	Notice             string
	Error              string
}

// SettingsPage renders storage usage, the confirmed clear-all form,
// background capability status and reminders.
func SettingsPage(view SettingsView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.open("main", "class", "app-main settings")
		m.elem("h2", "Settings")
		if view.Notice != "" {
			m.elem("p", view.Notice, "class", "notice", "role", "status")
		}
		if view.Error != "" {
			m.elem("p", view.Error, "class", "form-error", "role", "alert")
		}

		m.open("section", "class", "settings-storage", "aria-labelledby", "settings-storage-title")
		m.elem("h3", "Storage", "id", "settings-storage-title")
		m.elem("p", view.Used+" of "+view.Quota+" used across "+strconv.Itoa(view.Keys)+" keys.", "class", "storage-usage")
		if len(view.Namespaces) > 0 {
			m.open("table", "class", "storage-table")
			m.open("thead")
			m.open("tr")
			m.elem("th", "Module", "scope", "col")
			m.elem("th", "Size", "scope", "col")
			m.close("tr")
			m.close("thead")
			m.open("tbody")
			for _, ns := range view.Namespaces {
				m.open("tr", "data-namespace", ns.ID)
				m.elem("td", ns.ID)
				m.elem("td", ns.Size)
				m.close("tr")
			}
			m.close("tbody")
			m.close("table")
		}
		m.open("form", "class", "clear-form", "method", "post", "action", routepath.SettingsClear)
		m.elem("label", "Type clear-all to erase every module's data", "for", "clear-confirm")
		m.open("input", "id", "clear-confirm", "name", "confirm", "type", "text", "autocomplete", "off", "required?", "true")
		m.elem("button", "Clear all data", "type", "submit", "class", "btn btn-danger")
		m.close("form")
		m.close("section")

		m.open("section", "class", "settings-capabilities", "aria-labelledby", "settings-capabilities-title")
		m.elem("h3", "Background services", "id", "settings-capabilities-title")
		m.open("dl", "class", "capabilities")
		m.open("div", "class", "capability", "data-capability", "service-worker")
		m.elem("dt", "Offline support")
		m.elem("dd", view.ServiceWorker)
		m.close("div")
		m.open("div", "class", "capability", "data-capability", "notifications")
		m.elem("dt", "Notifications")
		m.elem("dd", view.Notifications)
		m.close("div")
		m.close("dl")
		if view.ServiceWorkerError != "" {
			m.elem("p", view.ServiceWorkerError, "class", "capability-error")
		}
		if !view.SecureContext {
			m.elem("p", "Offline support and notifications need https or a localhost address.", "class", "capability-hint")
		}
		m.elem("button", "Enable notifications", "type", "button", "class", "btn enable-notifications", "data-action", "enable-notifications")
		m.close("section")

		m.open("section", "class", "settings-reminders", "aria-labelledby", "settings-reminders-title")
		m.elem("h3", "Reminders", "id", "settings-reminders-title")
		if len(view.Reminders) == 0 {
			m.elem("p", "No reminders scheduled.", "class", "reminders-empty")
		} else {
			m.open("ul", "class", "reminders")
			for _, r := range view.Reminders {
				m.open("li", "class", "reminder reminder-"+r.State)
				m.elem("strong", r.Module)
				m.text(" " + r.Text + " ")
				m.elem("small", r.Due+" · "+r.State)
				m.close("li")
			}
			m.close("ul")
		}
		m.open("form", "class", "reminder-form", "method", "post", "action", routepath.SettingsReminders)
		m.elem("label", "Module", "for", "reminder-module")
		m.open("select", "id", "reminder-module", "name", "module")
		for _, opt := range view.Modules {
			m.elem("option", opt.Label, "value", opt.ID)
		}
		m.close("select")
		m.elem("label", "Reminder", "for", "reminder-text")
		m.open("input", "id", "reminder-text", "name", "text", "type", "text", "required?", "true")
		m.elem("label", "Due", "for", "reminder-due")
		m.open("input", "id", "reminder-due", "name", "due", "type", "datetime-local", "required?", "true")
		m.open("input", "type", "hidden", "name", "tz_offset", "value", "", "data-tz-offset?", "true")
		m.elem("button", "Schedule", "type", "submit", "class", "btn")
		m.close("form")
		m.close("section")
		m.close("main")
		return m.err
	})
}
