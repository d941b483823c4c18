// Package routepath stores canonical HTTP paths for web modules.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root              = "/"
	Health            = "/up"
	Metrics           = "/metrics"
	ServiceWorker     = "/sw.js"
	Manifest          = "/manifest.webmanifest"
	StaticPrefix      = "/static/"
	ModulesPrefix     = "/modules/"
	ModulePattern     = ModulesPrefix + "{moduleID}"
	ModuleOpenPattern = ModulesPrefix + "{moduleID}/open"
	ModuleDeactivate  = ModulesPrefix + "deactivate"
	WidgetsPrefix     = "/widgets/"
	WidgetPattern     = WidgetsPrefix + "{widgetID}"
	AppsPrefix        = "/apps/"
	AppPattern        = AppsPrefix + "{moduleID}/{$}"
	AppEntriesPattern = AppsPrefix + "{moduleID}/entries"
	AppTogglePattern  = AppsPrefix + "{moduleID}/entries/{entryID}/toggle"
	AppDeletePattern  = AppsPrefix + "{moduleID}/entries/{entryID}/delete"
	Settings          = "/settings"
	SettingsPrefix    = "/settings/"
	SettingsClear     = SettingsPrefix + "clear"
	SettingsReminders = SettingsPrefix + "reminders"
	BridgePrefix      = "/bridge/"
	BridgeStatus      = BridgePrefix + "status"
	BridgeSW          = BridgePrefix + "service-worker"
	BridgeNotify      = BridgePrefix + "notifications"
	Events            = "/events"
	EventsPrefix      = "/events/"
	ModuleQueryKey    = "module"
	NoticeQueryKey    = "notice"
)

// Module returns the activation route of a module.
func Module(moduleID string) string {
	return ModulesPrefix + escapeSegment(moduleID)
}

// ModuleOpen returns the hand-off route of an external module.
func ModuleOpen(moduleID string) string {
	return Module(moduleID) + "/open"
}

// Widget returns the refresh route of a widget.
func Widget(widgetID string) string {
	return WidgetsPrefix + escapeSegment(widgetID)
}

// App returns the dedicated app route of a module.
func App(moduleID string) string {
	return AppsPrefix + escapeSegment(moduleID) + "/"
}

// AppEntries returns the entry creation route of a module.
func AppEntries(moduleID string) string {
	return App(moduleID) + "entries"
}

// AppEntryToggle returns the toggle route of one entry.
func AppEntryToggle(moduleID, entryID string) string {
	return AppEntries(moduleID) + "/" + escapeSegment(entryID) + "/toggle"
}

// AppEntryDelete returns the delete route of one entry.
func AppEntryDelete(moduleID, entryID string) string {
	return AppEntries(moduleID) + "/" + escapeSegment(entryID) + "/delete"
}

// RootWithModule returns the dashboard route that activates moduleID.
func RootWithModule(moduleID string) string {
	moduleID = strings.TrimSpace(moduleID)
	if moduleID == "" {
		return Root
	}
	return Root + "?" + url.Values{ModuleQueryKey: {moduleID}}.Encode()
}

// SettingsWithNotice returns the settings route carrying a notice code.
func SettingsWithNotice(notice string) string {
	notice = strings.TrimSpace(notice)
	if notice == "" {
		return Settings
	}
	return Settings + "?" + url.Values{NoticeQueryKey: {notice}}.Encode()
}

func escapeSegment(value string) string {
	return url.PathEscape(strings.TrimSpace(value))
}
