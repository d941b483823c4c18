package routepath

import "testing"

func TestTopLevelRouteConstants(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		Root:             "/",
		Health:           "/up",
		Metrics:          "/metrics",
		ServiceWorker:    "/sw.js",
		ModuleDeactivate: "/modules/deactivate",
		SettingsClear:    "/settings/clear",
		BridgeStatus:     "/bridge/status",
		BridgeSW:         "/bridge/service-worker",
		BridgeNotify:     "/bridge/notifications",
		Events:           "/events",
	}
	for got, want := range tests {
		if got != want {
			t.Fatalf("route = %q, want %q", got, want)
		}
	}
}

func TestBuildersEscapeSegments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "module", got: Module("todo"), want: "/modules/todo"},
		{name: "module open", got: ModuleOpen("finance"), want: "/modules/finance/open"},
		{name: "widget", got: Widget("todo-open"), want: "/widgets/todo-open"},
		{name: "app", got: App("fitness"), want: "/apps/fitness/"},
		{name: "entries", got: AppEntries("habits"), want: "/apps/habits/entries"},
		{name: "toggle", got: AppEntryToggle("todo", "e 1"), want: "/apps/todo/entries/e%201/toggle"},
		{name: "delete", got: AppEntryDelete("todo", "e/1"), want: "/apps/todo/entries/e%2F1/delete"},
		{name: "root with module", got: RootWithModule("goals"), want: "/?module=goals"},
		{name: "root without module", got: RootWithModule(" "), want: "/"},
		{name: "settings notice", got: SettingsWithNotice("cleared"), want: "/settings?notice=cleared"},
		{name: "settings plain", got: SettingsWithNotice(""), want: "/settings"},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Fatalf("%s = %q, want %q", tc.name, tc.got, tc.want)
		}
	}
}
