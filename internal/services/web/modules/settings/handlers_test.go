package settings

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/lifeos/internal/lifeos/bridge"
	module "github.com/louisbranch/lifeos/internal/services/web/module"
	"github.com/louisbranch/lifeos/internal/services/web/webtest"
)

func newTestHandler(t *testing.T) (http.Handler, module.Dependencies) {
	t.Helper()
	deps := webtest.Dependencies(t)
	mount, err := New(deps).Mount()
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return mount.Handler, deps
}

func TestSettingsPageShowsUsage(t *testing.T) {
	t.Parallel()

	h, deps := newTestHandler(t)
	book, _ := deps.Shell.Book("journal")
	if _, err := book.Add(context.Background(), "Dear diary", ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	for _, path := range []string{"/settings", "/settings/"} {
		rr := webtest.Get(h, path, false)
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, rr.Code)
		}
		doc := webtest.Document(t, rr)
		if doc.Find(".settings-btn").Length() != 1 {
			t.Fatal("settings button missing")
		}
		if doc.Find(`tr[data-namespace="journal"]`).Length() != 1 {
			t.Fatalf("journal usage row missing: %q", doc.Find(".storage-table").Text())
		}
		if !strings.Contains(doc.Find(".storage-usage").Text(), "of 5.2 MB") {
			t.Fatalf("usage = %q", doc.Find(".storage-usage").Text())
		}
		if doc.Find("#reminder-module option").Length() != 8 {
			t.Fatal("reminder form should list every module")
		}
	}
}

func TestClearRequiresConfirmation(t *testing.T) {
	t.Parallel()

	h, deps := newTestHandler(t)
	book, _ := deps.Shell.Book("todo")
	ctx := context.Background()
	if _, err := book.Add(ctx, "Keep me", ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	rr := webtest.PostForm(h, "/settings/clear", url.Values{"confirm": {"yes"}}, false)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if webtest.Document(t, rr).Find(".form-error").Length() != 1 {
		t.Fatal("expected confirmation error")
	}
	if entries, _ := book.Entries(ctx); len(entries) != 1 {
		t.Fatalf("entries = %+v, want data kept", entries)
	}
}

func TestClearAllWipesDataAndDeactivates(t *testing.T) {
	t.Parallel()

	h, deps := newTestHandler(t)
	ctx := context.Background()
	book, _ := deps.Shell.Book("habits")
	if _, err := book.Add(ctx, "Stretch", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := deps.Shell.Controller.Activate(ctx, "habits"); err != nil {
		t.Fatalf("activate: %v", err)
	}

	rr := webtest.PostForm(h, "/settings/clear", url.Values{"confirm": {"clear-all"}}, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/settings?notice=cleared" {
		t.Fatalf("response = %d %q", rr.Code, rr.Header().Get("Location"))
	}
	usage, err := deps.Shell.Store.Usage(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if usage.Keys != 0 {
		t.Fatalf("keys after clear = %d", usage.Keys)
	}
	if deps.Shell.Controller.State().Active() {
		t.Fatal("clear should return to NoModuleActive")
	}

	doc := webtest.Document(t, webtest.Get(h, "/settings?notice=cleared", false))
	if got := doc.Find(".notice").Text(); got != "All module data was cleared." {
		t.Fatalf("notice = %q", got)
	}
}

func TestScheduleReminder(t *testing.T) {
	t.Parallel()

	h, deps := newTestHandler(t)
	form := url.Values{
		"module":    {"habits"},
		"text":      {"Stretch"},
		"due":       {"2026-03-02T12:00"},
		"tz_offset": {"-60"},
	}
	rr := webtest.PostForm(h, "/settings/reminders", form, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/settings?notice=scheduled" {
		t.Fatalf("response = %d %q", rr.Code, rr.Header().Get("Location"))
	}
	reminders, err := deps.Shell.Bridge.Reminders(context.Background())
	if err != nil {
		t.Fatalf("reminders: %v", err)
	}
	if len(reminders) != 1 {
		t.Fatalf("reminders = %+v", reminders)
	}
	want := time.Date(2026, time.March, 2, 11, 0, 0, 0, time.UTC)
	if !reminders[0].DueAt.Equal(want) || reminders[0].State != bridge.ReminderPending {
		t.Fatalf("reminder = %+v, want due %v", reminders[0], want)
	}

	doc := webtest.Document(t, webtest.Get(h, "/settings", false))
	row := doc.Find("li.reminder-pending")
	if row.Length() != 1 || !strings.Contains(row.Text(), "Habits") {
		t.Fatalf("reminder row = %q", row.Text())
	}
}

func TestScheduleReminderValidation(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	tests := []struct {
		name string
		form url.Values
	}{
		{name: "missing due", form: url.Values{"module": {"habits"}, "text": {"x"}}},
		{name: "bad due", form: url.Values{"module": {"habits"}, "text": {"x"}, "due": {"tomorrow"}}},
		{name: "bad offset", form: url.Values{"module": {"habits"}, "text": {"x"}, "due": {"2026-03-02T12:00"}, "tz_offset": {"east"}}},
		{name: "unknown module", form: url.Values{"module": {"nope"}, "text": {"x"}, "due": {"2026-03-02T12:00"}}},
		{name: "missing text", form: url.Values{"module": {"habits"}, "due": {"2026-03-02T12:00"}}},
	}
	for _, tc := range tests {
		rr := webtest.PostForm(h, "/settings/reminders", tc.form, false)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", tc.name, rr.Code)
		}
	}
}

func TestSettingsRoutesRejectWrongMethodsAndPaths(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	if rr := webtest.Get(h, "/settings/clear", false); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET clear status = %d", rr.Code)
	}
	if rr := webtest.Get(h, "/settings/unknown", false); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown status = %d", rr.Code)
	}
}
