package settings

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/louisbranch/lifeos/internal/lifeos/bridge"
	"github.com/louisbranch/lifeos/internal/lifeos/shell"
	"github.com/louisbranch/lifeos/internal/lifeos/store"
	"github.com/louisbranch/lifeos/internal/platform/logging"
	module "github.com/louisbranch/lifeos/internal/services/web/module"
	apperrors "github.com/louisbranch/lifeos/internal/services/web/platform/errors"
	"github.com/louisbranch/lifeos/internal/services/web/platform/httpx"
	"github.com/louisbranch/lifeos/internal/services/web/platform/pagerender"
	"github.com/louisbranch/lifeos/internal/services/web/platform/weberror"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
	webtemplates "github.com/louisbranch/lifeos/internal/services/web/templates"
	"go.uber.org/zap"
)

// Notice codes carried in the settings redirect.
const (
	NoticeCleared   = "cleared"
	NoticeScheduled = "scheduled"
)

// dueLayout is the value format of a datetime-local input.
const dueLayout = "2006-01-02T15:04"

var notices = map[string]string{
	NoticeCleared:   "All module data was cleared.",
	NoticeScheduled: "Reminder scheduled.",
}

type handlers struct {
	shell  *shell.Shell
	logger *zap.Logger
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{shell: deps.Shell, logger: logging.OrNop(deps.Logger).Named("web.settings")}
}

func (h handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, r, http.StatusOK, notices[r.URL.Query().Get(routepath.NoticeQueryKey)], "")
}

// handleClear erases every module's data once the user typed the
// confirmation phrase, then returns the shell to NoModuleActive.
func (h handlers) handleClear(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	confirm := store.Confirmation(strings.TrimSpace(r.PostFormValue("confirm")))
	if err := h.shell.Store.Clear(ctx, confirm); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	if _, err := h.shell.Controller.Deactivate(ctx); err != nil {
		h.logger.Warn("deactivate after clear", zap.Error(err))
	}
	httpx.WriteRedirect(w, r, routepath.SettingsWithNotice(NoticeCleared))
}

func (h handlers) handleSchedule(w http.ResponseWriter, r *http.Request) {
	due, err := parseDue(r.PostFormValue("due"), r.PostFormValue("tz_offset"))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	_, err = h.shell.Bridge.Schedule(httpx.RequestContext(r), bridge.Reminder{
		ModuleID: r.PostFormValue("module"),
		Text:     r.PostFormValue("text"),
		DueAt:    due,
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	httpx.WriteRedirect(w, r, routepath.SettingsWithNotice(NoticeScheduled))
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	weberror.WriteError(w, r, apperrors.E(apperrors.KindNotFound, "That settings page does not exist."), h.logger)
}

// writeFailure re-renders the page with the message of a client error.
func (h handlers) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := weberror.Status(err)
	if status >= http.StatusInternalServerError {
		weberror.WriteError(w, r, err, h.logger)
		return
	}
	h.writePage(w, r, status, "", weberror.Message(err))
}

func (h handlers) writePage(w http.ResponseWriter, r *http.Request, status int, notice, message string) {
	view, err := h.buildView(r)
	if err != nil {
		weberror.WriteError(w, r, err, h.logger)
		return
	}
	view.Notice = notice
	view.Error = message
	if err := pagerender.WriteModulePage(w, r, pagerender.ModulePage{
		Title:      "Settings",
		StatusCode: status,
		Fragment:   webtemplates.SettingsPage(view),
	}); err != nil {
		weberror.WriteError(w, r, err, h.logger)
	}
}

func (h handlers) buildView(r *http.Request) (webtemplates.SettingsView, error) {
	ctx := httpx.RequestContext(r)
	usage, err := h.shell.Store.Usage(ctx)
	if err != nil {
		return webtemplates.SettingsView{}, err
	}
	reminders, err := h.shell.Bridge.Reminders(ctx)
	if err != nil {
		return webtemplates.SettingsView{}, err
	}
	status := h.shell.Bridge.Status()

	view := webtemplates.SettingsView{
		Used:               humanize.Bytes(uint64(usage.Bytes)),
		Quota:              quotaText(usage.Quota),
		Keys:               usage.Keys,
		ServiceWorker:      capabilityText(status.ServiceWorker),
		ServiceWorkerError: status.ServiceWorkerError,
		Notifications:      capabilityText(status.Notifications),
		SecureContext:      status.SecureContext,
	}
	for _, id := range usage.NamespaceIDs() {
		view.Namespaces = append(view.Namespaces, webtemplates.NamespaceUsage{
			ID:   id,
			Size: humanize.Bytes(uint64(usage.Namespaces[id])),
		})
	}
	for _, desc := range h.shell.Modules.List() {
		view.Modules = append(view.Modules, webtemplates.ModuleOption{ID: desc.ID, Label: desc.Label})
	}
	for _, reminder := range reminders {
		label := reminder.ModuleID
		if desc, ok := h.shell.Modules.Resolve(reminder.ModuleID); ok {
			label = desc.Label
		}
		view.Reminders = append(view.Reminders, webtemplates.ReminderRow{
			Module: label,
			Text:   reminder.Text,
			Due:    h.shell.Formatter.Since(reminder.DueAt),
			State:  reminder.State,
		})
	}
	return view, nil
}

// parseDue reads a datetime-local value entered in the browser's zone.
// offset is the browser's getTimezoneOffset, minutes to add to reach UTC.
func parseDue(raw, offset string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: due time is required", bridge.ErrInvalidReminder)
	}
	due, err := time.Parse(dueLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: due time %q", bridge.ErrInvalidReminder, raw)
	}
	if offset = strings.TrimSpace(offset); offset != "" {
		minutes, err := strconv.Atoi(offset)
		if err != nil || minutes < -24*60 || minutes > 24*60 {
			return time.Time{}, fmt.Errorf("%w: timezone offset %q", bridge.ErrInvalidReminder, offset)
		}
		due = due.Add(time.Duration(minutes) * time.Minute)
	}
	return due, nil
}

func quotaText(quota int64) string {
	if quota <= 0 {
		return "unlimited"
	}
	return humanize.Bytes(uint64(quota))
}

func capabilityText(c bridge.Capability) string {
	switch c {
	case bridge.CapabilityAvailable:
		return "On"
	case bridge.CapabilityDenied:
		return "Blocked"
	case bridge.CapabilityUnavailable:
		return "Not supported"
	default:
		return "Not checked yet"
	}
}
