package dashboard

import (
	"context"
	"net/http"
	"strconv"

	"github.com/louisbranch/lifeos/internal/lifeos/navigation"
	"github.com/louisbranch/lifeos/internal/lifeos/shell"
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

// Client events announced through HX-Trigger.
const (
	EventModuleActivated   = "lifeos:module-activated"
	EventModuleDeactivated = "lifeos:module-deactivated"
)

type handlers struct {
	shell  *shell.Shell
	logger *zap.Logger
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{shell: deps.Shell, logger: logging.OrNop(deps.Logger).Named("web.dashboard")}
}

func (h handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := navContext(r)
	if id := r.URL.Query().Get(routepath.ModuleQueryKey); id != "" {
		transition, err := h.shell.Dashboard.Activate(ctx, id)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writePage(w, r, transition.State, moduleView(transition))
		return
	}
	state := h.shell.Controller.State()
	h.writePage(w, r, state, h.currentModule(ctx, state))
}

// handleActivate answers an in-page switch with the content fragment and an
// HX-Trigger naming the module, and a plain navigation with the full page.
func (h handlers) handleActivate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("moduleID")
	transition, err := h.shell.Dashboard.Activate(navContext(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := httpx.SetTrigger(w, EventModuleActivated, map[string]string{
		"module": transition.State.ModuleID,
		"seq":    strconv.FormatUint(transition.State.Seq, 10),
	}); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writePage(w, r, transition.State, moduleView(transition))
}

func (h handlers) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	state, err := h.shell.Controller.Deactivate(navContext(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !httpx.IsHTMXRequest(r) {
		httpx.WriteRedirect(w, r, routepath.Root)
		return
	}
	if err := httpx.SetTrigger(w, EventModuleDeactivated, map[string]string{"seq": strconv.FormatUint(state.Seq, 10)}); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writePage(w, r, state, webtemplates.ModuleView{})
}

func (h handlers) handleOpen(w http.ResponseWriter, r *http.Request) {
	target, err := h.shell.Controller.HandOff(navContext(r), r.PathValue("moduleID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteRedirect(w, r, target)
}

func (h handlers) handleWidget(w http.ResponseWriter, r *http.Request) {
	result, err := h.shell.Dashboard.RenderWidget(httpx.RequestContext(r), r.PathValue("widgetID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	component := webtemplates.Widget(result)
	if err := pagerender.WriteModulePage(w, r, pagerender.ModulePage{
		Title:    result.Widget.Title,
		Fragment: component,
	}); err != nil {
		h.writeError(w, r, err)
	}
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, apperrors.E(apperrors.KindNotFound, "That page does not exist."))
}

func (h handlers) writePage(w http.ResponseWriter, r *http.Request, state navigation.State, view webtemplates.ModuleView) {
	ctx := httpx.RequestContext(r)
	title := webtemplates.AppName
	if view.Active() {
		title = view.Module.Label
	}
	view.NavSeq = state.Seq
	page := pagerender.ModulePage{
		Title:        title,
		ActiveModule: state.ModuleID,
		Fragment:     webtemplates.ModuleContent(view),
	}
	if !httpx.IsHTMXRequest(r) {
		page.Body = webtemplates.Dashboard(webtemplates.DashboardView{
			Nav:     h.shell.Dashboard.Nav(state),
			Module:  view,
			Widgets: h.shell.Dashboard.RenderWidgets(ctx),
		})
	}
	if err := pagerender.WriteModulePage(w, r, page); err != nil {
		h.writeError(w, r, err)
	}
}

// currentModule renders the active module without a new transition.
func (h handlers) currentModule(ctx context.Context, state navigation.State) webtemplates.ModuleView {
	if !state.Active() {
		return webtemplates.ModuleView{}
	}
	desc, ok := h.shell.Modules.Resolve(state.ModuleID)
	if !ok {
		return webtemplates.ModuleView{}
	}
	content, err := desc.Render(ctx)
	if err != nil {
		h.logger.Warn("render active module", zap.String("module", desc.ID), zap.Error(err))
		return webtemplates.ModuleView{Module: desc, Content: desc.Fallback(), Degraded: true}
	}
	return webtemplates.ModuleView{Module: desc, Content: content}
}

func (h handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	weberror.WriteError(w, r, err, h.logger)
}

// navContext tags navigation started by r with the requesting tab.
func navContext(r *http.Request) context.Context {
	return navigation.WithOrigin(httpx.RequestContext(r), httpx.ClientIDOf(r))
}

func moduleView(t navigation.Transition) webtemplates.ModuleView {
	return webtemplates.ModuleView{Module: t.Module, Content: t.Content, Degraded: t.Degraded}
}
