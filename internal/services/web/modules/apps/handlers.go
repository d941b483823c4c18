package apps

import (
	"net/http"

	"github.com/louisbranch/lifeos/internal/lifeos/navigation"
	"github.com/louisbranch/lifeos/internal/lifeos/records"
	"github.com/louisbranch/lifeos/internal/lifeos/registry"
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

// returnShell marks a mutation submitted from the in-shell module content.
const returnShell = "shell"

type handlers struct {
	shell  *shell.Shell
	logger *zap.Logger
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{shell: deps.Shell, logger: logging.OrNop(deps.Logger).Named("web.apps")}
}

func (h handlers) handleApp(w http.ResponseWriter, r *http.Request) {
	desc, book, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if !desc.External() {
		httpx.WriteRedirect(w, r, routepath.RootWithModule(desc.ID))
		return
	}
	h.writeApp(w, r, desc, book, http.StatusOK, "")
}

func (h handlers) handleAdd(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(book *records.Book) error {
		_, err := book.Add(httpx.RequestContext(r), r.PostFormValue("text"), r.PostFormValue("amount"))
		return err
	})
}

func (h handlers) handleToggle(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(book *records.Book) error {
		_, err := book.Toggle(httpx.RequestContext(r), r.PathValue("entryID"))
		return err
	})
}

func (h handlers) handleDelete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(book *records.Book) error {
		return book.Remove(httpx.RequestContext(r), r.PathValue("entryID"))
	})
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	weberror.WriteError(w, r, apperrors.E(apperrors.KindNotFound, "That app does not exist."), h.logger)
}

// mutate applies fn to the module's book. Shell submissions are answered
// with the refreshed module content; app submissions redirect back to the
// app page (post/redirect/get) or re-render it with the validation error.
func (h handlers) mutate(w http.ResponseWriter, r *http.Request, fn func(*records.Book) error) {
	desc, book, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		weberror.WriteError(w, r, apperrors.Wrap(apperrors.KindInvalidInput, err), h.logger)
		return
	}
	err := fn(book)
	status := weberror.Status(err)
	if err != nil && status >= http.StatusInternalServerError {
		weberror.WriteError(w, r, err, h.logger)
		return
	}
	message := ""
	if err != nil {
		message = weberror.Message(err)
	}

	if r.PostFormValue("return") == returnShell {
		if err == nil && !httpx.IsHTMXRequest(r) {
			httpx.WriteRedirect(w, r, routepath.RootWithModule(desc.ID))
			return
		}
		h.writeShellContent(w, r, desc, book, status, message)
		return
	}
	if err == nil {
		httpx.WriteRedirect(w, r, routepath.App(desc.ID))
		return
	}
	h.writeApp(w, r, desc, book, status, message)
}

func (h handlers) writeApp(w http.ResponseWriter, r *http.Request, desc registry.ModuleDescriptor, book *records.Book, status int, message string) {
	content, err := book.AppContent(httpx.RequestContext(r), h.shell.Formatter)
	if err != nil {
		weberror.WriteError(w, r, err, h.logger)
		return
	}
	view := webtemplates.AppView{
		Module:      desc,
		Content:     content,
		EntryNoun:   content.EntryNoun,
		AmountLabel: content.AmountLabel,
		Error:       message,
	}
	if err := pagerender.WriteModulePage(w, r, pagerender.ModulePage{
		Title:        desc.Label,
		StatusCode:   status,
		ActiveModule: desc.ID,
		Fragment:     webtemplates.AppPage(view),
	}); err != nil {
		weberror.WriteError(w, r, err, h.logger)
	}
}

func (h handlers) writeShellContent(w http.ResponseWriter, r *http.Request, desc registry.ModuleDescriptor, book *records.Book, status int, message string) {
	view := webtemplates.ModuleView{Module: desc, Error: message}
	content, err := book.Content(httpx.RequestContext(r), h.shell.Formatter)
	if err != nil {
		h.logger.Warn("render module after mutation", zap.String("module", desc.ID), zap.Error(err))
		view.Content = desc.Fallback()
		view.Degraded = true
	} else {
		view.Content = content
	}
	if err := pagerender.WriteModulePage(w, r, pagerender.ModulePage{
		Title:        desc.Label,
		StatusCode:   status,
		ActiveModule: desc.ID,
		Fragment:     webtemplates.ModuleContent(view),
	}); err != nil {
		weberror.WriteError(w, r, err, h.logger)
	}
}

func (h handlers) resolve(w http.ResponseWriter, r *http.Request) (registry.ModuleDescriptor, *records.Book, bool) {
	id := r.PathValue("moduleID")
	desc, ok := h.shell.Modules.Resolve(id)
	book, hasBook := h.shell.Book(id)
	if !ok || !hasBook {
		weberror.WriteError(w, r, apperrors.Wrap(apperrors.KindNotFound, navigation.ErrModuleNotFound), h.logger)
		return registry.ModuleDescriptor{}, nil, false
	}
	return desc, book, true
}
