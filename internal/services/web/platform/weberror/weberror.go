// Package weberror classifies LifeOS failures and renders error responses
// for web modules.
package weberror

import (
	"errors"
	"net/http"

	"github.com/louisbranch/lifeos/internal/lifeos/bridge"
	"github.com/louisbranch/lifeos/internal/lifeos/dashboard"
	"github.com/louisbranch/lifeos/internal/lifeos/navigation"
	"github.com/louisbranch/lifeos/internal/lifeos/records"
	"github.com/louisbranch/lifeos/internal/lifeos/store"
	"github.com/louisbranch/lifeos/internal/platform/logging"
	apperrors "github.com/louisbranch/lifeos/internal/services/web/platform/errors"
	"github.com/louisbranch/lifeos/internal/services/web/platform/httpx"
	"github.com/louisbranch/lifeos/internal/services/web/platform/pagerender"
	webtemplates "github.com/louisbranch/lifeos/internal/services/web/templates"
	"go.uber.org/zap"
)

var (
	notFound = []error{
		navigation.ErrModuleNotFound,
		navigation.ErrNotExternal,
		dashboard.ErrWidgetNotFound,
		records.ErrEntryNotFound,
	}
	invalidInput = []error{
		records.ErrEmptyText,
		records.ErrTextTooLong,
		records.ErrInvalidAmount,
		bridge.ErrInvalidReminder,
		bridge.ErrUnknownModule,
		bridge.ErrNoUserAction,
		store.ErrClearNotConfirmed,
		store.ErrInvalidKey,
	}
)

// Classify attaches a web error kind to a domain error. Typed errors pass
// through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var typed apperrors.Error
	if errors.As(err, &typed) {
		return err
	}
	switch {
	case isAny(err, notFound):
		return apperrors.Error{Kind: apperrors.KindNotFound, Err: err}
	case isAny(err, invalidInput):
		return apperrors.Error{Kind: apperrors.KindInvalidInput, Err: err}
	case errors.Is(err, store.ErrQuotaExceeded):
		return apperrors.Error{Kind: apperrors.KindConflict, Message: "Storage is full. Free some space in Settings.", Err: err}
	case errors.Is(err, store.ErrSerialization):
		return apperrors.Error{Kind: apperrors.KindConflict, Message: "Saved data for this module could not be read. Clear it in Settings to start over.", Err: err}
	case errors.Is(err, store.ErrUnavailable):
		return apperrors.Error{Kind: apperrors.KindUnavailable, Message: "Storage is unavailable right now. Your changes were not saved.", Err: err}
	default:
		return err
	}
}

// Message returns the user-safe message of a classified error.
func Message(err error) string {
	return apperrors.PublicMessage(Classify(err))
}

// Status returns the HTTP status of a domain error.
func Status(err error) int {
	return apperrors.HTTPStatus(Classify(err))
}

// WriteError renders err as an error page, or as a fragment for HTMX
// requests. Server-side failures are logged.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	if w == nil || err == nil {
		return
	}
	classified := Classify(err)
	status := apperrors.HTTPStatus(classified)
	logFailure(r, err, status, logger)
	component := webtemplates.ErrorState(status, apperrors.PublicMessage(classified))
	if renderErr := pagerender.WriteModulePage(w, r, pagerender.ModulePage{
		Title:      http.StatusText(status),
		StatusCode: status,
		Fragment:   component,
	}); renderErr != nil {
		http.Error(w, apperrors.PublicMessage(classified), status)
	}
}

// WriteJSONError writes err as a JSON error body.
func WriteJSONError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	if w == nil || err == nil {
		return
	}
	classified := Classify(err)
	status := apperrors.HTTPStatus(classified)
	logFailure(r, err, status, logger)
	_ = httpx.WriteJSONError(w, status, apperrors.PublicMessage(classified))
}

func logFailure(r *http.Request, err error, status int, logger *zap.Logger) {
	if status < http.StatusInternalServerError {
		return
	}
	path := ""
	if r != nil {
		path = r.URL.Path
	}
	logging.OrNop(logger).Error("request failed",
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("request_id", httpx.RequestIDOf(r)),
		zap.Error(err),
	)
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
