package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	lifeosbridge "github.com/louisbranch/lifeos/internal/lifeos/bridge"
	"github.com/louisbranch/lifeos/internal/platform/logging"
	module "github.com/louisbranch/lifeos/internal/services/web/module"
	apperrors "github.com/louisbranch/lifeos/internal/services/web/platform/errors"
	"github.com/louisbranch/lifeos/internal/services/web/platform/httpx"
	"github.com/louisbranch/lifeos/internal/services/web/platform/weberror"
	"go.uber.org/zap"
)

// maxReportBytes bounds the JSON bodies the browser posts.
const maxReportBytes = 4 << 10

// notificationReport is the result of a Notification.requestPermission call.
type notificationReport struct {
	Action     string `json:"action"`
	Permission string `json:"permission"`
}

type notificationResponse struct {
	Capability lifeosbridge.Capability `json:"capability"`
	Status     lifeosbridge.Status     `json:"status"`
}

type handlers struct {
	bridge *lifeosbridge.Bridge
	logger *zap.Logger
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{bridge: deps.Shell.Bridge, logger: logging.OrNop(deps.Logger).Named("web.bridge")}
}

func (h handlers) handleStatus(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, h.bridge.Status())
}

func (h handlers) handleServiceWorker(w http.ResponseWriter, r *http.Request) {
	var report lifeosbridge.ServiceWorkerReport
	if err := decode(w, r, &report); err != nil {
		weberror.WriteJSONError(w, r, err, h.logger)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, h.bridge.ReportServiceWorker(report))
}

func (h handlers) handleNotifications(w http.ResponseWriter, r *http.Request) {
	var report notificationReport
	if err := decode(w, r, &report); err != nil {
		weberror.WriteJSONError(w, r, err, h.logger)
		return
	}
	capability, err := h.bridge.RecordNotificationPermission(report.Action, report.Permission)
	if err != nil {
		weberror.WriteJSONError(w, r, err, h.logger)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, notificationResponse{Capability: capability, Status: h.bridge.Status()})
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	weberror.WriteJSONError(w, r, apperrors.E(apperrors.KindNotFound, "Unknown bridge endpoint."), h.logger)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.E(apperrors.KindInvalidInput, "Request body is empty.")
		}
		return apperrors.Wrap(apperrors.KindInvalidInput, fmt.Errorf("decode report: %w", err))
	}
	return nil
}
