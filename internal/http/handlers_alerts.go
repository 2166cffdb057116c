// Package httpx provides the HTTP/JSON surface of the SOS alert service.
package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
)

// AlertLifecycle is the subset of the alert service the handlers need.
type AlertLifecycle interface {
	Create(ctx context.Context, req *model.CreateAlertRequest) (*model.Alert, error)
	Cancel(ctx context.Context, alertID, requesterID string) (*model.Alert, error)
	Acknowledge(ctx context.Context, alertID, responderID string) (*model.Alert, error)
	Get(ctx context.Context, alertID string) (*model.Alert, error)
}

// AlertHandlers provides HTTP handlers for alert lifecycle operations.
type AlertHandlers struct {
	Svc AlertLifecycle
}

type createAlertBody struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Accuracy *float64 `json:"accuracy,omitempty"`
	Message  string   `json:"message,omitempty"`
}

type createAlertResponse struct {
	AlertID        string    `json:"alertId"`
	Status         string    `json:"status"`
	GraceExpiresAt time.Time `json:"graceExpiresAt"`
}

// CreateAlert handles POST /api/sos.
func (h *AlertHandlers) CreateAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeMissingIdentity(w)
		return
	}

	var body createAlertBody
	if !DecodeJSON(w, r, &body) {
		return
	}

	alert, err := h.Svc.Create(r.Context(), &model.CreateAlertRequest{
		OwnerID:   id.UserID,
		OwnerName: id.UserName,
		Lat:       body.Lat,
		Lng:       body.Lng,
		Accuracy:  body.Accuracy,
		Message:   body.Message,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, createAlertResponse{
		AlertID:        alert.ID,
		Status:         alert.Status.String(),
		GraceExpiresAt: alert.GraceExpiresAt,
	})
}

type cancelAlertBody struct {
	AlertID string `json:"alertId"`
}

// CancelAlert handles POST /api/sos/cancel.
func (h *AlertHandlers) CancelAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeMissingIdentity(w)
		return
	}

	var body cancelAlertBody
	if !DecodeJSON(w, r, &body) {
		return
	}
	if body.AlertID == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation",
			Err:     errors.New("alertId is required"),
		})
		return
	}

	if _, err := h.Svc.Cancel(r.Context(), body.AlertID, id.UserID); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// AcknowledgeAlert handles POST /api/alerts/{id}/acknowledge.
func (h *AlertHandlers) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeMissingIdentity(w)
		return
	}

	alertID := r.PathValue("id")
	if _, err := h.Svc.Acknowledge(r.Context(), alertID, id.UserID); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GetAlert handles GET /api/alerts/{id}.
func (h *AlertHandlers) GetAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, alert)
}

func writeMissingIdentity(w http.ResponseWriter) {
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "authentication_required",
		Err:     errors.New("authentication required"),
	})
}
