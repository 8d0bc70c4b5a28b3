package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"brigade/internal/followup/service"
	httputil "brigade/pkg/http"
	"brigade/pkg/logger"
)

type FollowUpHandler struct {
	service service.FollowUpService
	log     *logger.Logger
}

func NewFollowUpHandler(service service.FollowUpService, log *logger.Logger) *FollowUpHandler {
	return &FollowUpHandler{
		service: service,
		log:     log,
	}
}

type dispatchResponse struct {
	Queued int `json:"queued"`
}

func (h *FollowUpHandler) Preview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	followUps, err := h.service.Preview(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Preview", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, followUps); err != nil {
		h.log.Error("failed to write success response", "handler", "Preview", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FollowUpHandler) Dispatch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	queued, err := h.service.Dispatch(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Dispatch", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, dispatchResponse{Queued: queued}); err != nil {
		h.log.Error("failed to write success response", "handler", "Dispatch", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FollowUpHandler) Replaceable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requests, err := h.service.Replaceable(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Replaceable", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, requests); err != nil {
		h.log.Error("failed to write success response", "handler", "Replaceable", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FollowUpHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/events/id/:id/follow-ups", h.Preview)
	router.POST("/api/v1/events/id/:id/follow-ups/dispatch", h.Dispatch)
	router.GET("/api/v1/requests/replaceable", h.Replaceable)
}
