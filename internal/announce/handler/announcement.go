package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"brigade/internal/announce/service"
	httputil "brigade/pkg/http"
	"brigade/pkg/logger"
	"brigade/pkg/model"
)

type AnnouncementHandler struct {
	service service.AnnouncementService
	log     *logger.Logger
}

func NewAnnouncementHandler(service service.AnnouncementService, log *logger.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		service: service,
		log:     log,
	}
}

func (h *AnnouncementHandler) Generate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	announcement, err := h.service.Generate(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Generate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, announcement); err != nil {
		h.log.Error("failed to write created response", "handler", "Generate", "operation", "WriteCreated", "error", err)
	}
}

func (h *AnnouncementHandler) GetByEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	announcements, err := h.service.GetByEvent(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByEvent", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, announcements); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByEvent", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AnnouncementHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	announcement, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, announcement); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AnnouncementHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body model.AnnouncementUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	announcement, err := h.service.Update(r.Context(), ps.ByName("id"), &body)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, announcement); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AnnouncementHandler) Publish(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	announcement, err := h.service.Publish(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Publish", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, announcement); err != nil {
		h.log.Error("failed to write success response", "handler", "Publish", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AnnouncementHandler) GetResponses(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	responses, err := h.service.GetResponses(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetResponses", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, responses); err != nil {
		h.log.Error("failed to write success response", "handler", "GetResponses", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AnnouncementHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/events/id/:id/announcements", h.Generate)
	router.GET("/api/v1/events/id/:id/announcements", h.GetByEvent)
	router.GET("/api/v1/announcements/id/:id", h.GetByID)
	router.PATCH("/api/v1/announcements/id/:id", h.Update)
	router.POST("/api/v1/announcements/id/:id/publish", h.Publish)
	router.GET("/api/v1/announcements/id/:id/responses", h.GetResponses)
}
