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

// PublicFormHandler serves the unauthenticated application form for published
// announcements.
type PublicFormHandler struct {
	service service.AnnouncementService
	log     *logger.Logger
}

func NewPublicFormHandler(service service.AnnouncementService, log *logger.Logger) *PublicFormHandler {
	return &PublicFormHandler{
		service: service,
		log:     log,
	}
}

func (h *PublicFormHandler) Apply(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var response model.FormResponse
	if err := json.NewDecoder(r.Body).Decode(&response); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Apply", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.SubmitResponse(r.Context(), ps.ByName("announcement"), &response); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Apply", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, response); err != nil {
		h.log.Error("failed to write created response", "handler", "Apply", "operation", "WriteCreated", "error", err)
	}
}

func (h *PublicFormHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/public/v1/announcements/:announcement/apply", h.Apply)
}
