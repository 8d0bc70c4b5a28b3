package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"brigade/internal/staffing/service"
	httputil "brigade/pkg/http"
	"brigade/pkg/logger"
)

// PublicHandler serves the unauthenticated response link. Registered on a
// separate route prefix so the app can wrap it with rate limiting and
// idempotency middleware without touching the operator API.
type PublicHandler struct {
	service service.StaffingService
	log     *logger.Logger
}

func NewPublicHandler(service service.StaffingService, log *logger.Logger) *PublicHandler {
	return &PublicHandler{
		service: service,
		log:     log,
	}
}

type publicResponseRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Accept    bool   `json:"accept"`
}

func (h *PublicHandler) Respond(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body publicResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Respond", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.service.RespondPublic(r.Context(), ps.ByName("session"), body.FirstName, body.LastName, body.Accept)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Respond", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	status := http.StatusOK
	switch result.Outcome {
	case service.OutcomeNotFound:
		status = http.StatusNotFound
	case service.OutcomeExpired:
		status = http.StatusGone
	}

	if err := httputil.WriteJSON(w, status, httputil.SuccessResponse{Data: result}); err != nil {
		h.log.Error("failed to write response", "handler", "Respond", "operation", "WriteJSON", "error", err)
	}
}

func (h *PublicHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/public/v1/respond/:session", h.Respond)
}
