package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"brigade/internal/staffing/service"
	httputil "brigade/pkg/http"
	"brigade/pkg/logger"
	"brigade/pkg/model"
)

type StaffingHandler struct {
	service service.StaffingService
	log     *logger.Logger
}

func NewStaffingHandler(service service.StaffingService, log *logger.Logger) *StaffingHandler {
	return &StaffingHandler{
		service: service,
		log:     log,
	}
}

type createSessionRequest struct {
	MemberIDs []string `json:"member_ids"`
}

type sessionResponse struct {
	Session  *model.ConfirmationSession   `json:"session"`
	Requests []*model.ConfirmationRequest `json:"requests"`
}

type decisionRequest struct {
	Decision model.RequestStatus `json:"decision"`
}

type sendResponse struct {
	Marked int64 `json:"marked"`
}

func (h *StaffingHandler) CreateSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("id")

	var body createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateSession", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	session, requests, err := h.service.CreateSession(r.Context(), eventID, body.MemberIDs)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateSession", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, sessionResponse{Session: session, Requests: requests}); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateSession", "operation", "WriteCreated", "error", err)
	}
}

func (h *StaffingHandler) GetSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, requests, err := h.service.GetSession(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSession", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sessionResponse{Session: session, Requests: requests}); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSession", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StaffingHandler) Send(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	marked, err := h.service.Send(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Send", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sendResponse{Marked: marked}); err != nil {
		h.log.Error("failed to write success response", "handler", "Send", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StaffingHandler) RecordDecision(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "RecordDecision", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	request, err := h.service.RecordOperatorDecision(r.Context(), ps.ByName("id"), body.Decision)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RecordDecision", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, request); err != nil {
		h.log.Error("failed to write success response", "handler", "RecordDecision", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StaffingHandler) Requirement(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view, err := h.service.Requirement(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Requirement", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, view); err != nil {
		h.log.Error("failed to write success response", "handler", "Requirement", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StaffingHandler) Roster(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view, err := h.service.Roster(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Roster", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, view); err != nil {
		h.log.Error("failed to write success response", "handler", "Roster", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StaffingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/events/id/:id/sessions", h.CreateSession)
	router.GET("/api/v1/events/id/:id/requirement", h.Requirement)
	router.GET("/api/v1/events/id/:id/roster", h.Roster)
	router.GET("/api/v1/sessions/id/:id", h.GetSession)
	router.POST("/api/v1/sessions/id/:id/send", h.Send)
	router.POST("/api/v1/requests/id/:id/decision", h.RecordDecision)
}
