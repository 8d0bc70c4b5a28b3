package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	staffingerrors "brigade/internal/staffing/errors"
	"brigade/internal/staffing/repository"
	"brigade/internal/staffing/validator"
	"brigade/pkg/clock"
	"brigade/pkg/config"
	apperrors "brigade/pkg/errors"
	"brigade/pkg/model"
	"brigade/pkg/roster"
	"brigade/pkg/sanitizer"
)

// EventProvider is the slice of the events domain the staffing core needs.
type EventProvider interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// MemberProvider resolves team member IDs to records.
type MemberProvider interface {
	GetByIDs(ctx context.Context, ids []string) ([]*model.TeamMember, error)
}

// SettingsProvider yields the effective staffing settings for the account.
type SettingsProvider interface {
	Effective(ctx context.Context) (*model.StaffSettings, error)
}

// OutboundSender delivers the initial confirmation invitations for a session.
// Implemented by the follow-up domain on top of the message pipeline.
type OutboundSender interface {
	SendInvitations(ctx context.Context, session *model.ConfirmationSession, event *model.Event, requests []*model.ConfirmationRequest) error
}

// Outcome is the result of a public response attempt, from the respondent's
// point of view.
type Outcome string

const (
	OutcomeConfirmed        Outcome = "confirmed"
	OutcomeDeclined         Outcome = "declined"
	OutcomeAlreadyResponded Outcome = "already_responded"
	OutcomeExpired          Outcome = "expired"
	OutcomeNotFound         Outcome = "not_found"
)

// PublicResponseResult pairs the outcome with the affected request, when any.
type PublicResponseResult struct {
	Outcome Outcome                    `json:"outcome"`
	Request *model.ConfirmationRequest `json:"request,omitempty"`
}

// RosterView is the staffing picture for one event: the computed requirement
// plus per-role confirmation gauges.
type RosterView struct {
	EventID     string             `json:"event_id"`
	Requirement roster.Requirement `json:"requirement"`
	Report      roster.Report      `json:"report"`
}

// RequirementView is the computed headcount alone, without gauges.
type RequirementView struct {
	EventID     string             `json:"event_id"`
	Requirement roster.Requirement `json:"requirement"`
}

type StaffingService interface {
	CreateSession(ctx context.Context, eventID string, memberIDs []string) (*model.ConfirmationSession, []*model.ConfirmationRequest, error)
	GetSession(ctx context.Context, sessionID string) (*model.ConfirmationSession, []*model.ConfirmationRequest, error)
	Send(ctx context.Context, sessionID string) (int64, error)
	RecordOperatorDecision(ctx context.Context, requestID string, decision model.RequestStatus) (*model.ConfirmationRequest, error)
	RespondPublic(ctx context.Context, sessionID, firstName, lastName string, accept bool) (*PublicResponseResult, error)
	Requirement(ctx context.Context, eventID string) (*RequirementView, error)
	Roster(ctx context.Context, eventID string) (*RosterView, error)
}

type staffingService struct {
	sessions  repository.SessionRepository
	requests  repository.RequestRepository
	events    EventProvider
	members   MemberProvider
	settings  SettingsProvider
	outbound  OutboundSender
	validator *validator.StaffingValidator
	clock     clock.Clock
	cfg       *config.Config
}

func NewStaffingService(
	sessions repository.SessionRepository,
	requests repository.RequestRepository,
	events EventProvider,
	members MemberProvider,
	settings SettingsProvider,
	outbound OutboundSender,
	validator *validator.StaffingValidator,
	clk clock.Clock,
	cfg *config.Config,
) StaffingService {
	return &staffingService{
		sessions:  sessions,
		requests:  requests,
		events:    events,
		members:   members,
		settings:  settings,
		outbound:  outbound,
		validator: validator,
		clock:     clk,
		cfg:       cfg,
	}
}

// CreateSession opens a confirmation session for an event and creates one
// not_contacted request per selected team member. Session and requests are
// written in one transaction so a half-created session cannot exist.
func (s *staffingService) CreateSession(ctx context.Context, eventID string, memberIDs []string) (*model.ConfirmationSession, []*model.ConfirmationRequest, error) {
	if err := s.validator.ValidateCreateSession(eventID, memberIDs); err != nil {
		return nil, nil, apperrors.Validation("Invalid session input", map[string]any{"error": err.Error()})
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.members.GetByIDs(ctx, memberIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(members) != len(memberIDs) {
		return nil, nil, apperrors.Validation("Some team members do not exist", map[string]any{
			"requested": len(memberIDs),
			"found":     len(members),
		})
	}

	now := s.clock.Now()
	session := &model.ConfirmationSession{
		EventID:   event.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionWindow),
	}

	requests := make([]*model.ConfirmationRequest, 0, len(members))

	err = s.sessions.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.sessions.Create(sessCtx, session); err != nil {
			return apperrors.Internal("Failed to create confirmation session", err)
		}

		for _, m := range members {
			requests = append(requests, &model.ConfirmationRequest{
				SessionID:    session.ID,
				EventID:      event.ID,
				TeamMemberID: m.ID,
				MemberName:   sanitizer.NormalizeName(m.Name),
				Role:         m.Role,
				Status:       model.RequestNotContacted,
			})
		}
		if err := s.requests.CreateMany(sessCtx, requests); err != nil {
			return apperrors.Internal("Failed to create confirmation requests", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create confirmation session", "event_id", eventID, "error", err)
		return nil, nil, err
	}

	s.cfg.Log.Info("Confirmation session created",
		"session_id", session.ID,
		"event_id", event.ID,
		"requests", len(requests),
		"expires_at", session.ExpiresAt,
	)
	return session, requests, nil
}

func (s *staffingService) GetSession(ctx context.Context, sessionID string) (*model.ConfirmationSession, []*model.ConfirmationRequest, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	requests, err := s.requests.FindBySession(ctx, session.ID)
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to load confirmation requests", err)
	}
	return session, requests, nil
}

// Send marks the session's untouched requests as pending, stamps sent_at and
// hands the invitations to the outbound pipeline. Requests that were already
// sent or answered are untouched, so re-sending is a safe no-op for them.
func (s *staffingService) Send(ctx context.Context, sessionID string) (int64, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	if session.Expired(now) {
		return 0, apperrors.Expired("Confirmation session")
	}

	marked, err := s.requests.MarkSessionSent(ctx, session.ID, now)
	if err != nil {
		return 0, apperrors.Internal("Failed to mark session sent", err)
	}
	if marked == 0 {
		s.cfg.Log.Info("Session send was a no-op, all requests already contacted", "session_id", session.ID)
		return 0, nil
	}

	if s.outbound != nil {
		event, err := s.events.GetByID(ctx, session.EventID)
		if err != nil {
			return marked, err
		}
		requests, err := s.requests.FindBySession(ctx, session.ID)
		if err != nil {
			return marked, apperrors.Internal("Failed to load confirmation requests", err)
		}
		sentNow := make([]*model.ConfirmationRequest, 0, marked)
		for _, req := range requests {
			if req.SentAt != nil && req.SentAt.Equal(now) {
				sentNow = append(sentNow, req)
			}
		}
		if err := s.outbound.SendInvitations(ctx, session, event, sentNow); err != nil {
			// The state transition is already durable; delivery gets retried
			// by the follow-up loop.
			s.cfg.Log.Error("Failed to dispatch invitations", "session_id", session.ID, "error", err)
		}
	}

	s.cfg.Log.Info("Session sent", "session_id", session.ID, "marked", marked)
	return marked, nil
}

// RecordOperatorDecision applies a confirm/decline made by the operator on
// behalf of a team member. Repeating the same decision is a no-op; a
// different decision never overwrites the first one recorded.
func (s *staffingService) RecordOperatorDecision(ctx context.Context, requestID string, decision model.RequestStatus) (*model.ConfirmationRequest, error) {
	if requestID == "" {
		return nil, apperrors.InvalidInput("Request ID cannot be empty")
	}
	if err := s.validator.ValidateDecision(decision); err != nil {
		return nil, apperrors.Validation("Invalid decision", map[string]any{"error": err.Error()})
	}

	request, err := s.findRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.Status.Terminal() {
		if request.Status == decision {
			return request, nil
		}
		s.cfg.Log.Warn("Conflicting decision ignored, first answer kept",
			"request_id", request.ID,
			"recorded", request.Status,
			"attempted", decision,
		)
		return nil, apperrors.Conflict("A different decision was already recorded").WithDetails(map[string]any{
			"recorded_decision": request.Status,
		})
	}

	err = s.requests.DecideIfStatus(ctx, request.ID, request.Status, repository.RequestDecision{
		Status:      decision,
		Channel:     model.ChannelOperator,
		RespondedAt: s.clock.Now(),
	})
	if err != nil {
		if errors.Is(err, staffingerrors.ErrStatusConflict) {
			// Lost the race; re-read and apply the terminal rules above.
			return s.RecordOperatorDecision(ctx, requestID, decision)
		}
		return nil, apperrors.Internal("Failed to record decision", err)
	}

	updated, err := s.findRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Operator decision recorded",
		"request_id", updated.ID,
		"decision", updated.Status,
	)
	return updated, nil
}

// RespondPublic handles a submission through the public response link. The
// respondent is matched by first or last name against the session's requests;
// unknown names become standalone requests so a volunteer is never silently
// dropped.
func (s *staffingService) RespondPublic(ctx context.Context, sessionID, firstName, lastName string, accept bool) (*PublicResponseResult, error) {
	if err := s.validator.ValidatePublicResponse(sessionID, firstName, lastName); err != nil {
		return nil, apperrors.Validation("Invalid response input", map[string]any{"error": err.Error()})
	}
	firstName = sanitizer.NormalizeName(firstName)
	lastName = sanitizer.NormalizeName(lastName)
	fullName := sanitizer.NormalizeName(firstName + " " + lastName)

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, staffingerrors.ErrSessionNotFound) || errors.Is(err, staffingerrors.ErrInvalidID) {
			return &PublicResponseResult{Outcome: OutcomeNotFound}, nil
		}
		return nil, apperrors.Internal("Failed to load confirmation session", err)
	}

	now := s.clock.Now()
	if session.Expired(now) {
		return &PublicResponseResult{Outcome: OutcomeExpired}, nil
	}

	requests, err := s.requests.FindBySession(ctx, session.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load confirmation requests", err)
	}

	request := matchByName(requests, firstName, lastName)
	if request == nil {
		return s.createOrphanResponse(ctx, session, fullName, accept, now)
	}

	if request.Status.Terminal() {
		return &PublicResponseResult{Outcome: OutcomeAlreadyResponded, Request: request}, nil
	}

	decision := model.RequestDeclined
	outcome := OutcomeDeclined
	if accept {
		decision = model.RequestConfirmed
		outcome = OutcomeConfirmed
	}

	err = s.requests.DecideIfStatus(ctx, request.ID, request.Status, repository.RequestDecision{
		Status:      decision,
		Channel:     model.ChannelPublic,
		RespondedAt: now,
	})
	if err != nil {
		if errors.Is(err, staffingerrors.ErrStatusConflict) {
			// A concurrent answer won; report it rather than overwriting.
			current, findErr := s.findRequest(ctx, request.ID)
			if findErr != nil {
				return nil, findErr
			}
			return &PublicResponseResult{Outcome: OutcomeAlreadyResponded, Request: current}, nil
		}
		return nil, apperrors.Internal("Failed to record response", err)
	}

	updated, err := s.findRequest(ctx, request.ID)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Public response recorded",
		"session_id", session.ID,
		"request_id", updated.ID,
		"outcome", outcome,
	)
	return &PublicResponseResult{Outcome: outcome, Request: updated}, nil
}

// Roster recomputes the staffing picture for an event from scratch: the
// requirement from guest count and settings, the gauges from the stored
// confirmation requests.
func (s *staffingService) Roster(ctx context.Context, eventID string) (*RosterView, error) {
	event, requirement, err := s.requirementFor(ctx, eventID)
	if err != nil {
		return nil, err
	}

	requests, err := s.requests.FindByEvent(ctx, event.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load confirmation requests", err)
	}

	rows := make([]roster.StaffingRow, 0, len(requests))
	for _, req := range requests {
		rows = append(rows, roster.StaffingRow{
			Role:   req.Role,
			Status: string(req.Status),
		})
	}

	return &RosterView{
		EventID:     event.ID,
		Requirement: requirement,
		Report:      roster.Aggregate(requirement, rows, nil),
	}, nil
}

// Requirement exposes the computed headcount without touching the
// confirmation requests.
func (s *staffingService) Requirement(ctx context.Context, eventID string) (*RequirementView, error) {
	event, requirement, err := s.requirementFor(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &RequirementView{EventID: event.ID, Requirement: requirement}, nil
}

// --- Helpers ---

func (s *staffingService) requirementFor(ctx context.Context, eventID string) (*model.Event, roster.Requirement, error) {
	if eventID == "" {
		return nil, roster.Requirement{}, apperrors.InvalidInput("Event ID cannot be empty")
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, roster.Requirement{}, err
	}

	settings, err := s.settings.Effective(ctx)
	if err != nil {
		return nil, roster.Requirement{}, err
	}

	var override *roster.Override
	if event.StaffOverride != nil {
		override = roster.NormalizeOverride(
			event.StaffOverride.Servers,
			event.StaffOverride.Chefs,
			event.StaffOverride.Bartenders,
			event.StaffOverride.HeadWaiter,
		)
	}

	return event, roster.ComputeRequirement(event.GuestCount, event.EventType, settings.Ratios, override), nil
}

func (s *staffingService) findSession(ctx context.Context, sessionID string) (*model.ConfirmationSession, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("Session ID cannot be empty")
	}
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, staffingerrors.ErrSessionNotFound) {
			return nil, apperrors.NotFoundWithID("Confirmation session", sessionID)
		}
		if errors.Is(err, staffingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid session ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve confirmation session", err)
	}
	return session, nil
}

func (s *staffingService) findRequest(ctx context.Context, requestID string) (*model.ConfirmationRequest, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, staffingerrors.ErrRequestNotFound) {
			return nil, apperrors.NotFoundWithID("Confirmation request", requestID)
		}
		if errors.Is(err, staffingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid request ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve confirmation request", err)
	}
	return request, nil
}

// matchByName finds the request whose member name matches the submitted
// names. The first and last name are matched independently, so "Alex Martin"
// still finds "Martin Dupont" through the last name. Exact (normalized,
// case-insensitive) matches win over substring matches, so "Marie" picks
// "Marie" before "Marie-Claire".
func matchByName(requests []*model.ConfirmationRequest, firstName, lastName string) *model.ConfirmationRequest {
	fullName := strings.TrimSpace(firstName + " " + lastName)
	for _, req := range requests {
		if sanitizer.NameEquals(req.MemberName, fullName) ||
			sanitizer.NameEquals(req.MemberName, firstName) ||
			sanitizer.NameEquals(req.MemberName, lastName) {
			return req
		}
	}
	for _, req := range requests {
		if sanitizer.NameContains(req.MemberName, firstName) ||
			sanitizer.NameContains(req.MemberName, lastName) {
			return req
		}
	}
	return nil
}

// createOrphanResponse records an answer from someone who was not on the
// session's member list. The request is born terminal; the operator sees it
// on the roster under the fallback role bucket.
func (s *staffingService) createOrphanResponse(ctx context.Context, session *model.ConfirmationSession, name string, accept bool, now time.Time) (*PublicResponseResult, error) {
	status := model.RequestDeclined
	outcome := OutcomeDeclined
	if accept {
		status = model.RequestConfirmed
		outcome = OutcomeConfirmed
	}

	request := &model.ConfirmationRequest{
		SessionID:   session.ID,
		EventID:     session.EventID,
		MemberName:  name,
		Role:        "extra",
		Status:      status,
		Channel:     model.ChannelPublic,
		RespondedAt: &now,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, apperrors.Internal("Failed to record response", err)
	}

	s.cfg.Log.Info("Orphan public response recorded",
		"session_id", session.ID,
		"request_id", request.ID,
		"outcome", outcome,
	)
	return &PublicResponseResult{Outcome: outcome, Request: request}, nil
}
