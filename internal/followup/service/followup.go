package service

import (
	"context"
	"strings"

	staffingrepo "brigade/internal/staffing/repository"
	"brigade/pkg/clock"
	"brigade/pkg/config"
	apperrors "brigade/pkg/errors"
	"brigade/pkg/kafka"
	"brigade/pkg/model"
	"brigade/pkg/roster"
)

// Publisher is the slice of the Kafka producer the follow-up domain uses.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// EventProvider resolves events without pulling in the whole events service.
type EventProvider interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// MemberProvider resolves team member IDs to records, for phone numbers.
type MemberProvider interface {
	GetByIDs(ctx context.Context, ids []string) ([]*model.TeamMember, error)
}

// SettingsProvider yields the effective staffing settings.
type SettingsProvider interface {
	Effective(ctx context.Context) (*model.StaffSettings, error)
}

const messageSource = "staffing"

// RoleFollowUp is a composed follow-up for one under-staffed role, with the
// pending requests it would be sent to.
type RoleFollowUp struct {
	FollowUp roster.FollowUp              `json:"follow_up"`
	Pending  []*model.ConfirmationRequest `json:"pending"`
}

type FollowUpService interface {
	SendInvitations(ctx context.Context, session *model.ConfirmationSession, event *model.Event, requests []*model.ConfirmationRequest) error
	Preview(ctx context.Context, eventID string) ([]RoleFollowUp, error)
	Dispatch(ctx context.Context, eventID string) (int, error)
	Replaceable(ctx context.Context) ([]*model.ConfirmationRequest, error)
}

type followUpService struct {
	requests  staffingrepo.RequestRepository
	events    EventProvider
	members   MemberProvider
	settings  SettingsProvider
	publisher Publisher
	clock     clock.Clock
	cfg       *config.Config
}

func NewFollowUpService(
	requests staffingrepo.RequestRepository,
	events EventProvider,
	members MemberProvider,
	settings SettingsProvider,
	publisher Publisher,
	clk clock.Clock,
	cfg *config.Config,
) FollowUpService {
	return &followUpService{
		requests:  requests,
		events:    events,
		members:   members,
		settings:  settings,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
	}
}

// SendInvitations queues the initial confirmation text for each freshly sent
// request. Requests without a reachable phone are skipped and logged, never
// fatal: the public link still works for them.
func (s *followUpService) SendInvitations(ctx context.Context, session *model.ConfirmationSession, event *model.Event, requests []*model.ConfirmationRequest) error {
	phones, err := s.phonesFor(ctx, requests)
	if err != nil {
		return err
	}

	link := s.responseLink(session.ID)
	date := event.Date.Format("02/01/2006")
	queued := 0

	for _, req := range requests {
		phone := phones[req.TeamMemberID]
		if phone == "" {
			s.cfg.Log.Warn("Skipping invitation, no phone on file",
				"request_id", req.ID,
				"member_name", req.MemberName,
			)
			continue
		}

		body := "Bonjour " + req.MemberName + " ! Êtes-vous disponible pour l'événement du " + date + " ? Répondez ici : " + link

		payload := model.OutboundMessage{
			Kind:      model.OutboundInvitation,
			RequestID: req.ID,
			SessionID: session.ID,
			EventID:   event.ID,
			ToPhone:   phone,
			ToName:    req.MemberName,
			Body:      body,
			QueuedAt:  s.clock.Now(),
		}

		msg := kafka.NewMessage().
			WithKey(event.ID).
			WithValue(payload).
			WithEventID("").
			WithEventType(string(model.OutboundInvitation)).
			WithSource(messageSource).
			Build()

		if err := s.publisher.Publish(ctx, msg); err != nil {
			s.cfg.Log.Error("Failed to queue invitation", "request_id", req.ID, "error", err)
			return apperrors.Internal("Failed to queue invitations", err)
		}
		queued++
	}

	s.cfg.Log.Info("Invitations queued", "session_id", session.ID, "queued", queued, "skipped", len(requests)-queued)
	return nil
}

// Preview composes, without sending, the follow-up each under-staffed role
// would get right now. The urgency tier of a role follows its oldest
// unanswered request.
func (s *followUpService) Preview(ctx context.Context, eventID string) ([]RoleFollowUp, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Effective(ctx)
	if err != nil {
		return nil, err
	}

	requests, err := s.requests.FindByEvent(ctx, event.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load confirmation requests", err)
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
	requirement := roster.ComputeRequirement(event.GuestCount, event.EventType, settings.Ratios, override)

	rows := make([]roster.StaffingRow, 0, len(requests))
	for _, req := range requests {
		rows = append(rows, roster.StaffingRow{Role: req.Role, Status: string(req.Status)})
	}
	report := roster.Aggregate(requirement, rows, nil)

	pendingByRole := make(map[roster.RoleKey][]*model.ConfirmationRequest)
	for _, req := range requests {
		if req.Status != model.RequestPending {
			continue
		}
		key := roster.ClassifyRole(req.Role)
		pendingByRole[key] = append(pendingByRole[key], req)
	}

	now := s.clock.Now()
	var followUps []RoleFollowUp
	for _, role := range roster.StandardRoles {
		gauge := report.Roles[role]
		if gauge.Missing == 0 {
			continue
		}

		tier := roster.TierNeutral
		for _, req := range pendingByRole[role] {
			if req.SentAt == nil {
				continue
			}
			if t := roster.TierSince(*req.SentAt, now); tierRank(t) > tierRank(tier) {
				tier = t
			}
		}

		followUps = append(followUps, RoleFollowUp{
			FollowUp: roster.ComposeFollowUp(tier, role, gauge.Missing, event.Date),
			Pending:  pendingByRole[role],
		})
	}

	return followUps, nil
}

// Dispatch queues the composed follow-ups to every pending member of each
// under-staffed role and returns how many messages were queued.
func (s *followUpService) Dispatch(ctx context.Context, eventID string) (int, error) {
	followUps, err := s.Preview(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if len(followUps) == 0 {
		return 0, nil
	}

	pending := make([]*model.ConfirmationRequest, 0)
	for _, fu := range followUps {
		pending = append(pending, fu.Pending...)
	}
	phones, err := s.phonesFor(ctx, pending)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	queued := 0
	for _, fu := range followUps {
		for _, req := range fu.Pending {
			phone := phones[req.TeamMemberID]
			if phone == "" {
				s.cfg.Log.Warn("Skipping follow-up, no phone on file",
					"request_id", req.ID,
					"member_name", req.MemberName,
				)
				continue
			}

			body := strings.ReplaceAll(fu.FollowUp.Message, roster.LinkPlaceholder, s.responseLink(req.SessionID))

			payload := model.OutboundMessage{
				Kind:      model.OutboundFollowUp,
				RequestID: req.ID,
				SessionID: req.SessionID,
				EventID:   eventID,
				ToPhone:   phone,
				ToName:    req.MemberName,
				Body:      body,
				Tier:      string(fu.FollowUp.Tier),
				QueuedAt:  now,
			}

			msg := kafka.NewMessage().
				WithKey(eventID).
				WithValue(payload).
				WithEventID("").
				WithEventType(string(model.OutboundFollowUp)).
				WithSource(messageSource).
				Build()

			if err := s.publisher.Publish(ctx, msg); err != nil {
				s.cfg.Log.Error("Failed to queue follow-up", "request_id", req.ID, "error", err)
				return queued, apperrors.Internal("Failed to queue follow-ups", err)
			}
			queued++
		}
	}

	s.cfg.Log.Info("Follow-ups queued", "event_id", eventID, "queued", queued)
	return queued, nil
}

// Replaceable lists pending requests that have sat unanswered past the
// auto-replace window, so the operator can line up substitutes.
func (s *followUpService) Replaceable(ctx context.Context) ([]*model.ConfirmationRequest, error) {
	settings, err := s.settings.Effective(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := s.clock.Now().Add(-settings.AutoReplaceAfter)
	requests, err := s.requests.FindPendingSentBefore(ctx, cutoff, 100)
	if err != nil {
		return nil, apperrors.Internal("Failed to load stale pending requests", err)
	}
	return requests, nil
}

// --- Helpers ---

func (s *followUpService) responseLink(sessionID string) string {
	return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/respond/" + sessionID
}

// phonesFor maps team member IDs to phone numbers for the given requests.
// Orphan requests have no member ID and no phone.
func (s *followUpService) phonesFor(ctx context.Context, requests []*model.ConfirmationRequest) (map[string]string, error) {
	ids := make([]string, 0, len(requests))
	seen := make(map[string]bool, len(requests))
	for _, req := range requests {
		if req.TeamMemberID == "" || seen[req.TeamMemberID] {
			continue
		}
		seen[req.TeamMemberID] = true
		ids = append(ids, req.TeamMemberID)
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	members, err := s.members.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	phones := make(map[string]string, len(members))
	for _, m := range members {
		phones[m.ID] = m.Phone
	}
	return phones, nil
}

func tierRank(t roster.Tier) int {
	switch t {
	case roster.TierVeryUrgent:
		return 3
	case roster.TierUrgent:
		return 2
	case roster.TierNormal:
		return 1
	default:
		return 0
	}
}
