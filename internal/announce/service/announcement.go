package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	announceerrors "brigade/internal/announce/errors"
	"brigade/internal/announce/repository"
	staffingrepo "brigade/internal/staffing/repository"
	"brigade/pkg/clock"
	"brigade/pkg/config"
	apperrors "brigade/pkg/errors"
	"brigade/pkg/model"
	"brigade/pkg/roster"
	"brigade/pkg/sanitizer"
)

// EventProvider resolves events for announcement generation.
type EventProvider interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// SettingsProvider yields the effective staffing settings.
type SettingsProvider interface {
	Effective(ctx context.Context) (*model.StaffSettings, error)
}

type AnnouncementService interface {
	Generate(ctx context.Context, eventID string) (*model.Announcement, error)
	GetByID(ctx context.Context, id string) (*model.Announcement, error)
	GetByEvent(ctx context.Context, eventID string) ([]*model.Announcement, error)
	Update(ctx context.Context, id string, update *model.AnnouncementUpdate) (*model.Announcement, error)
	Publish(ctx context.Context, id string) (*model.Announcement, error)
	SubmitResponse(ctx context.Context, announcementID string, response *model.FormResponse) error
	GetResponses(ctx context.Context, announcementID string) ([]*model.FormResponse, error)
}

type announcementService struct {
	repo     repository.AnnouncementRepository
	requests staffingrepo.RequestRepository
	events   EventProvider
	settings SettingsProvider
	validate *validator.Validate
	clock    clock.Clock
	cfg      *config.Config
}

func NewAnnouncementService(
	repo repository.AnnouncementRepository,
	requests staffingrepo.RequestRepository,
	events EventProvider,
	settings SettingsProvider,
	clk clock.Clock,
	cfg *config.Config,
) AnnouncementService {
	return &announcementService{
		repo:     repo,
		requests: requests,
		events:   events,
		settings: settings,
		validate: validator.New(),
		clock:    clk,
		cfg:      cfg,
	}
}

// Generate drafts a recruitment announcement from the event's current staffing
// gaps. The needs are snapshotted on the document: later confirmations do not
// rewrite an already drafted post.
func (s *announcementService) Generate(ctx context.Context, eventID string) (*model.Announcement, error) {
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

	needs := make(map[string]int)
	for _, role := range roster.StandardRoles {
		if gauge := report.Roles[role]; gauge.Missing > 0 {
			needs[string(role)] = gauge.Missing
		}
	}
	if len(needs) == 0 {
		return nil, apperrors.Conflict("Event is fully staffed, nothing to announce")
	}

	announcement := &model.Announcement{
		EventID:    event.ID,
		Body:       composeBody(event, report),
		StaffNeeds: needs,
		Status:     model.AnnouncementDraft,
	}

	if err := s.repo.Create(ctx, announcement); err != nil {
		s.cfg.Log.Error("Failed to create announcement", "event_id", event.ID, "error", err)
		return nil, apperrors.Internal("Failed to create announcement", err)
	}

	s.cfg.Log.Info("Announcement drafted",
		"id", announcement.ID,
		"event_id", event.ID,
		"needs", needs,
	)
	return announcement, nil
}

func (s *announcementService) GetByID(ctx context.Context, id string) (*model.Announcement, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Announcement ID cannot be empty")
	}

	announcement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, announceerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Announcement", id)
		}
		if errors.Is(err, announceerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid announcement ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve announcement", err)
	}
	return announcement, nil
}

func (s *announcementService) GetByEvent(ctx context.Context, eventID string) ([]*model.Announcement, error) {
	if eventID == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}

	announcements, err := s.repo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve announcements", err)
	}
	return announcements, nil
}

// Update edits a draft's body or needs snapshot. Once sent, the snapshot is
// frozen; editing a sent announcement is a conflict.
func (s *announcementService) Update(ctx context.Context, id string, update *model.AnnouncementUpdate) (*model.Announcement, error) {
	announcement, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if announcement.Status != model.AnnouncementDraft {
		return nil, apperrors.Conflict("Sent announcements cannot be edited")
	}

	if err := s.validate.Struct(update); err != nil {
		return nil, apperrors.Validation("Invalid announcement update", map[string]any{"error": err.Error()})
	}

	body := announcement.Body
	if update.Body != nil {
		body = sanitizer.TrimAndNormalize(*update.Body)
	}

	if err := s.repo.UpdateDraft(ctx, announcement.ID, body, update.StaffNeeds); err != nil {
		if errors.Is(err, announceerrors.ErrAlreadySent) {
			return nil, apperrors.Conflict("Sent announcements cannot be edited")
		}
		s.cfg.Log.Error("Failed to update announcement", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update announcement", err)
	}

	s.cfg.Log.Info("Announcement draft updated", "id", id)
	return s.GetByID(ctx, id)
}

// Publish marks a draft as sent. Publishing twice is a conflict, not a crash.
func (s *announcementService) Publish(ctx context.Context, id string) (*model.Announcement, error) {
	announcement, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkSent(ctx, announcement.ID, s.clock.Now()); err != nil {
		if errors.Is(err, announceerrors.ErrAlreadySent) {
			return nil, apperrors.Conflict("Announcement was already published")
		}
		s.cfg.Log.Error("Failed to publish announcement", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to publish announcement", err)
	}

	s.cfg.Log.Info("Announcement published", "id", id)
	return s.GetByID(ctx, id)
}

// SubmitResponse records an application coming through the public form.
func (s *announcementService) SubmitResponse(ctx context.Context, announcementID string, response *model.FormResponse) error {
	announcement, err := s.GetByID(ctx, announcementID)
	if err != nil {
		return err
	}

	response.AnnouncementID = announcement.ID
	response.Name = sanitizer.NormalizeName(response.Name)
	response.Role = sanitizer.TrimAndNormalize(response.Role)
	response.Message = sanitizer.TrimAndNormalize(response.Message)
	response.SubmittedAt = s.clock.Now()

	if response.Phone != "" {
		normalized := sanitizer.NormalizePhone(response.Phone)
		if normalized == "" {
			return apperrors.Validation("Phone number is not valid for any supported region", nil)
		}
		response.Phone = normalized
	}

	if err := s.validate.Struct(response); err != nil {
		s.cfg.Log.Warn("Form response validation failed", "announcement_id", announcementID, "error", err)
		return apperrors.Validation("Invalid form response", map[string]any{"error": err.Error()})
	}

	if err := s.repo.CreateResponse(ctx, response); err != nil {
		s.cfg.Log.Error("Failed to store form response", "announcement_id", announcementID, "error", err)
		return apperrors.Internal("Failed to store form response", err)
	}

	s.cfg.Log.Info("Form response received",
		"announcement_id", announcement.ID,
		"role", response.Role,
	)
	return nil
}

func (s *announcementService) GetResponses(ctx context.Context, announcementID string) ([]*model.FormResponse, error) {
	announcement, err := s.GetByID(ctx, announcementID)
	if err != nil {
		return nil, err
	}

	responses, err := s.repo.FindResponses(ctx, announcement.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve form responses", err)
	}
	return responses, nil
}

// composeBody writes the French recruitment post from the roster gaps.
func composeBody(event *model.Event, report roster.Report) string {
	var parts []string
	for _, role := range roster.StandardRoles {
		gauge := report.Roles[role]
		if gauge.Missing == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d %s", gauge.Missing, role.Label(gauge.Missing)))
	}

	date := event.Date.Format("02/01/2006")
	body := fmt.Sprintf("Nous recherchons %s pour un événement le %s", strings.Join(parts, ", "), date)
	if event.Venue != "" {
		body += " à " + event.Venue
	}
	body += ". Intéressé(e) ? Postulez via le formulaire."
	return body
}
