package service

import (
	"context"
	"errors"
	"sync"
	"time"

	eventserrors "brigade/internal/events/errors"
	"brigade/internal/events/repository"
	"brigade/internal/events/validator"
	"brigade/pkg/config"
	apperrors "brigade/pkg/errors"
	"brigade/pkg/model"
	"brigade/pkg/sanitizer"
)

type EventService interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Event, int64, error)
	GetUpcoming(ctx context.Context, from time.Time, limit int, offset int64) ([]*model.Event, error)
	Update(ctx context.Context, id string, updates *model.EventUpdate) error
	Delete(ctx context.Context, id string) error
}

type eventService struct {
	repo      repository.EventRepository
	validator *validator.EventValidator
	cfg       *config.Config
}

func NewEventService(repo repository.EventRepository, validator *validator.EventValidator, cfg *config.Config) EventService {
	return &eventService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *eventService) Create(ctx context.Context, event *model.Event) error {
	s.applyDefaults(event)
	s.sanitize(event)
	if err := s.validator.Validate(event); err != nil {
		s.cfg.Log.Warn("Event validation failed", "error", err)
		return apperrors.Validation("Event validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to create event", "error", err)
		return apperrors.Internal("Failed to create event", err)
	}

	s.cfg.Log.Info("Event created successfully",
		"id", event.ID,
		"name", event.Name,
		"date", event.Date,
		"guest_count", event.GuestCount,
	)
	return nil
}

func (s *eventService) GetByID(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, eventserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Event", id)
		}
		if errors.Is(err, eventserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid event ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve event", err)
	}

	return event, nil
}

func (s *eventService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Event, int64, error) {
	var count int64
	var events []*model.Event
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count events", "error", errCount)
			errCount = apperrors.Internal("Failed to count events", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		events, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list events", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve events", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return events, count, nil
}

func (s *eventService) GetUpcoming(ctx context.Context, from time.Time, limit int, offset int64) ([]*model.Event, error) {
	events, err := s.repo.FindUpcoming(ctx, from, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list upcoming events", "error", err)
		return nil, apperrors.Internal("Failed to retrieve upcoming events", err)
	}
	return events, nil
}

func (s *eventService) Update(ctx context.Context, id string, updates *model.EventUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Event ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Event update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Event validation failed", "id", id, "error", err)
		return apperrors.Validation("Event validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, eventserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Event", id)
		}
		s.cfg.Log.Error("Failed to update event", "id", id, "error", err)
		return apperrors.Internal("Failed to update event", err)
	}

	s.cfg.Log.Info("Event updated successfully", "id", id)
	return nil
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Event ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, eventserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Event", id)
		}
		if errors.Is(err, eventserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid event ID format")
		}
		return apperrors.Internal("Failed to delete event", err)
	}

	s.cfg.Log.Info("Event deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *eventService) applyDefaults(e *model.Event) {
	if e.Status == "" {
		e.Status = model.EventProspect
	}
}

func (s *eventService) sanitize(e *model.Event) {
	e.Name = sanitizer.NormalizeName(e.Name)
	e.Venue = sanitizer.TrimAndNormalize(e.Venue)
	e.EventType = sanitizer.TrimAndNormalize(e.EventType)
	e.TimeOfDay = sanitizer.TrimAndNormalize(e.TimeOfDay)
}

func (s *eventService) mergeUpdates(existing *model.Event, updates *model.EventUpdate) *model.Event {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Date != nil {
		merged.Date = *updates.Date
	}
	if updates.TimeOfDay != "" {
		merged.TimeOfDay = updates.TimeOfDay
	}
	if updates.Venue != "" {
		merged.Venue = updates.Venue
	}
	if updates.GuestCount != nil {
		merged.GuestCount = *updates.GuestCount
	}
	if updates.EventType != "" {
		merged.EventType = updates.EventType
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.StaffOverride != nil {
		merged.StaffOverride = updates.StaffOverride
	}

	return &merged
}
