package service

import (
	"context"
	"errors"
	"sync"

	teamerrors "brigade/internal/team/errors"
	"brigade/internal/team/repository"
	"brigade/internal/team/validator"
	"brigade/pkg/config"
	apperrors "brigade/pkg/errors"
	"brigade/pkg/model"
	"brigade/pkg/sanitizer"
)

type TeamMemberService interface {
	Create(ctx context.Context, member *model.TeamMember) error
	GetByID(ctx context.Context, id string) (*model.TeamMember, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.TeamMember, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.TeamMember, int64, error)
	Update(ctx context.Context, id string, updates *model.TeamMemberUpdate) error
	Delete(ctx context.Context, id string) error
}

type teamMemberService struct {
	repo      repository.TeamMemberRepository
	validator *validator.TeamMemberValidator
	cfg       *config.Config
}

func NewTeamMemberService(repo repository.TeamMemberRepository, validator *validator.TeamMemberValidator, cfg *config.Config) TeamMemberService {
	return &teamMemberService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *teamMemberService) Create(ctx context.Context, member *model.TeamMember) error {
	if err := s.sanitize(member); err != nil {
		return err
	}
	if err := s.validator.Validate(member); err != nil {
		s.cfg.Log.Warn("Team member validation failed", "error", err)
		return apperrors.Validation("Team member validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, member); err != nil {
		s.cfg.Log.Error("Failed to create team member", "error", err)
		return apperrors.Internal("Failed to create team member", err)
	}

	s.cfg.Log.Info("Team member created successfully",
		"id", member.ID,
		"role", member.Role,
	)
	return nil
}

func (s *teamMemberService) GetByID(ctx context.Context, id string) (*model.TeamMember, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Team member ID cannot be empty")
	}

	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, teamerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Team member", id)
		}
		if errors.Is(err, teamerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid team member ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve team member", err)
	}

	return member, nil
}

func (s *teamMemberService) GetByIDs(ctx context.Context, ids []string) ([]*model.TeamMember, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	members, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		if errors.Is(err, teamerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid team member ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve team members", err)
	}
	return members, nil
}

func (s *teamMemberService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.TeamMember, int64, error) {
	var count int64
	var members []*model.TeamMember
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count team members", "error", errCount)
			errCount = apperrors.Internal("Failed to count team members", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		members, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list team members", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve team members", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return members, count, nil
}

func (s *teamMemberService) Update(ctx context.Context, id string, updates *model.TeamMemberUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Team member ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Team member update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)
	if err := s.sanitize(merged); err != nil {
		return err
	}
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Team member validation failed", "id", id, "error", err)
		return apperrors.Validation("Team member validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, teamerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Team member", id)
		}
		s.cfg.Log.Error("Failed to update team member", "id", id, "error", err)
		return apperrors.Internal("Failed to update team member", err)
	}

	s.cfg.Log.Info("Team member updated successfully", "id", id)
	return nil
}

func (s *teamMemberService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Team member ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, teamerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Team member", id)
		}
		if errors.Is(err, teamerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid team member ID format")
		}
		return apperrors.Internal("Failed to delete team member", err)
	}

	s.cfg.Log.Info("Team member deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

// sanitize normalizes the name and brings the phone to E.164. A phone that
// parses for none of the supported regions is rejected before validation so
// the operator gets a phone-specific message.
func (s *teamMemberService) sanitize(m *model.TeamMember) error {
	m.Name = sanitizer.NormalizeName(m.Name)
	m.Role = sanitizer.TrimAndNormalize(m.Role)

	if m.Phone != "" {
		normalized := sanitizer.NormalizePhone(m.Phone)
		if normalized == "" {
			s.cfg.Log.Warn("Rejected unparseable phone number", "name", m.Name)
			return apperrors.Validation("Phone number is not valid for any supported region", map[string]any{
				"error": teamerrors.ErrInvalidPhone.Error(),
			})
		}
		m.Phone = normalized
	}
	return nil
}

func (s *teamMemberService) mergeUpdates(existing *model.TeamMember, updates *model.TeamMemberUpdate) *model.TeamMember {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Phone != "" {
		merged.Phone = updates.Phone
	}
	if updates.Role != "" {
		merged.Role = updates.Role
	}
	if updates.HourlyRate != nil {
		merged.HourlyRate = *updates.HourlyRate
	}

	return &merged
}
