package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	settingserrors "brigade/internal/settings/errors"
	"brigade/internal/settings/repository"
	"brigade/pkg/config"
	apperrors "brigade/pkg/errors"
	"brigade/pkg/model"
	"brigade/pkg/roster"
)

// DefaultAccountID is used until multi-tenant accounts exist; one caterer,
// one settings document.
const DefaultAccountID = "default"

type SettingsService interface {
	Effective(ctx context.Context) (*model.StaffSettings, error)
	Update(ctx context.Context, updates *model.StaffSettingsUpdate) (*model.StaffSettings, error)
}

type settingsService struct {
	repo     repository.SettingsRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewSettingsService(repo repository.SettingsRepository, cfg *config.Config) SettingsService {
	return &settingsService{
		repo:     repo,
		validate: validator.New(),
		cfg:      cfg,
	}
}

// Effective returns the stored settings, or the configured defaults when no
// document exists yet. Missing settings are not an error: every account
// starts from defaults without a provisioning step.
func (s *settingsService) Effective(ctx context.Context) (*model.StaffSettings, error) {
	settings, err := s.repo.FindByAccount(ctx, DefaultAccountID)
	if err != nil {
		if errors.Is(err, settingserrors.ErrNotFound) {
			return s.defaults(), nil
		}
		s.cfg.Log.Error("Failed to load staff settings", "error", err)
		return nil, apperrors.Internal("Failed to load staff settings", err)
	}

	s.fillZeroRatios(settings)
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, updates *model.StaffSettingsUpdate) (*model.StaffSettings, error) {
	if err := s.validate.Struct(updates); err != nil {
		s.cfg.Log.Warn("Staff settings validation failed", "error", err)
		return nil, apperrors.Validation("Invalid settings input", map[string]any{"error": err.Error()})
	}

	current, err := s.Effective(ctx)
	if err != nil {
		return nil, err
	}

	merged := s.mergeUpdates(current, updates)
	if err := s.repo.Upsert(ctx, merged); err != nil {
		s.cfg.Log.Error("Failed to save staff settings", "error", err)
		return nil, apperrors.Internal("Failed to save staff settings", err)
	}

	s.cfg.Log.Info("Staff settings updated",
		"guests_per_server", merged.Ratios.GuestsPerServer,
		"guests_per_chef", merged.Ratios.GuestsPerChef,
		"guests_per_bartender", merged.Ratios.GuestsPerBartender,
	)
	return merged, nil
}

// --- Helpers ---

func (s *settingsService) defaults() *model.StaffSettings {
	return &model.StaffSettings{
		AccountID: DefaultAccountID,
		Ratios: roster.RatioSettings{
			GuestsPerServer:    s.cfg.GuestsPerServer,
			GuestsPerChef:      s.cfg.GuestsPerChef,
			GuestsPerBartender: s.cfg.GuestsPerBartender,
			HeadWaiterEnabled:  true,
			WeddingCoeff:       1.2,
			CorporateCoeff:     1.0,
			BirthdayCoeff:      1.0,
		},
		AutoReplaceAfter: s.cfg.AutoReplaceAfter,
	}
}

// fillZeroRatios backfills unset numeric ratios from config so an old partial
// document can never produce divide-by-zero headcounts.
func (s *settingsService) fillZeroRatios(settings *model.StaffSettings) {
	if settings.Ratios.GuestsPerServer <= 0 {
		settings.Ratios.GuestsPerServer = s.cfg.GuestsPerServer
	}
	if settings.Ratios.GuestsPerChef <= 0 {
		settings.Ratios.GuestsPerChef = s.cfg.GuestsPerChef
	}
	if settings.Ratios.GuestsPerBartender <= 0 {
		settings.Ratios.GuestsPerBartender = s.cfg.GuestsPerBartender
	}
	if settings.AutoReplaceAfter <= 0 {
		settings.AutoReplaceAfter = s.cfg.AutoReplaceAfter
	}
}

func (s *settingsService) mergeUpdates(current *model.StaffSettings, updates *model.StaffSettingsUpdate) *model.StaffSettings {
	merged := *current

	if updates.GuestsPerServer != nil {
		merged.Ratios.GuestsPerServer = *updates.GuestsPerServer
	}
	if updates.GuestsPerChef != nil {
		merged.Ratios.GuestsPerChef = *updates.GuestsPerChef
	}
	if updates.GuestsPerBartender != nil {
		merged.Ratios.GuestsPerBartender = *updates.GuestsPerBartender
	}
	if updates.HeadWaiterEnabled != nil {
		merged.Ratios.HeadWaiterEnabled = *updates.HeadWaiterEnabled
	}
	if updates.WeddingCoeff != nil {
		merged.Ratios.WeddingCoeff = *updates.WeddingCoeff
	}
	if updates.CorporateCoeff != nil {
		merged.Ratios.CorporateCoeff = *updates.CorporateCoeff
	}
	if updates.BirthdayCoeff != nil {
		merged.Ratios.BirthdayCoeff = *updates.BirthdayCoeff
	}
	if updates.AutoReplaceAfter != nil {
		merged.AutoReplaceAfter = *updates.AutoReplaceAfter
	}

	return &merged
}
