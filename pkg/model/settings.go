package model

import (
	"time"

	"brigade/pkg/roster"
)

// StaffSettings is the single per-account staffing configuration record.
// Read with create-if-absent semantics: when no record exists the configured
// defaults apply.
type StaffSettings struct {
	ID        string               `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	AccountID string               `json:"account_id" bson:"account_id" validate:"required,min=1,max=100"`
	Ratios    roster.RatioSettings `json:"ratios" bson:"ratios"`

	// Pending requests older than this window are flagged for replacement.
	AutoReplaceAfter time.Duration `json:"auto_replace_after" bson:"auto_replace_after" validate:"omitempty,min=0"`

	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// StaffSettingsUpdate carries the mutable fields of StaffSettings.
type StaffSettingsUpdate struct {
	GuestsPerServer    *int           `json:"guests_per_server,omitempty" validate:"omitempty,min=1,max=1000"`
	GuestsPerChef      *int           `json:"guests_per_chef,omitempty" validate:"omitempty,min=1,max=1000"`
	GuestsPerBartender *int           `json:"guests_per_bartender,omitempty" validate:"omitempty,min=1,max=1000"`
	HeadWaiterEnabled  *bool          `json:"head_waiter_enabled,omitempty"`
	WeddingCoeff       *float64       `json:"wedding_coeff,omitempty" validate:"omitempty,gt=0,max=10"`
	CorporateCoeff     *float64       `json:"corporate_coeff,omitempty" validate:"omitempty,gt=0,max=10"`
	BirthdayCoeff      *float64       `json:"birthday_coeff,omitempty" validate:"omitempty,gt=0,max=10"`
	AutoReplaceAfter   *time.Duration `json:"auto_replace_after,omitempty" validate:"omitempty,min=0"`
}
