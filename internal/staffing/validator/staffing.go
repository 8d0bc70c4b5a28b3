package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"brigade/pkg/logger"
	"brigade/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

const maxSessionMembers = 200

type StaffingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewStaffingValidator(log *logger.Logger) *StaffingValidator {
	return &StaffingValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// ValidateCreateSession checks the inputs of session creation. An empty
// member list is rejected here rather than producing an empty session.
func (v *StaffingValidator) ValidateCreateSession(eventID string, memberIDs []string) error {
	var errs ValidationErrors

	if err := v.validate.Var(eventID, "required,mongodb"); err != nil {
		errs = append(errs, ValidationError{
			Field:   "event_id",
			Message: "event_id must be a valid MongoDB ObjectID",
		})
	}

	if len(memberIDs) == 0 {
		errs = append(errs, ValidationError{
			Field:   "member_ids",
			Message: "at least one team member is required",
		})
	}
	if len(memberIDs) > maxSessionMembers {
		errs = append(errs, ValidationError{
			Field:   "member_ids",
			Message: fmt.Sprintf("at most %d team members per session", maxSessionMembers),
		})
	}
	for _, id := range memberIDs {
		if err := v.validate.Var(id, "required,mongodb"); err != nil {
			errs = append(errs, ValidationError{
				Field:   "member_ids",
				Message: fmt.Sprintf("invalid team member ID: %s", id),
			})
			break
		}
	}

	if len(errs) > 0 {
		v.logger.Warn("Session creation validation failed", "error", errs.Error())
		return errs
	}
	return nil
}

// ValidateDecision checks an operator decision value. Only terminal statuses
// are acceptable decisions.
func (v *StaffingValidator) ValidateDecision(decision model.RequestStatus) error {
	if decision != model.RequestConfirmed && decision != model.RequestDeclined {
		return ValidationErrors{
			ValidationError{
				Field:   "decision",
				Message: "decision must be 'confirmed' or 'declined'",
			},
		}
	}
	return nil
}

// ValidatePublicResponse checks a public form submission. At least one of the
// two names must be present; each is matched independently later.
func (v *StaffingValidator) ValidatePublicResponse(sessionID, firstName, lastName string) error {
	var errs ValidationErrors

	if err := v.validate.Var(sessionID, "required,mongodb"); err != nil {
		errs = append(errs, ValidationError{
			Field:   "session_id",
			Message: "session_id must be a valid MongoDB ObjectID",
		})
	}
	if firstName == "" && lastName == "" {
		errs = append(errs, ValidationError{
			Field:   "first_name",
			Message: "a first or last name is required",
		})
	}
	if firstName != "" {
		if err := v.validate.Var(firstName, "min=2,max=75"); err != nil {
			errs = append(errs, ValidationError{
				Field:   "first_name",
				Message: "first_name must be between 2 and 75 characters",
			})
		}
	}
	if lastName != "" {
		if err := v.validate.Var(lastName, "min=2,max=75"); err != nil {
			errs = append(errs, ValidationError{
				Field:   "last_name",
				Message: "last_name must be between 2 and 75 characters",
			})
		}
	}

	if len(errs) > 0 {
		v.logger.Warn("Public response validation failed", "error", errs.Error())
		return errs
	}
	return nil
}
