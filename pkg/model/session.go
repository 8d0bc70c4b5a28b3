package model

import "time"

// RequestStatus is the lifecycle of a single confirmation request.
// not_contacted -> pending -> confirmed | declined. Confirmed and declined
// are terminal.
type RequestStatus string

const (
	RequestNotContacted RequestStatus = "not_contacted"
	RequestPending      RequestStatus = "pending"
	RequestConfirmed    RequestStatus = "confirmed"
	RequestDeclined     RequestStatus = "declined"
)

// Terminal reports whether the status admits no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == RequestConfirmed || s == RequestDeclined
}

// ResponseChannel records where a decision came from.
type ResponseChannel string

const (
	ChannelOperator ResponseChannel = "operator"
	ChannelPublic   ResponseChannel = "public_link"
)

// ConfirmationSession groups the confirmation requests sent out for one
// event. The public response link carries the session ID; responses after
// ExpiresAt are rejected.
type ConfirmationSession struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	EventID   string    `json:"event_id" bson:"event_id" validate:"required,mongodb"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"required"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at" validate:"required"`
}

// Expired reports whether the session window has closed at the given instant.
func (s *ConfirmationSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ConfirmationRequest tracks one person's answer within a session.
// TeamMemberID is empty for orphan requests created when an unknown
// respondent answers through the public link.
type ConfirmationRequest struct {
	ID           string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SessionID    string          `json:"session_id" bson:"session_id" validate:"required,mongodb"`
	EventID      string          `json:"event_id" bson:"event_id" validate:"required,mongodb"`
	TeamMemberID string          `json:"team_member_id,omitempty" bson:"team_member_id,omitempty" validate:"omitempty,mongodb"`
	MemberName   string          `json:"member_name" bson:"member_name" validate:"required,min=1,max=150"`
	Role         string          `json:"role" bson:"role" validate:"required,min=1,max=100"`
	Status       RequestStatus   `json:"status" bson:"status" validate:"required,oneof=not_contacted pending confirmed declined"`
	Channel      ResponseChannel `json:"channel,omitempty" bson:"channel,omitempty" validate:"omitempty,oneof=operator public_link"`
	SentAt       *time.Time      `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
	RespondedAt  *time.Time      `json:"responded_at,omitempty" bson:"responded_at,omitempty"`
}
