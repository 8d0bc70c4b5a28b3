package model

import "time"

// AnnouncementStatus is the lifecycle of a recruitment announcement.
type AnnouncementStatus string

const (
	AnnouncementDraft AnnouncementStatus = "draft"
	AnnouncementSent  AnnouncementStatus = "sent"
)

// Announcement is a recruitment post generated for an understaffed event.
// StaffNeeds snapshots the missing headcount per role at generation time,
// keyed by role ("servers", "chefs", ...).
type Announcement struct {
	ID         string             `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	EventID    string             `json:"event_id" bson:"event_id" validate:"required,mongodb"`
	Body       string             `json:"body" bson:"body" validate:"required,min=1,max=5000"`
	StaffNeeds map[string]int     `json:"staff_needs" bson:"staff_needs" validate:"required,min=1"`
	Status     AnnouncementStatus `json:"status" bson:"status" validate:"required,oneof=draft sent"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at" validate:"omitempty"`
	SentAt     *time.Time         `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
}

// AnnouncementUpdate carries the editable fields of a draft. Nil pointers
// leave the stored value untouched.
type AnnouncementUpdate struct {
	Body       *string        `json:"body,omitempty" validate:"omitempty,min=1,max=5000"`
	StaffNeeds map[string]int `json:"staff_needs,omitempty" validate:"omitempty,min=1"`
}

// FormResponse is an application submitted against an announcement through
// the public form. A phone number is mandatory only when the applicant says
// they are available, since that is the number the operator will call back.
type FormResponse struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	AnnouncementID string    `json:"announcement_id" bson:"announcement_id" validate:"required,mongodb"`
	Name           string    `json:"name" bson:"name" validate:"required,min=2,max=150"`
	Phone          string    `json:"phone,omitempty" bson:"phone" validate:"required_if=Available true,omitempty,e164"`
	Role           string    `json:"role" bson:"role" validate:"required,min=1,max=100"`
	Available      bool      `json:"available" bson:"available"`
	Message        string    `json:"message,omitempty" bson:"message" validate:"omitempty,max=1000"`
	SubmittedAt    time.Time `json:"submitted_at" bson:"submitted_at" validate:"omitempty"`
}
