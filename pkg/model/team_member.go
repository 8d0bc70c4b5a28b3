package model

import "time"

// TeamMember is a person the caterer can staff onto events. Role is a
// free-text label, classified into a RoleKey by the roster package.
type TeamMember struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name       string    `json:"name" bson:"name" validate:"required,min=2,max=150"`
	Phone      string    `json:"phone,omitempty" bson:"phone" validate:"omitempty,e164"`
	Role       string    `json:"role" bson:"role" validate:"required,min=2,max=100"`
	HourlyRate float64   `json:"hourly_rate,omitempty" bson:"hourly_rate" validate:"omitempty,min=0,max=1000"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// TeamMemberUpdate is a partial update; zero values mean "leave unchanged".
type TeamMemberUpdate struct {
	Name       string   `json:"name,omitempty" validate:"omitempty,min=2,max=150"`
	Phone      string   `json:"phone,omitempty" validate:"omitempty,e164"`
	Role       string   `json:"role,omitempty" validate:"omitempty,min=2,max=100"`
	HourlyRate *float64 `json:"hourly_rate,omitempty" validate:"omitempty,min=0,max=1000"`
}
