package model

import "time"

// EventStatus is the commercial lifecycle of a catering event.
type EventStatus string

const (
	EventProspect    EventStatus = "prospect"
	EventQuoteSent   EventStatus = "quote_sent"
	EventAppointment EventStatus = "appointment"
	EventConfirmed   EventStatus = "confirmed"
	EventInProgress  EventStatus = "in_progress"
	EventCompleted   EventStatus = "completed"
	EventCancelled   EventStatus = "cancelled"
)

// StaffOverride carries operator-entered headcounts that replace the computed
// requirement. Nil fields were left blank on the form; presence rules are
// applied by the roster package, not here.
type StaffOverride struct {
	Servers    *int `json:"servers,omitempty" bson:"servers,omitempty" validate:"omitempty,min=0,max=500"`
	Chefs      *int `json:"chefs,omitempty" bson:"chefs,omitempty" validate:"omitempty,min=0,max=500"`
	Bartenders *int `json:"bartenders,omitempty" bson:"bartenders,omitempty" validate:"omitempty,min=0,max=500"`
	HeadWaiter *int `json:"head_waiter,omitempty" bson:"head_waiter,omitempty" validate:"omitempty,min=0,max=500"`
}

// Event is a catering engagement. The staffing core reads GuestCount,
// EventType and Date; the rest is operator bookkeeping.
type Event struct {
	ID         string      `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name       string      `json:"name" bson:"name" validate:"required,min=2,max=150"`
	Date       time.Time   `json:"date" bson:"date" validate:"required"`
	TimeOfDay  string      `json:"time_of_day,omitempty" bson:"time_of_day" validate:"omitempty,max=50"`
	Venue      string      `json:"venue,omitempty" bson:"venue" validate:"omitempty,min=2,max=200"`
	GuestCount int         `json:"guest_count" bson:"guest_count" validate:"min=0,max=10000"`
	EventType  string      `json:"event_type" bson:"event_type" validate:"required,min=2,max=100"`
	Status     EventStatus `json:"status" bson:"status" validate:"required,oneof=prospect quote_sent appointment confirmed in_progress completed cancelled"`

	StaffOverride *StaffOverride `json:"staff_override,omitempty" bson:"staff_override,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// EventUpdate is a partial update; zero values mean "leave unchanged".
type EventUpdate struct {
	Name       string      `json:"name,omitempty" validate:"omitempty,min=2,max=150"`
	Date       *time.Time  `json:"date,omitempty" validate:"omitempty"`
	TimeOfDay  string      `json:"time_of_day,omitempty" validate:"omitempty,max=50"`
	Venue      string      `json:"venue,omitempty" validate:"omitempty,min=2,max=200"`
	GuestCount *int        `json:"guest_count,omitempty" validate:"omitempty,min=0,max=10000"`
	EventType  string      `json:"event_type,omitempty" validate:"omitempty,min=2,max=100"`
	Status     EventStatus `json:"status,omitempty" validate:"omitempty,oneof=prospect quote_sent appointment confirmed in_progress completed cancelled"`

	StaffOverride *StaffOverride `json:"staff_override,omitempty"`
}
