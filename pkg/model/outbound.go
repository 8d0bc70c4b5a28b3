package model

import "time"

// OutboundKind distinguishes the message families on the outbound topic.
type OutboundKind string

const (
	OutboundInvitation OutboundKind = "invitation"
	OutboundFollowUp   OutboundKind = "follow_up"
)

// OutboundMessage is the payload published to the outbound-messages topic and
// consumed by the dispatcher, which delivers it through the message gateway.
type OutboundMessage struct {
	Kind      OutboundKind `json:"kind"`
	RequestID string       `json:"request_id,omitempty"`
	SessionID string       `json:"session_id"`
	EventID   string       `json:"event_id"`
	ToPhone   string       `json:"to_phone"`
	ToName    string       `json:"to_name"`
	Body      string       `json:"body"`
	Tier      string       `json:"tier,omitempty"`
	QueuedAt  time.Time    `json:"queued_at"`
}
