package roster

import (
	"fmt"
	"time"
)

// Tier is the urgency level of a follow-up, derived from how long a request
// has been sitting unanswered.
type Tier string

const (
	TierNeutral    Tier = "neutral"
	TierNormal     Tier = "normal"
	TierUrgent     Tier = "urgent"
	TierVeryUrgent Tier = "very_urgent"
)

// Tier thresholds in whole elapsed hours. Intervals are half-open: a request
// sent exactly 12h ago is already "normal", exactly 48h ago already very urgent.
const (
	normalAfterHours     = 12
	urgentAfterHours     = 24
	veryUrgentAfterHours = 48
)

// TierForElapsed maps time-since-send to an urgency tier. Elapsed time is
// floored to whole hours before comparison.
func TierForElapsed(elapsed time.Duration) Tier {
	hours := int(elapsed / time.Hour)
	if hours < 0 {
		hours = 0
	}
	switch {
	case hours >= veryUrgentAfterHours:
		return TierVeryUrgent
	case hours >= urgentAfterHours:
		return TierUrgent
	case hours >= normalAfterHours:
		return TierNormal
	default:
		return TierNeutral
	}
}

// TierSince is TierForElapsed anchored on a send timestamp.
func TierSince(sentAt, now time.Time) Tier {
	return TierForElapsed(now.Sub(sentAt))
}

// FollowUp is the assembled follow-up message for one under-staffed role.
type FollowUp struct {
	Tier    Tier    `json:"tier"`
	Role    RoleKey `json:"role"`
	Missing int     `json:"missing"`
	Message string  `json:"message"`
}

// LinkPlaceholder marks where the caller substitutes the public response URL.
const LinkPlaceholder = "{lien}"

// ComposeFollowUp builds the follow-up text for a role gap. Tone varies per
// tier, structure does not: every template cites the missing count, the
// pluralized role label, the event date and the response link. The function
// sends nothing; dispatch is the caller's concern.
func ComposeFollowUp(tier Tier, role RoleKey, missing int, eventDate time.Time) FollowUp {
	label := role.Label(missing)
	date := eventDate.Format("02/01/2006")

	var msg string
	switch tier {
	case TierVeryUrgent:
		msg = fmt.Sprintf(
			"DERNIER RAPPEL : il nous manque encore %d %s pour l'événement du %s. Merci de répondre immédiatement : %s",
			missing, label, date, LinkPlaceholder)
	case TierUrgent:
		msg = fmt.Sprintf(
			"URGENT : il manque %d %s pour l'événement du %s. Merci de confirmer au plus vite : %s",
			missing, label, date, LinkPlaceholder)
	case TierNormal:
		msg = fmt.Sprintf(
			"Petit rappel : nous cherchons encore %d %s pour l'événement du %s. Dites-nous si vous êtes disponible : %s",
			missing, label, date, LinkPlaceholder)
	default:
		msg = fmt.Sprintf(
			"Bonjour ! Nous recherchons %d %s pour l'événement du %s. Répondez ici : %s",
			missing, label, date, LinkPlaceholder)
	}

	return FollowUp{
		Tier:    tier,
		Role:    role,
		Missing: missing,
		Message: msg,
	}
}
