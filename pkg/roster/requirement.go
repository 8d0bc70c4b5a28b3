package roster

import (
	"math"
	"strings"
)

// RatioSettings are the per-account staffing ratios used to derive headcounts
// from a guest count. Ratios are "guests per one person of that role".
type RatioSettings struct {
	GuestsPerServer    int     `json:"guests_per_server" bson:"guests_per_server"`
	GuestsPerChef      int     `json:"guests_per_chef" bson:"guests_per_chef"`
	GuestsPerBartender int     `json:"guests_per_bartender" bson:"guests_per_bartender"`
	HeadWaiterEnabled  bool    `json:"head_waiter_enabled" bson:"head_waiter_enabled"`
	WeddingCoeff       float64 `json:"wedding_coeff" bson:"wedding_coeff"`
	CorporateCoeff     float64 `json:"corporate_coeff" bson:"corporate_coeff"`
	BirthdayCoeff      float64 `json:"birthday_coeff" bson:"birthday_coeff"`
}

// Requirement is the computed headcount needed per standard role.
type Requirement struct {
	Servers    int `json:"servers"`
	Chefs      int `json:"chefs"`
	Bartenders int `json:"bartenders"`
	HeadWaiter int `json:"head_waiter"`
}

// Override is a complete, explicit replacement of the computed requirement.
// A nil *Override means "no override"; a non-nil one is always total, so a
// partially-filled override cannot exist past the API boundary.
type Override struct {
	Servers    int
	Chefs      int
	Bartenders int
	HeadWaiter int
}

// NormalizeOverride converts loosely-typed override input (nullable counts, as
// submitted by operator forms) into the total Override variant. The historical
// rule is kept exactly: any present server or chef count makes the whole
// override explicit, with unspecified roles defaulting to 0.
func NormalizeOverride(servers, chefs, bartenders, headWaiter *int) *Override {
	if servers == nil && chefs == nil {
		return nil
	}
	ov := &Override{}
	if servers != nil {
		ov.Servers = *servers
	}
	if chefs != nil {
		ov.Chefs = *chefs
	}
	if bartenders != nil {
		ov.Bartenders = *bartenders
	}
	if headWaiter != nil {
		ov.HeadWaiter = *headWaiter
	}
	return ov
}

// EventTypeCoeff returns the serving-intensity coefficient for a free-form
// event type label. Matching is case-insensitive and substring-based; an
// unrecognized type gets 1.0.
func EventTypeCoeff(eventType string, ratios RatioSettings) float64 {
	t := strings.ToLower(eventType)
	switch {
	case strings.Contains(t, "mariage"), strings.Contains(t, "wedding"):
		return coeffOrDefault(ratios.WeddingCoeff)
	case strings.Contains(t, "corporate"):
		return coeffOrDefault(ratios.CorporateCoeff)
	case strings.Contains(t, "anniversaire"), strings.Contains(t, "birthday"):
		return coeffOrDefault(ratios.BirthdayCoeff)
	default:
		return 1.0
	}
}

func coeffOrDefault(c float64) float64 {
	if c <= 0 {
		return 1.0
	}
	return c
}

// ComputeRequirement derives the needed headcount per role for an event.
// Pure and idempotent: safe to call on every read, never cached.
//
// The coefficient applies to servers only; chefs and bartenders scale on raw
// guest count. An override, when present, wins verbatim for all four roles.
func ComputeRequirement(guestCount int, eventType string, ratios RatioSettings, override *Override) Requirement {
	if override != nil {
		return Requirement{
			Servers:    clampCount(override.Servers),
			Chefs:      clampCount(override.Chefs),
			Bartenders: clampCount(override.Bartenders),
			HeadWaiter: clampCount(override.HeadWaiter),
		}
	}

	if guestCount < 0 {
		guestCount = 0
	}

	coeff := EventTypeCoeff(eventType, ratios)

	req := Requirement{
		Servers:    ceilRatio(guestCount, ratios.GuestsPerServer, coeff),
		Chefs:      ceilRatio(guestCount, ratios.GuestsPerChef, 1.0),
		Bartenders: ceilRatio(guestCount, ratios.GuestsPerBartender, 1.0),
	}
	if ratios.HeadWaiterEnabled {
		req.HeadWaiter = 1
	}
	return req
}

func ceilRatio(guests, ratio int, coeff float64) int {
	if guests == 0 || ratio <= 0 {
		return 0
	}
	return int(math.Ceil(float64(guests) / float64(ratio) * coeff))
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Needed returns the requirement for a single role key. Custom roles are not
// part of the standard requirement and report 0; callers merge operator-entered
// custom headcounts additively on top.
func (r Requirement) Needed(role RoleKey) int {
	switch role {
	case RoleServers:
		return r.Servers
	case RoleChefs:
		return r.Chefs
	case RoleBartenders:
		return r.Bartenders
	case RoleHeadWaiter:
		return r.HeadWaiter
	default:
		return 0
	}
}

// Total sums the standard-role headcounts.
func (r Requirement) Total() int {
	return r.Servers + r.Chefs + r.Bartenders + r.HeadWaiter
}
