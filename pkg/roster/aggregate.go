package roster

// StaffingRow is one staffing assignment or confirmation request as seen by the
// aggregator: a free-text role label plus a status string.
type StaffingRow struct {
	Role   string
	Status string
}

// Row statuses the aggregator understands. Anything else counts as pending.
const (
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
	StatusPending   = "pending"
)

// FillState classifies a single role gauge for display.
type FillState string

const (
	FillFull     FillState = "full"
	FillPartial  FillState = "partial"
	FillUnfilled FillState = "unfilled"
)

// Gauge is the per-role staffing picture: how many are needed, how many
// confirmed, and the remaining gap.
type Gauge struct {
	Needed    int       `json:"needed"`
	Confirmed int       `json:"confirmed"`
	Missing   int       `json:"missing"`
	State     FillState `json:"state"`
}

// Report is the full roster picture for one event, recomputed from scratch on
// every call so it can never drift from the underlying rows.
type Report struct {
	Roles          map[RoleKey]Gauge `json:"roles"`
	TotalNeeded    int               `json:"total_needed"`
	TotalConfirmed int               `json:"total_confirmed"`
}

// ClassifyFill is the gauge color rule, kept as a standalone pure function.
func ClassifyFill(needed, confirmed int) FillState {
	switch {
	case confirmed >= needed:
		return FillFull
	case confirmed == 0 && needed > 0:
		return FillUnfilled
	default:
		return FillPartial
	}
}

// Aggregate buckets staffing rows by role and compares confirmed counts against
// the requirement. Inputs are never mutated; the function is safe to call
// concurrently from multiple readers.
func Aggregate(req Requirement, rows []StaffingRow, classify Classifier) Report {
	if classify == nil {
		classify = ClassifyRole
	}

	confirmed := make(map[RoleKey]int, len(StandardRoles))
	for _, row := range rows {
		if row.Status != StatusConfirmed {
			continue
		}
		confirmed[classify(row.Role)]++
	}

	report := Report{Roles: make(map[RoleKey]Gauge, len(StandardRoles))}
	for _, role := range StandardRoles {
		needed := req.Needed(role)
		got := confirmed[role]
		missing := needed - got
		if missing < 0 {
			missing = 0
		}
		report.Roles[role] = Gauge{
			Needed:    needed,
			Confirmed: got,
			Missing:   missing,
			State:     ClassifyFill(needed, got),
		}
		report.TotalNeeded += needed
		report.TotalConfirmed += got
	}
	return report
}
