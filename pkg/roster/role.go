package roster

import "strings"

// RoleKey is the normalized internal role identifier, distinct from the
// free-text role labels operators type on team members and staffing rows.
type RoleKey string

const (
	RoleServers    RoleKey = "servers"
	RoleChefs      RoleKey = "chefs"
	RoleBartenders RoleKey = "bartenders"
	RoleHeadWaiter RoleKey = "head_waiter"
)

// StandardRoles lists the role keys in display order.
var StandardRoles = []RoleKey{RoleServers, RoleChefs, RoleBartenders, RoleHeadWaiter}

// Classifier maps a free-text role label to a RoleKey. It is injectable so the
// fallback bucket is an explicit, testable decision rather than an accident of
// substring matching.
type Classifier func(freeTextRole string) RoleKey

// rolePatterns pairs each role key with the label substrings seen in operator
// data. Order matters: first match wins.
var rolePatterns = []struct {
	key      RoleKey
	patterns []string
}{
	{RoleHeadWaiter, []string{"maître", "maitre"}},
	{RoleChefs, []string{"chef", "cuisinier", "cuisinière"}},
	{RoleBartenders, []string{"barman", "barmaid", "bartender"}},
	{RoleServers, []string{"serveur", "serveuse", "server", "waiter"}},
}

// ClassifyRole is the default Classifier. Unmatched labels land in the servers
// bucket, which mirrors how operators historically entered one-off roles.
// TODO: revisit whether unmatched labels should get their own bucket instead of
// inflating the servers gauge.
func ClassifyRole(freeTextRole string) RoleKey {
	label := strings.ToLower(strings.TrimSpace(freeTextRole))
	for _, rp := range rolePatterns {
		for _, p := range rp.patterns {
			if strings.Contains(label, p) {
				return rp.key
			}
		}
	}
	return RoleServers
}

// Label returns the French display label for a role, pluralized when count > 1.
func (k RoleKey) Label(count int) string {
	plural := count > 1
	switch k {
	case RoleServers:
		if plural {
			return "serveurs"
		}
		return "serveur"
	case RoleChefs:
		if plural {
			return "chefs"
		}
		return "chef"
	case RoleBartenders:
		if plural {
			return "barmans"
		}
		return "barman"
	case RoleHeadWaiter:
		if plural {
			return "maîtres d'hôtel"
		}
		return "maître d'hôtel"
	default:
		return string(k)
	}
}
