package table

import "math"

// Lifecycle labels shared by the dashboard tables.
const (
	StatusActive       = "Active"
	StatusPending      = "Pending"
	StatusExpiringSoon = "Expiring Soon"
	StatusExpired      = "Expired"
	StatusInactive     = "Inactive"
	StatusBlocked      = "Blocked"
)

// Unranked is the rank of a label missing from a PriorityTable.
const Unranked = math.MaxInt

// PriorityTable maps lifecycle labels to a sort rank. Lower ranks sort first.
type PriorityTable map[string]int

// DefaultPriority orders the most urgent customers first.
var DefaultPriority = PriorityTable{
	StatusExpiringSoon: 1,
	StatusActive:       2,
	StatusExpired:      3,
}

// Rank returns the rank of label. An absent label (ok == false) or one not in
// the table is Unranked.
func (p PriorityTable) Rank(label string, ok bool) int {
	if !ok {
		return Unranked
	}
	if rank, found := p[label]; found {
		return rank
	}
	return Unranked
}
