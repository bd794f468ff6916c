package timeline

import (
	"sort"
	"time"

	"github.com/BST1120/mapper2/internal/domain"
)

// AreaMove is one replayed transition.
type AreaMove struct {
	At         time.Time
	ToAreaID   string
	FromAreaID string
}

// Timeline is an initial area plus chronological transitions.
type Timeline struct {
	InitialAreaID string
	Moves         []AreaMove
}

// BuildAreaTimelines folds the day's move log into a per-staff timeline.
//
// The area before the first recorded move is taken from that move's recorded
// origin. When the origin is missing (or the log window does not reach back
// to the staff member's true first move), the current live assignment stands
// in for the start-of-day area. That is a known accuracy limit carried over
// from the log being best-effort: early-day history before the earliest
// retained entry cannot be exactly recovered.
func BuildAreaTimelines(staffIDs []string, assignments map[string]domain.Assignment, logs []domain.AuditEntry) map[string]Timeline {
	byStaff := make(map[string][]AreaMove, len(staffIDs))
	for _, id := range staffIDs {
		byStaff[id] = nil
	}

	for _, entry := range logs {
		if entry.Kind != domain.AuditMove {
			continue
		}
		if entry.StaffID == "" || entry.ToAreaID == "" {
			continue
		}
		if _, tracked := byStaff[entry.StaffID]; !tracked {
			continue
		}
		if entry.Timestamp.IsZero() {
			continue
		}
		byStaff[entry.StaffID] = append(byStaff[entry.StaffID], AreaMove{
			At:         entry.Timestamp,
			ToAreaID:   entry.ToAreaID,
			FromAreaID: entry.FromAreaID,
		})
	}

	out := make(map[string]Timeline, len(staffIDs))
	for _, id := range staffIDs {
		moves := byStaff[id]
		sort.Slice(moves, func(i, j int) bool { return moves[i].At.Before(moves[j].At) })

		current := domain.AreaIDFree
		if a, ok := assignments[id]; ok && a.AreaID != "" {
			current = a.AreaID
		}
		initial := current
		if len(moves) > 0 && moves[0].FromAreaID != "" {
			initial = moves[0].FromAreaID
		}
		out[id] = Timeline{InitialAreaID: initial, Moves: moves}
	}
	return out
}
