// Package timeline reconstructs derived state from the day's audit log: the
// area each staff member occupied at any past instant, the 15-minute
// headcount series, and the understaffed windows below the tenant threshold.
// Everything here is a stateless fold that is safe to recompute from scratch;
// the audit log is approximate, never authoritative.
package timeline

import (
	"fmt"
	"time"

	"github.com/BST1120/mapper2/internal/domain"
)

// Day window covered by the board: 07:00 through 19:00 local.
const (
	dayStartHour = 7
	dayEndHour   = 19
)

// Slot is one 15-minute boundary instant. The final 19:00 slot is a boundary
// label only, not a counted interval.
type Slot struct {
	T     time.Time
	Label string
}

// MakeSlots generates the 49 slot instants 07:00, 07:15, ..., 19:00 for the
// date in the given location.
func MakeSlots(date string, loc *time.Location) ([]Slot, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	var out []Slot
	for h := dayStartHour; h < dayEndHour; h++ {
		for m := 0; m < 60; m += 15 {
			out = append(out, Slot{
				T:     day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute),
				Label: fmt.Sprintf("%02d:%02d", h, m),
			})
		}
	}
	out = append(out, Slot{
		T:     day.Add(time.Duration(dayEndHour) * time.Hour),
		Label: fmt.Sprintf("%02d:00", dayEndHour),
	})
	return out, nil
}

// StaffRow is one staff member's inputs to the headcount pass.
type StaffRow struct {
	ID       string
	Shift    *domain.Shift
	Timeline Timeline
}

// SlotCounts replays every staff member's area timeline across the first 48
// slots and returns the on-floor headcount per slot. The per-staff move
// pointer only advances, so each move list is scanned once across the whole
// pass. A staff member counts toward a slot iff their shift exists, is not
// absent, covers the instant as [start, end), and their area at that instant
// is not the office bucket.
func SlotCounts(slots []Slot, rows []StaffRow) []int {
	type tracker struct {
		row     StaffRow
		areaID  string
		moveIdx int
	}
	trackers := make([]*tracker, 0, len(rows))
	for _, r := range rows {
		trackers = append(trackers, &tracker{row: r, areaID: r.Timeline.InitialAreaID})
	}

	n := len(slots) - 1
	if n < 0 {
		n = 0
	}
	counts := make([]int, 0, n)
	for i := 0; i < n; i++ {
		t := slots[i].T
		c := 0
		for _, tr := range trackers {
			moves := tr.row.Timeline.Moves
			for tr.moveIdx < len(moves) && !moves[tr.moveIdx].At.After(t) {
				tr.areaID = moves[tr.moveIdx].ToAreaID
				tr.moveIdx++
			}
			if tr.areaID == domain.AreaIDOffice {
				continue
			}
			sh := tr.row.Shift
			if sh == nil || sh.Absent {
				continue
			}
			if sh.StartAt.IsZero() || sh.EndAt.IsZero() {
				continue
			}
			if !t.Before(sh.StartAt) && t.Before(sh.EndAt) {
				c++
			}
		}
		counts = append(counts, c)
	}
	return counts
}
