package board

import "errors"

var (
	// ErrEditLocked rejects mutations while the day is locked (advisory gate).
	ErrEditLocked = errors.New("day is locked for editing")
	// ErrNoShift means no shift record exists for the staff member that day.
	ErrNoShift = errors.New("no shift recorded for this staff member today")
	// ErrBreakTooLate rejects breaks requested inside the final 30 minutes of
	// a shift.
	ErrBreakTooLate = errors.New("break cannot start this close to shift end")
	// ErrNoSlotAvailable means every break slot is already consumed.
	ErrNoSlotAvailable = errors.New("no break slot remaining")
)

// ValidationError flags malformed input before any store round-trip.
type ValidationError string

func (e ValidationError) Error() string {
	return "invalid input: " + string(e)
}
