package domain

import (
	"fmt"
	"time"
)

// DateAtLocal resolves "YYYY-MM-DD" + "HH:MM" into an instant in loc.
func DateAtLocal(date, hhmm string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+hhmm, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q %q: %w", date, hhmm, err)
	}
	return t, nil
}

// ResolveShiftWindow maps a shift code to its start/end times of day,
// falling back to the staff member's fixed times, then to 09:00-18:00.
func ResolveShiftWindow(code string, staff Staff, typesByCode map[string]ShiftType) (start, end string) {
	if st, ok := typesByCode[code]; ok && st.Start != "" && st.End != "" {
		return st.Start, st.End
	}
	start, end = staff.FixedStart, staff.FixedEnd
	if start == "" {
		start = "09:00"
	}
	if end == "" {
		end = "18:00"
	}
	return start, end
}
