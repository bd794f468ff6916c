package domain

import "time"

// Enumerations
const (
	AreaRoom    AreaType = "room"
	AreaOutdoor AreaType = "outdoor"
	AreaAdmin   AreaType = "admin"
	AreaFree    AreaType = "free"
	AreaBreak   AreaType = "break"
	AreaOther   AreaType = "other"

	BreakPattern1530 BreakPattern = "15_30"
	BreakPattern3030 BreakPattern = "30_30"

	ShiftSourceSeed   ShiftSource = "seed"
	ShiftSourceExcel  ShiftSource = "excel"
	ShiftSourceManual ShiftSource = "manual"

	AuditMove        AuditKind = "move"
	AuditLock        AuditKind = "lock"
	AuditUnlock      AuditKind = "unlock"
	AuditBreakStart  AuditKind = "break_start"
	AuditBreakEnd    AuditKind = "break_end"
	AuditBreakCancel AuditKind = "break_cancel"
	AuditImport      AuditKind = "import"
)

// Reserved area ids the board logic depends on. They are seeded at bootstrap
// and must not be deleted by admin tooling.
const (
	AreaIDFree   = "free"
	AreaIDBreak  = "break"
	AreaIDOffice = "office"
)

type AreaType string
type BreakPattern string
type ShiftSource string
type AuditKind string

type Tenant struct {
	Name              string `json:"name"`
	Timezone          string `json:"timezone"`
	MinStaffThreshold int    `json:"minStaffThreshold"`
	// EditPINHash is the bcrypt hash of the admin edit PIN. Empty disables
	// edit sessions for the tenant.
	EditPINHash string    `json:"editPinHash,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

type Area struct {
	Name  string   `json:"name"`
	Order int      `json:"order"`
	Type  AreaType `json:"type"`
}

type Staff struct {
	LastName  string `json:"lastName"`
	FirstName string `json:"firstName"`
	// Single roman letter disambiguating staff who share a surname.
	FirstInitial     string       `json:"firstInitial"`
	Active           bool         `json:"active"`
	BreakPattern     BreakPattern `json:"breakPattern"`
	ShowOnBoard      *bool        `json:"showOnBoard,omitempty"`
	ShowOnTimeline   *bool        `json:"showOnTimeline,omitempty"`
	ShiftCodeDefault string       `json:"shiftCodeDefault"`
	FixedStart       string       `json:"fixedStart,omitempty"` // "HH:MM"
	FixedEnd         string       `json:"fixedEnd,omitempty"`   // "HH:MM"
	CreatedAt        time.Time    `json:"createdAt,omitempty"`
	UpdatedAt        time.Time    `json:"updatedAt,omitempty"`
}

type ShiftType struct {
	Code  string `json:"code"`
	Start string `json:"start"` // "HH:MM"
	End   string `json:"end"`   // "HH:MM"
	Order int    `json:"order"`
}

type BreakSlot struct {
	Minutes   int        `json:"minutes"` // 15 or 30
	Used      bool       `json:"used"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

type Shift struct {
	StartAt    time.Time   `json:"startAt"`
	EndAt      time.Time   `json:"endAt"`
	ShiftCode  string      `json:"shiftCode"`
	BreakSlots []BreakSlot `json:"breakSlots"`
	Absent     bool        `json:"absent,omitempty"`
	Source     ShiftSource `json:"source"`
}

// Assignment is the single source of truth for "where is this person right
// now". A missing document reads as areaId="free", version=0.
type Assignment struct {
	AreaID       string    `json:"areaId"`
	Version      int64     `json:"version"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
	UpdatedByUID string    `json:"updatedByUid,omitempty"`
}

type DayState struct {
	EditLocked  bool       `json:"editLocked"`
	LockedAt    *time.Time `json:"lockedAt,omitempty"`
	LockedByUID string     `json:"lockedByUid,omitempty"`
	Memo        string     `json:"memo,omitempty"`
}

// AuditEntry is append-only; fields are populated per kind.
type AuditEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	Kind          AuditKind `json:"type"`
	StaffID       string    `json:"staffId,omitempty"`
	FromAreaID    string    `json:"fromAreaId,omitempty"`
	ToAreaID      string    `json:"toAreaId,omitempty"`
	Minutes       int       `json:"minutes,omitempty"`
	ImportedCount int       `json:"importedCount,omitempty"`
	UID           string    `json:"uid,omitempty"`
}

// RemainingBreaks counts unused slots; drives the board badge.
func (s Shift) RemainingBreaks() int {
	n := 0
	for _, b := range s.BreakSlots {
		if !b.Used {
			n++
		}
	}
	return n
}

// BreakSlotsFor returns the day's break entitlement for a staff member.
func BreakSlotsFor(pattern BreakPattern) []BreakSlot {
	if pattern == BreakPattern1530 {
		return []BreakSlot{{Minutes: 15}, {Minutes: 30}}
	}
	return []BreakSlot{{Minutes: 30}, {Minutes: 30}}
}
