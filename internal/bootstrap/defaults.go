package bootstrap

import "github.com/BST1120/mapper2/internal/domain"

// AreaSeed pairs a reserved area id with its document.
type AreaSeed struct {
	AreaID string
	Area   domain.Area
}

// DefaultAreas is the initial floor layout. The free/break/office ids are
// load-bearing: the board logic depends on them.
var DefaultAreas = []AreaSeed{
	{AreaID: "saru", Area: domain.Area{Name: "さる", Order: 10, Type: domain.AreaRoom}},
	{AreaID: "hebi", Area: domain.Area{Name: "へび", Order: 20, Type: domain.AreaRoom}},
	{AreaID: "lunch", Area: domain.Area{Name: "ランチ", Order: 30, Type: domain.AreaOther}},
	{AreaID: "usagi", Area: domain.Area{Name: "うさぎ", Order: 40, Type: domain.AreaRoom}},
	{AreaID: "tora", Area: domain.Area{Name: "とら", Order: 50, Type: domain.AreaRoom}},
	{AreaID: "nezumi", Area: domain.Area{Name: "ねずみ", Order: 60, Type: domain.AreaRoom}},

	{AreaID: "yard_older", Area: domain.Area{Name: "以上児園庭", Order: 70, Type: domain.AreaOutdoor}},
	{AreaID: domain.AreaIDOffice, Area: domain.Area{Name: "事務室", Order: 80, Type: domain.AreaAdmin}},
	{AreaID: "yard_younger", Area: domain.Area{Name: "未満児園庭", Order: 90, Type: domain.AreaOutdoor}},

	{AreaID: "backyard", Area: domain.Area{Name: "裏庭", Order: 100, Type: domain.AreaOutdoor}},
	{AreaID: "biotope", Area: domain.Area{Name: "ビオトープ", Order: 110, Type: domain.AreaOutdoor}},
	{AreaID: "yard", Area: domain.Area{Name: "園庭", Order: 120, Type: domain.AreaOutdoor}},

	{AreaID: domain.AreaIDFree, Area: domain.Area{Name: "フリー", Order: 900, Type: domain.AreaFree}},
	{AreaID: domain.AreaIDBreak, Area: domain.Area{Name: "休憩", Order: 910, Type: domain.AreaBreak}},
	{AreaID: "offsite", Area: domain.Area{Name: "園外", Order: 920, Type: domain.AreaOther}},
}

// DefaultShiftTypes is the standard code table.
var DefaultShiftTypes = []domain.ShiftType{
	{Code: "A", Start: "07:00", End: "16:00", Order: 10},
	{Code: "B", Start: "07:30", End: "16:30", Order: 20},
	{Code: "C", Start: "08:00", End: "17:00", Order: 30},
	{Code: "D", Start: "08:30", End: "17:30", Order: 40},
	{Code: "E", Start: "09:00", End: "18:00", Order: 50},
	{Code: "F", Start: "10:00", End: "19:00", Order: 60},
	{Code: "G", Start: "08:30", End: "16:45", Order: 70},
	{Code: "H", Start: "08:45", End: "17:45", Order: 80},
	{Code: "I", Start: "09:15", End: "16:00", Order: 90},
	{Code: "J", Start: "12:45", End: "18:30", Order: 100},
	{Code: "K", Start: "09:00", End: "15:45", Order: 110},
	{Code: "L", Start: "15:00", End: "18:00", Order: 120},
	{Code: "M", Start: "08:30", End: "15:15", Order: 130},
	{Code: "G1", Start: "09:15", End: "16:30", Order: 140},
	{Code: "H1", Start: "09:00", End: "17:00", Order: 150},
	{Code: "I1", Start: "09:15", End: "15:00", Order: 160},
	{Code: "K1", Start: "10:00", End: "14:30", Order: 170},
	{Code: "L1", Start: "14:00", End: "18:00", Order: 180},
	{Code: "D1", Start: "08:30", End: "17:00", Order: 190},
}

// ShiftTypesByCode indexes the defaults for window resolution.
func ShiftTypesByCode() map[string]domain.ShiftType {
	out := make(map[string]domain.ShiftType, len(DefaultShiftTypes))
	for _, st := range DefaultShiftTypes {
		out[st.Code] = st
	}
	return out
}
