package store

import "strings"

// Path builders for the board's addressing scheme. Dates are YYYY-MM-DD in
// the tenant's local calendar.

func TenantPath(tenantID string) string {
	return "tenants/" + tenantID
}

func AreasCollection(tenantID string) string {
	return "tenants/" + tenantID + "/areas"
}

func AreaPath(tenantID, areaID string) string {
	return AreasCollection(tenantID) + "/" + areaID
}

func StaffCollection(tenantID string) string {
	return "tenants/" + tenantID + "/staff"
}

func StaffPath(tenantID, staffID string) string {
	return StaffCollection(tenantID) + "/" + staffID
}

func ShiftTypesCollection(tenantID string) string {
	return "tenants/" + tenantID + "/shiftTypes"
}

func ShiftTypePath(tenantID, code string) string {
	return ShiftTypesCollection(tenantID) + "/" + code
}

func AssignmentsCollection(tenantID, date string) string {
	return "tenants/" + tenantID + "/days/" + date + "/assignments"
}

func AssignmentPath(tenantID, date, staffID string) string {
	return AssignmentsCollection(tenantID, date) + "/" + staffID
}

func ShiftsCollection(tenantID, date string) string {
	return "tenants/" + tenantID + "/days/" + date + "/shifts"
}

func ShiftPath(tenantID, date, staffID string) string {
	return ShiftsCollection(tenantID, date) + "/" + staffID
}

func AuditLogsCollection(tenantID, date string) string {
	return "tenants/" + tenantID + "/days/" + date + "/auditLogs"
}

func DayStateCollection(tenantID, date string) string {
	return "tenants/" + tenantID + "/days/" + date + "/meta"
}

func DayStatePath(tenantID, date string) string {
	return DayStateCollection(tenantID, date) + "/state"
}

// SplitPath returns the collection and document id of a document path.
func SplitPath(path string) (collection, id string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}
