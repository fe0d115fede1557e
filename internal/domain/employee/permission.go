package employee

type Permission string

const (
	// Attendance
	PermissionAttendanceClock   Permission = "attendance.clock"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"

	// Leave
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveViewAll Permission = "leave.view_all"
	PermissionLeaveApprove Permission = "leave.approve"

	// Compliance
	PermissionComplianceViewOwn Permission = "compliance.view_own"
	PermissionComplianceViewAll Permission = "compliance.view_all"

	// Roster
	PermissionEmployeeManage Permission = "employee.manage"
	PermissionRoleAssign     Permission = "employee.assign_role"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionAttendanceClock,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionComplianceViewOwn,
		PermissionComplianceViewAll,
		PermissionEmployeeManage,
		PermissionRoleAssign,
	},
	RoleManager: {
		PermissionAttendanceClock,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionLeaveCreate,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionComplianceViewOwn,
		PermissionComplianceViewAll,
		PermissionEmployeeManage,
	},
	RoleEmployee: {
		PermissionAttendanceClock,
		PermissionAttendanceViewOwn,
		PermissionLeaveCreate,
		PermissionComplianceViewOwn,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
