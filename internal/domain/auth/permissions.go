package auth

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

const (
	PermEmployeesRead     = "core.employees.read"
	PermEmployeesWrite    = "core.employees.write"
	PermVenuesRead        = "core.venues.read"
	PermVenuesWrite       = "core.venues.write"
	PermAttendanceRead    = "attendance.read"
	PermAttendanceWrite   = "attendance.write"
	PermAttendanceRecord  = "attendance.record"
	PermFinanceRead       = "finance.read"
	PermFinanceWrite      = "finance.write"
	PermGamificationRead  = "gamification.read"
	PermGamificationWrite = "gamification.write"
	PermGamificationRun   = "gamification.run"
	PermShopRead          = "shop.read"
	PermShopWrite         = "shop.write"
	PermShopPurchase      = "shop.purchase"
	PermShopApprove       = "shop.approve"
	PermRecruitingRead    = "recruiting.read"
	PermRecruitingWrite   = "recruiting.write"
	PermRecruitingDecide  = "recruiting.decide"
	PermReportsRead       = "reports.read"
	PermAuditRead         = "audit.read"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermVenuesRead,
	PermVenuesWrite,
	PermAttendanceRead,
	PermAttendanceWrite,
	PermAttendanceRecord,
	PermFinanceRead,
	PermFinanceWrite,
	PermGamificationRead,
	PermGamificationWrite,
	PermGamificationRun,
	PermShopRead,
	PermShopWrite,
	PermShopPurchase,
	PermShopApprove,
	PermRecruitingRead,
	PermRecruitingWrite,
	PermRecruitingDecide,
	PermReportsRead,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleMember: {
		PermVenuesRead,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermFinanceRead,
		PermGamificationRead,
		PermShopRead,
		PermShopPurchase,
		PermRecruitingRead,
	},
	RoleManager: {
		PermEmployeesRead,
		PermVenuesRead,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermAttendanceRecord,
		PermFinanceRead,
		PermGamificationRead,
		PermGamificationWrite,
		PermShopRead,
		PermShopPurchase,
		PermShopApprove,
		PermRecruitingRead,
		PermReportsRead,
	},
	RoleAdmin: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermVenuesRead,
		PermVenuesWrite,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermAttendanceRecord,
		PermFinanceRead,
		PermFinanceWrite,
		PermGamificationRead,
		PermGamificationWrite,
		PermGamificationRun,
		PermShopRead,
		PermShopWrite,
		PermShopPurchase,
		PermShopApprove,
		PermRecruitingRead,
		PermRecruitingWrite,
		PermRecruitingDecide,
		PermReportsRead,
		PermAuditRead,
	},
}
