package constants

// Role pengguna untuk gate fitur finance
const (
	RoleAdmin   = "admin"
	RoleBursar  = "bursar"
	RoleStudent = "student"
	RoleParent  = "parent"
)

// FinanceStaff = role yang boleh operasi keuangan privileged
// (void invoice, manual reconcile, kelola fee structure)
var FinanceStaff = []string{RoleAdmin, RoleBursar}
