package rbac

// Matrix answers "does role R hold permission P" from tables built once
// at construction. It holds no mutable state and is safe for concurrent
// use; handlers receive it as a dependency instead of importing a
// package-level singleton.
type Matrix struct {
	grants map[Role]map[Permission]struct{}
	nav    map[string][]Permission
	public map[string]struct{}
}

func accountantPermissions() []Permission {
	return []Permission{
		PermDashboardView,
		PermContactsView, PermContactsCreate, PermContactsEdit, PermContactsDelete,
		PermProductsView, PermProductsCreate, PermProductsEdit, PermProductsDelete,
		PermPurchaseOrdersView, PermPurchaseOrdersCreate, PermPurchaseOrdersEdit,
		PermSalesOrdersView, PermSalesOrdersCreate, PermSalesOrdersEdit,
		PermVendorBillsView, PermVendorBillsCreate, PermVendorBillsEdit,
		PermCustomerInvoicesView, PermCustomerInvoicesCreate, PermCustomerInvoicesEdit,
		PermPaymentsView, PermPaymentsCreate, PermPaymentsEdit, PermPaymentsDelete,
	}
}

func adminPermissions() []Permission {
	return append(accountantPermissions(),
		PermVendorBillsViewOwn,
		PermCustomerInvoicesViewOwn,
		PermUsersView, PermUsersCreate, PermUsersEdit,
	)
}

// Contacts see only documents addressed to them.
func contactPermissions() []Permission {
	return []Permission{
		PermDashboardView,
		PermVendorBillsViewOwn,
		PermCustomerInvoicesViewOwn,
	}
}

// NewMatrix builds the immutable role→permission tables.
func NewMatrix() *Matrix {
	rolePerms := map[Role][]Permission{
		RoleAdmin:      adminPermissions(),
		RoleAccountant: accountantPermissions(),
		RoleContact:    contactPermissions(),
	}

	grants := make(map[Role]map[Permission]struct{}, len(rolePerms))
	for role, perms := range rolePerms {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		grants[role] = set
	}

	nav, public := navigationIndex()
	return &Matrix{grants: grants, nav: nav, public: public}
}

// HasPermission reports set membership for a single permission.
func (m *Matrix) HasPermission(role Role, perm Permission) bool {
	_, ok := m.grants[role][perm]
	return ok
}

// HasAnyPermission reports whether the role holds at least one of perms.
func (m *Matrix) HasAnyPermission(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if m.HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the role holds every permission.
func (m *Matrix) HasAllPermissions(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if !m.HasPermission(role, p) {
			return false
		}
	}
	return true
}

// Permissions returns the sorted-by-declaration grant list for a role.
func (m *Matrix) Permissions(role Role) []Permission {
	var source []Permission
	switch role {
	case RoleAdmin:
		source = adminPermissions()
	case RoleAccountant:
		source = accountantPermissions()
	case RoleContact:
		source = contactPermissions()
	}
	return source
}
