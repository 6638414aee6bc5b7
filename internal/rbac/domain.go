package rbac

// Role is a high-level permission grouping. The set is fixed; roles are
// not editable at runtime.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleAccountant Role = "ACCOUNTANT"
	RoleContact    Role = "CONTACT"
)

// Permission is an atomic capability, named area:resource:action.
type Permission string

const (
	PermDashboardView Permission = "dashboard:view"

	PermContactsView   Permission = "contacts:view"
	PermContactsCreate Permission = "contacts:create"
	PermContactsEdit   Permission = "contacts:edit"
	PermContactsDelete Permission = "contacts:delete"

	PermProductsView   Permission = "products:view"
	PermProductsCreate Permission = "products:create"
	PermProductsEdit   Permission = "products:edit"
	PermProductsDelete Permission = "products:delete"

	PermPurchaseOrdersView   Permission = "transactions:purchase_orders:view"
	PermPurchaseOrdersCreate Permission = "transactions:purchase_orders:create"
	PermPurchaseOrdersEdit   Permission = "transactions:purchase_orders:edit"

	PermSalesOrdersView   Permission = "transactions:sales_orders:view"
	PermSalesOrdersCreate Permission = "transactions:sales_orders:create"
	PermSalesOrdersEdit   Permission = "transactions:sales_orders:edit"

	PermVendorBillsView    Permission = "transactions:vendor_bills:view"
	PermVendorBillsViewOwn Permission = "transactions:vendor_bills:view_own"
	PermVendorBillsCreate  Permission = "transactions:vendor_bills:create"
	PermVendorBillsEdit    Permission = "transactions:vendor_bills:edit"

	PermCustomerInvoicesView    Permission = "transactions:customer_invoices:view"
	PermCustomerInvoicesViewOwn Permission = "transactions:customer_invoices:view_own"
	PermCustomerInvoicesCreate  Permission = "transactions:customer_invoices:create"
	PermCustomerInvoicesEdit    Permission = "transactions:customer_invoices:edit"

	PermPaymentsView   Permission = "transactions:payments:view"
	PermPaymentsCreate Permission = "transactions:payments:create"
	PermPaymentsEdit   Permission = "transactions:payments:edit"
	PermPaymentsDelete Permission = "transactions:payments:delete"

	PermUsersView   Permission = "users:view"
	PermUsersCreate Permission = "users:create"
	PermUsersEdit   Permission = "users:edit"
)

// Roles returns the fixed role set.
func Roles() []Role {
	return []Role{RoleAdmin, RoleAccountant, RoleContact}
}
