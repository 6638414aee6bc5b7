package rbac

// NavEntry declares the permissions required to reach a route subtree.
type NavEntry struct {
	Path        string
	Title       string
	Permissions []Permission
	Public      bool
}

// navigationConfig is the static route→permission tree. Routes absent
// from this table are denied: the predecessor defaulted to allow for
// undeclared routes, which was judged a latent bug and replaced with
// default-deny (see DESIGN.md).
func navigationConfig() []NavEntry {
	return []NavEntry{
		{Path: "/healthz", Title: "Health", Public: true},
		{Path: "/metrics", Title: "Metrics", Public: true},
		{Path: "/auth", Title: "Authentication", Public: true},
		{Path: "/dashboard", Title: "Dashboard", Permissions: []Permission{PermDashboardView}},
		{Path: "/contacts", Title: "Contacts", Permissions: []Permission{PermContactsView}},
		{Path: "/products", Title: "Products", Permissions: []Permission{PermProductsView}},
		{Path: "/orders/purchase", Title: "Purchase Orders", Permissions: []Permission{PermPurchaseOrdersView}},
		{Path: "/orders/sales", Title: "Sales Orders", Permissions: []Permission{PermSalesOrdersView}},
		{Path: "/invoices", Title: "Invoices", Permissions: []Permission{
			PermVendorBillsView, PermVendorBillsViewOwn,
			PermCustomerInvoicesView, PermCustomerInvoicesViewOwn,
		}},
		{Path: "/payments", Title: "Payments", Permissions: []Permission{PermPaymentsView}},
		{Path: "/users", Title: "Users", Permissions: []Permission{PermUsersView}},
		{Path: "/permissions", Title: "Permissions", Permissions: []Permission{PermDashboardView}},
	}
}

func navigationIndex() (map[string][]Permission, map[string]struct{}) {
	entries := navigationConfig()
	nav := make(map[string][]Permission, len(entries))
	public := make(map[string]struct{})
	for _, e := range entries {
		if e.Public {
			public[e.Path] = struct{}{}
			continue
		}
		nav[e.Path] = e.Permissions
	}
	return nav, public
}

// CanAccessRoute checks the longest declared prefix of route against the
// navigation tree. Public entries allow anonymous access; declared
// entries require any of their permissions; undeclared routes deny.
func (m *Matrix) CanAccessRoute(role Role, route string) bool {
	for path := range m.public {
		if matchesPrefix(route, path) {
			return true
		}
	}
	var (
		bestLen   int
		bestPerms []Permission
		found     bool
	)
	for path, perms := range m.nav {
		if matchesPrefix(route, path) && len(path) > bestLen {
			bestLen = len(path)
			bestPerms = perms
			found = true
		}
	}
	if !found {
		return false
	}
	return m.HasAnyPermission(role, bestPerms...)
}

// NavigationFor returns the entries a role may see, for menu rendering
// by API clients.
func (m *Matrix) NavigationFor(role Role) []NavEntry {
	var out []NavEntry
	for _, e := range navigationConfig() {
		if e.Public {
			continue
		}
		if m.HasAnyPermission(role, e.Permissions...) {
			out = append(out, e)
		}
	}
	return out
}

func matchesPrefix(route, path string) bool {
	if route == path {
		return true
	}
	return len(route) > len(path) && route[:len(path)] == path && route[len(path)] == '/'
}
