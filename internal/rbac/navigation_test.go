package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanAccessDeclaredRoute(t *testing.T) {
	m := NewMatrix()

	require.True(t, m.CanAccessRoute(RoleAccountant, "/payments"))
	require.True(t, m.CanAccessRoute(RoleAccountant, "/payments/17"))
	require.False(t, m.CanAccessRoute(RoleContact, "/payments"))
}

func TestUndeclaredRouteDenied(t *testing.T) {
	m := NewMatrix()

	// Undeclared routes deny for every role, including ADMIN.
	require.False(t, m.CanAccessRoute(RoleAdmin, "/internal/debug"))
	require.False(t, m.CanAccessRoute(RoleContact, "/exports"))
}

func TestPublicRoutesAllowAnonymous(t *testing.T) {
	m := NewMatrix()

	require.True(t, m.CanAccessRoute(Role(""), "/healthz"))
	require.True(t, m.CanAccessRoute(Role(""), "/auth/login"))
	require.False(t, m.CanAccessRoute(Role(""), "/invoices"))
}

func TestLongestPrefixWins(t *testing.T) {
	m := NewMatrix()

	// /orders/purchase requires the purchase permission even though the
	// shorter /orders prefix is undeclared.
	require.True(t, m.CanAccessRoute(RoleAccountant, "/orders/purchase/12/items"))
	require.False(t, m.CanAccessRoute(RoleContact, "/orders/purchase/12"))
	require.False(t, m.CanAccessRoute(RoleAccountant, "/orders"))
}

func TestNavigationForRole(t *testing.T) {
	m := NewMatrix()

	var titles []string
	for _, e := range m.NavigationFor(RoleContact) {
		titles = append(titles, e.Title)
	}
	require.Equal(t, []string{"Dashboard", "Invoices", "Permissions"}, titles)
}
