package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContactSeesOnlyOwnDocuments(t *testing.T) {
	m := NewMatrix()

	require.False(t, m.HasPermission(RoleContact, PermVendorBillsView))
	require.True(t, m.HasPermission(RoleContact, PermVendorBillsViewOwn))
	require.False(t, m.HasPermission(RoleContact, PermUsersCreate))
}

func TestAdminManagesUsers(t *testing.T) {
	m := NewMatrix()

	require.True(t, m.HasPermission(RoleAdmin, PermUsersCreate))
	require.False(t, m.HasPermission(RoleAccountant, PermUsersCreate))
}

func TestHasAnyPermission(t *testing.T) {
	m := NewMatrix()

	require.True(t, m.HasAnyPermission(RoleContact, PermVendorBillsView, PermVendorBillsViewOwn))
	require.False(t, m.HasAnyPermission(RoleContact, PermVendorBillsView, PermPaymentsView))
	require.False(t, m.HasAnyPermission(RoleContact))
}

func TestHasAllPermissions(t *testing.T) {
	m := NewMatrix()

	require.True(t, m.HasAllPermissions(RoleAccountant, PermPaymentsCreate, PermPaymentsDelete))
	require.False(t, m.HasAllPermissions(RoleAccountant, PermPaymentsCreate, PermUsersCreate))
	require.True(t, m.HasAllPermissions(RoleContact))
}

func TestUnknownRoleHoldsNothing(t *testing.T) {
	m := NewMatrix()

	require.False(t, m.HasPermission(Role("INTERN"), PermDashboardView))
	require.Empty(t, m.Permissions(Role("INTERN")))
}
