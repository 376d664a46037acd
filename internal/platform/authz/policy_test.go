package authz

import "testing"

func TestCan(t *testing.T) {
	cases := []struct {
		name     string
		role     Role
		resource Resource
		action   Action
		want     bool
	}{
		{"super admin manages companies", RoleSuperAdmin, ResourceCompanies, ActionWrite, true},
		{"super admin decides approvals", RoleSuperAdmin, ResourceApprovals, ActionDecide, true},
		{"admin cannot manage companies", RoleAdmin, ResourceCompanies, ActionWrite, false},
		{"admin writes deals", RoleAdmin, ResourceDeals, ActionWrite, true},
		{"admin decides approvals", RoleAdmin, ResourceApprovals, ActionDecide, true},
		{"manager reads reports", RoleManager, ResourceReports, ActionRead, true},
		{"manager cannot decide approvals", RoleManager, ResourceApprovals, ActionDecide, false},
		{"sales writes quotes", RoleSales, ResourceQuotes, ActionWrite, true},
		{"sales cannot write invoices", RoleSales, ResourceInvoices, ActionWrite, false},
		{"sales cannot read activity", RoleSales, ResourceActivity, ActionRead, false},
		{"support writes tickets", RoleSupport, ResourceTickets, ActionWrite, true},
		{"support cannot write deals", RoleSupport, ResourceDeals, ActionWrite, false},
		{"support cannot read reports", RoleSupport, ResourceReports, ActionRead, false},
		{"unknown role gets nothing", Role("GUEST"), ResourceCustomers, ActionRead, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Can(tc.role, tc.resource, tc.action); got != tc.want {
				t.Fatalf("Can(%s, %s, %s) = %v, want %v", tc.role, tc.resource, tc.action, got, tc.want)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleSales, RoleSupport} {
		if !r.Valid() {
			t.Fatalf("expected %s to be valid", r)
		}
	}
	if Role("INTERN").Valid() {
		t.Fatalf("expected unknown role to be invalid")
	}
}
