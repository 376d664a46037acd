// Package authz centralizes the role/permission table so handlers consult one
// policy instead of scattering role checks.
package authz

// Role is the coarse access level attached to a user and their sessions.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleSales      Role = "SALES"
	RoleSupport    Role = "SUPPORT"
)

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleSales, RoleSupport:
		return true
	}
	return false
}

// IsSuperAdmin reports whether the role operates across tenants.
func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}

// Resource names an API surface guarded by the policy.
type Resource string

const (
	ResourceCompanies     Resource = "companies"
	ResourceUsers         Resource = "users"
	ResourceCustomers     Resource = "customers"
	ResourceDeals         Resource = "deals"
	ResourceQuotes        Resource = "quotes"
	ResourceInvoices      Resource = "invoices"
	ResourceShipments     Resource = "shipments"
	ResourceTasks         Resource = "tasks"
	ResourceTickets       Resource = "tickets"
	ResourceVendors       Resource = "vendors"
	ResourceApprovals     Resource = "approvals"
	ResourceNotifications Resource = "notifications"
	ResourceActivity      Resource = "activity"
	ResourceReports       Resource = "reports"
	ResourceAssist        Resource = "assist"
)

// Action is the kind of access requested on a resource.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
	// ActionDecide covers approval/rejection style operations.
	ActionDecide Action = "decide"
)

// grants maps each role to the actions it may take per resource.
// SUPER_ADMIN and ADMIN are handled in Can; this table covers the rest.
var grants = map[Role]map[Resource][]Action{
	RoleManager: {
		ResourceUsers:         {ActionRead},
		ResourceCustomers:     {ActionRead, ActionWrite},
		ResourceDeals:         {ActionRead, ActionWrite},
		ResourceQuotes:        {ActionRead, ActionWrite},
		ResourceInvoices:      {ActionRead, ActionWrite},
		ResourceShipments:     {ActionRead, ActionWrite},
		ResourceTasks:         {ActionRead, ActionWrite},
		ResourceTickets:       {ActionRead, ActionWrite},
		ResourceVendors:       {ActionRead, ActionWrite},
		ResourceApprovals:     {ActionRead, ActionWrite},
		ResourceNotifications: {ActionRead, ActionWrite},
		ResourceActivity:      {ActionRead},
		ResourceReports:       {ActionRead},
		ResourceAssist:        {ActionWrite},
	},
	RoleSales: {
		ResourceCustomers:     {ActionRead, ActionWrite},
		ResourceDeals:         {ActionRead, ActionWrite},
		ResourceQuotes:        {ActionRead, ActionWrite},
		ResourceShipments:     {ActionRead},
		ResourceInvoices:      {ActionRead},
		ResourceTasks:         {ActionRead, ActionWrite},
		ResourceVendors:       {ActionRead},
		ResourceApprovals:     {ActionRead, ActionWrite},
		ResourceNotifications: {ActionRead, ActionWrite},
		ResourceReports:       {ActionRead},
		ResourceAssist:        {ActionWrite},
	},
	RoleSupport: {
		ResourceCustomers:     {ActionRead},
		ResourceTickets:       {ActionRead, ActionWrite},
		ResourceTasks:         {ActionRead, ActionWrite},
		ResourceShipments:     {ActionRead},
		ResourceNotifications: {ActionRead, ActionWrite},
		ResourceAssist:        {ActionWrite},
	},
}

// Can reports whether the role may perform the action on the resource.
//
// SUPER_ADMIN may do everything, including tenant management. ADMIN may do
// everything inside their own company except manage companies; approval
// decisions remain limited to ADMIN and SUPER_ADMIN.
func Can(role Role, resource Resource, action Action) bool {
	switch role {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		if resource == ResourceCompanies {
			return false
		}
		return true
	}

	if action == ActionDecide {
		return false
	}
	for _, a := range grants[role][resource] {
		if a == action {
			return true
		}
	}
	return false
}
