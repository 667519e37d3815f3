package domain

// CatalogEntry is a seedable permission definition.
type CatalogEntry struct {
	Name        string
	Description string
	Scope       Scope
}

// PermissionCatalog returns the full set of permissions the platform
// recognizes. Storage is seeded from this list; names are stable
// identifiers referenced by roles and route gates.
func PermissionCatalog() []CatalogEntry {
	return []CatalogEntry{
		{Name: "access_admin_dashboard", Description: "Access the platform admin dashboard", Scope: ScopeGlobal},
		{Name: "manage_organization_requests", Description: "Approve or reject organization registration requests", Scope: ScopeGlobal},
		{Name: "manage_user_global_roles", Description: "Create global roles and assign them to users", Scope: ScopeGlobal},
		{Name: "assign_organization_owner", Description: "Bootstrap an organization owner", Scope: ScopeGlobal},
		{Name: "manage_platform_settings", Description: "Change platform-wide settings", Scope: ScopeGlobal},

		{Name: "view_turf", Description: "View the organization's turfs", Scope: ScopeOrganization},
		{Name: "manage_turfs", Description: "Create and edit the organization's turfs", Scope: ScopeOrganization},
		{Name: "manage_time_slots", Description: "Manage turf time slots", Scope: ScopeOrganization},
		{Name: "view_bookings", Description: "View the organization's bookings", Scope: ScopeOrganization},
		{Name: "manage_bookings", Description: "Confirm, move, or cancel bookings", Scope: ScopeOrganization},
		{Name: "manage_organization_roles", Description: "Manage roles within the organization", Scope: ScopeOrganization},
		{Name: "view_organization_reports", Description: "View the organization's reports", Scope: ScopeOrganization},

		{Name: "manage_event", Description: "Edit event details", Scope: ScopeEvent},
		{Name: "view_event_attendees", Description: "View event attendees", Scope: ScopeEvent},
		{Name: "manage_event_roles", Description: "Manage roles within the event", Scope: ScopeEvent},
	}
}
