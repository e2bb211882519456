// ABOUTME: Static role catalog for the belonging system
// ABOUTME: Maps each role to its reachable view modes, default view mode and dashboard defaults
package belonging

import "github.com/abbrubin150-ui/crmhtml/models"

// viewModeOrder is the canonical ordering, narrowest first.
var viewModeOrder = []models.ViewMode{
	models.ViewMyData,
	models.ViewTeamData,
	models.ViewRegionalData,
	models.ViewProjectTypeData,
	models.ViewAllData,
}

var viewModeLabels = map[models.ViewMode]string{
	models.ViewMyData:          "My Work",
	models.ViewTeamData:        "My Team",
	models.ViewRegionalData:    "My Region",
	models.ViewProjectTypeData: "My Projects",
	models.ViewAllData:         "All Data",
}

type roleProfile struct {
	modes       []models.ViewMode
	defaultMode models.ViewMode
}

var roleProfiles = map[models.Role]roleProfile{
	models.RoleAdmin: {
		modes:       viewModeOrder,
		defaultMode: models.ViewAllData,
	},
	models.RoleRegionalManager: {
		modes:       []models.ViewMode{models.ViewMyData, models.ViewTeamData, models.ViewRegionalData},
		defaultMode: models.ViewRegionalData,
	},
	models.RoleTeamLead: {
		modes:       []models.ViewMode{models.ViewMyData, models.ViewTeamData},
		defaultMode: models.ViewTeamData,
	},
	models.RoleProjectManager: {
		modes:       []models.ViewMode{models.ViewMyData, models.ViewProjectTypeData},
		defaultMode: models.ViewProjectTypeData,
	},
}

// sales_rep, consultant and any unknown role.
var restrictedProfile = roleProfile{
	modes:       []models.ViewMode{models.ViewMyData},
	defaultMode: models.ViewMyData,
}

func profileFor(role models.Role) roleProfile {
	if p, ok := roleProfiles[role]; ok {
		return p
	}
	return restrictedProfile
}

// Roles lists the known roles in catalog order.
func Roles() []models.Role {
	return []models.Role{
		models.RoleAdmin,
		models.RoleRegionalManager,
		models.RoleTeamLead,
		models.RoleProjectManager,
		models.RoleSalesRep,
		models.RoleConsultant,
	}
}

// ViewModes lists every view mode, narrowest first.
func ViewModes() []models.ViewMode {
	return append([]models.ViewMode(nil), viewModeOrder...)
}

// ViewModesForRole returns the reachable view modes for role, narrowest first.
func ViewModesForRole(role models.Role) []models.ViewMode {
	return append([]models.ViewMode(nil), profileFor(role).modes...)
}

// DefaultViewMode returns the view mode a user of role starts in.
func DefaultViewMode(role models.Role) models.ViewMode {
	return profileFor(role).defaultMode
}

// ViewModeLabel returns the selector label for mode, or the raw mode string
// when it is unknown.
func ViewModeLabel(mode models.ViewMode) string {
	if label, ok := viewModeLabels[mode]; ok {
		return label
	}
	return string(mode)
}

// IsKnownViewMode reports whether mode is one of the five view modes.
func IsKnownViewMode(mode models.ViewMode) bool {
	_, ok := viewModeLabels[mode]
	return ok
}

// DefaultDashboardConfig returns the dashboard defaults for role. Every role
// currently shares the same defaults.
func DefaultDashboardConfig(_ models.Role) *models.DashboardConfig {
	return &models.DashboardConfig{
		ShowKPIs:         []string{"all"},
		ShowCharts:       true,
		DefaultDateRange: "7days",
	}
}
