// ABOUTME: Upgrades legacy user records to the belonging-system schema
// ABOUTME: Backfills view mode, filter preset, permissions and dashboard config deterministically
package belonging

import (
	"slices"

	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/google/uuid"
)

// legacyPermissionRole is the tier used for users stored without a role.
const legacyPermissionRole = models.RoleConsultant

// MigrateUsers returns users upgraded to the current schema and whether any
// record changed. The input slice is not modified. Running it twice is a
// no-op the second time.
func MigrateUsers(users []models.User) ([]models.User, bool) {
	out := make([]models.User, len(users))
	changed := false
	for i, u := range users {
		migrated, ok := MigrateUser(u)
		out[i] = migrated
		changed = changed || ok
	}
	return out, changed
}

// MigrateUser upgrades a single user record. See MigrateUsers.
func MigrateUser(u models.User) (models.User, bool) {
	changed := false

	if u.ID == "" {
		u.ID = uuid.NewString()
		changed = true
	}

	if u.ViewMode == "" {
		permRole := u.Role
		if permRole == "" {
			permRole = legacyPermissionRole
		}
		u.ViewMode = DefaultViewMode(u.Role)
		u.FilterPreset = models.FilterPreset{
			Owner:        []string{u.Name},
			ProjectTypes: []string{},
			Locations:    []string{},
			Teams:        []string{},
		}
		u.Permissions = DefaultPermissions(permRole)
		u.DashboardConfig = DefaultDashboardConfig(permRole)
		return u, true
	}

	// A role change can leave a stored view mode out of reach.
	if !slices.Contains(ViewModesForRole(u.Role), u.ViewMode) {
		u.ViewMode = DefaultViewMode(u.Role)
		changed = true
	}

	if u.FilterPreset.Owner == nil || u.FilterPreset.ProjectTypes == nil ||
		u.FilterPreset.Locations == nil || u.FilterPreset.Teams == nil {
		u.FilterPreset = normalizePreset(u.FilterPreset)
		changed = true
	}

	return u, changed
}

func normalizePreset(p models.FilterPreset) models.FilterPreset {
	if p.Owner == nil {
		p.Owner = []string{}
	}
	if p.ProjectTypes == nil {
		p.ProjectTypes = []string{}
	}
	if p.Locations == nil {
		p.Locations = []string{}
	}
	if p.Teams == nil {
		p.Teams = []string{}
	}
	return p
}
