// ABOUTME: View-scope engine deciding which records a user can see
// ABOUTME: Implements view reachability checks and the order-preserving scope filter
package belonging

import (
	"errors"
	"slices"

	"github.com/abbrubin150-ui/crmhtml/models"
)

// ErrPermissionDenied is returned when a user asks for a view mode or
// operation their role does not allow.
var ErrPermissionDenied = errors.New("permission denied")

// CanSwitchView reports whether user may use mode. Reachability is always
// derived from the user's current role, never from stored state.
func CanSwitchView(user *models.User, mode models.ViewMode) bool {
	if user == nil {
		return false
	}
	return slices.Contains(profileFor(user.Role).modes, mode)
}

// AvailableViewModes returns the modes user may switch to, narrowest first.
func AvailableViewModes(user *models.User) []models.ViewMode {
	if user == nil {
		return nil
	}
	return ViewModesForRole(user.Role)
}

// FilterByScope returns the subset of records visible to user under its
// current view mode, preserving order. A nil user sees everything; this is a
// compatibility default, not a security boundary.
func FilterByScope[T models.ScopedRecord](records []T, user *models.User) []T {
	if user == nil || len(records) == 0 {
		return records
	}
	if user.Role == models.RoleAdmin && user.ViewMode == models.ViewAllData {
		return records
	}

	preset := user.FilterPreset
	switch user.ViewMode {
	case models.ViewMyData:
		return filter(records, func(s models.Scope) bool {
			return s.Owner == user.Name || s.AssignedTo(user.ID)
		})

	case models.ViewTeamData:
		owners := toSet(preset.Owner)
		return filterByPreset(records, user, owners, func(s models.Scope) bool {
			return owners[s.Owner] || (user.TeamName != "" && s.TeamName == user.TeamName)
		})

	case models.ViewRegionalData:
		locations := toSet(preset.Locations)
		return filterByPreset(records, user, locations, func(s models.Scope) bool {
			return locations[s.Location] || locations[s.Region]
		})

	case models.ViewProjectTypeData:
		types := toSet(preset.ProjectTypes)
		return filterByPreset(records, user, types, func(s models.Scope) bool {
			return types[s.ProjectType]
		})

	default:
		// all_data for non-admins and unknown modes apply no filter.
		return records
	}
}

// filterByPreset keeps records matching keep when the preset dimension has
// values, and otherwise only the user's own records. The fallback stops a
// manager with an unconfigured preset from seeing everything.
func filterByPreset[T models.ScopedRecord](records []T, user *models.User, dimension map[string]bool, keep func(models.Scope) bool) []T {
	if len(dimension) == 0 {
		return filter(records, func(s models.Scope) bool {
			return s.Owner == user.Name
		})
	}
	return filter(records, keep)
}

func filter[T models.ScopedRecord](records []T, keep func(models.Scope) bool) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if keep(r.Scoped()) {
			out = append(out, r)
		}
	}
	return out
}

// toSet drops blank entries, so a preset of only blanks counts as empty and
// never matches records that leave the field unset.
func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = true
		}
	}
	return set
}
