// ABOUTME: Permission gate for CRM resources
// ABOUTME: Resolves resource/action checks against a user's matrix and provides role defaults
package belonging

import "github.com/abbrubin150-ui/crmhtml/models"

// HasPermission reports whether user may perform action on resource.
//
// A nil user or a user without a permission matrix is allowed everything,
// for compatibility with records written before permissions existed. Once
// a matrix is present, any resource/action pair it does not list is denied.
func HasPermission(user *models.User, resource models.Resource, action models.Action) bool {
	if user == nil || user.Permissions == nil {
		return true
	}
	actions, ok := user.Permissions[resource]
	if !ok {
		return false
	}
	return actions[action]
}

// Actions lists the actions that apply to resource.
func Actions(resource models.Resource) []models.Action {
	switch resource {
	case models.ResourceReports:
		return []models.Action{models.ActionView, models.ActionExport}
	case models.ResourceSettings:
		return []models.Action{models.ActionView, models.ActionEdit}
	default:
		return []models.Action{models.ActionView, models.ActionCreate, models.ActionEdit, models.ActionDelete}
	}
}

// Resources lists every permission-checked resource.
func Resources() []models.Resource {
	return []models.Resource{
		models.ResourceContacts,
		models.ResourceMeetings,
		models.ResourceTasks,
		models.ResourceReports,
		models.ResourceSettings,
	}
}

// DefaultPermissions returns a fresh permission matrix for role.
func DefaultPermissions(role models.Role) models.Permissions {
	switch role {
	case models.RoleAdmin:
		return buildPermissions(dataAccess{view: true, create: true, edit: true, delete: true}, true, true, true)
	case models.RoleRegionalManager, models.RoleTeamLead, models.RoleSalesRep:
		return buildPermissions(dataAccess{view: true, create: true, edit: true, delete: true}, true, true, false)
	case models.RoleConsultant, models.RoleProjectManager:
		return buildPermissions(dataAccess{view: true, create: true, edit: true}, false, true, false)
	default:
		return buildPermissions(dataAccess{view: true, create: true}, false, false, false)
	}
}

type dataAccess struct {
	view, create, edit, delete bool
}

func buildPermissions(data dataAccess, export, settingsView, settingsEdit bool) models.Permissions {
	perms := models.Permissions{}
	for _, r := range []models.Resource{models.ResourceContacts, models.ResourceMeetings, models.ResourceTasks} {
		perms[r] = map[models.Action]bool{
			models.ActionView:   data.view,
			models.ActionCreate: data.create,
			models.ActionEdit:   data.edit,
			models.ActionDelete: data.delete,
		}
	}
	perms[models.ResourceReports] = map[models.Action]bool{
		models.ActionView:   true,
		models.ActionExport: export,
	}
	perms[models.ResourceSettings] = map[models.Action]bool{
		models.ActionView: settingsView,
		models.ActionEdit: settingsEdit,
	}
	return perms
}
