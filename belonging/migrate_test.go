// ABOUTME: Tests for the legacy user migration
// ABOUTME: Verifies backfilled defaults, unreachable view repair and idempotency
package belonging

import (
	"testing"

	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUsersBackfillsLegacyRecords(t *testing.T) {
	legacy := []models.User{
		{ID: "1", Name: "System Admin", Role: models.RoleAdmin, Active: true},
		{ID: "2", Name: "Mara", Role: models.RoleRegionalManager, Active: true},
		{ID: "3", Name: "Nobody", Active: true},
	}

	migrated, changed := MigrateUsers(legacy)
	require.True(t, changed)
	require.Len(t, migrated, 3)

	admin := migrated[0]
	assert.Equal(t, models.ViewAllData, admin.ViewMode)
	assert.Equal(t, []string{"System Admin"}, admin.FilterPreset.Owner)
	assert.Empty(t, admin.FilterPreset.Locations)
	assert.NotNil(t, admin.FilterPreset.Locations)
	assert.Equal(t, DefaultPermissions(models.RoleAdmin), admin.Permissions)
	require.NotNil(t, admin.DashboardConfig)
	assert.Equal(t, "7days", admin.DashboardConfig.DefaultDateRange)

	assert.Equal(t, models.ViewRegionalData, migrated[1].ViewMode)

	roleless := migrated[2]
	assert.Equal(t, models.ViewMyData, roleless.ViewMode)
	assert.Equal(t, models.Role(""), roleless.Role)
	assert.Equal(t, DefaultPermissions(models.RoleConsultant), roleless.Permissions)

	// input untouched
	assert.Empty(t, legacy[0].ViewMode)
}

func TestMigrateUsersIsIdempotent(t *testing.T) {
	legacy := []models.User{
		{ID: "1", Name: "Alice", Role: models.RoleSalesRep},
		{ID: "2", Name: "Lena", Role: models.RoleTeamLead},
	}

	once, changed := MigrateUsers(legacy)
	require.True(t, changed)

	twice, changed := MigrateUsers(once)
	assert.False(t, changed)
	assert.Equal(t, once, twice)
}

func TestMigrateUsersIsDeterministic(t *testing.T) {
	legacy := []models.User{{ID: "1", Name: "Alice", Role: models.RoleSalesRep}}

	a, _ := MigrateUsers(legacy)
	b, _ := MigrateUsers(legacy)
	assert.Equal(t, a, b)
}

func TestMigrateUserRepairsUnreachableViewMode(t *testing.T) {
	demoted := models.User{
		ID: "1", Name: "Mara", Role: models.RoleSalesRep, ViewMode: models.ViewRegionalData,
		FilterPreset: models.FilterPreset{Owner: []string{"Mara"}, ProjectTypes: []string{}, Locations: []string{"London"}, Teams: []string{}},
	}

	migrated, changed := MigrateUser(demoted)
	assert.True(t, changed)
	assert.Equal(t, models.ViewMyData, migrated.ViewMode)
	assert.Equal(t, []string{"London"}, migrated.FilterPreset.Locations)
}

func TestMigrateUserLeavesCurrentRecordsAlone(t *testing.T) {
	current := models.User{
		ID: "1", Name: "Alice", Role: models.RoleSalesRep, ViewMode: models.ViewMyData,
		FilterPreset: models.FilterPreset{Owner: []string{"Alice"}, ProjectTypes: []string{}, Locations: []string{}, Teams: []string{}},
		Permissions:  models.Permissions{models.ResourceContacts: {models.ActionView: true}},
	}

	migrated, changed := MigrateUser(current)
	assert.False(t, changed)
	assert.Equal(t, current, migrated)
}

func TestMigrateUserAssignsMissingID(t *testing.T) {
	migrated, changed := MigrateUser(models.User{Name: "Ghost"})
	assert.True(t, changed)
	assert.NotEmpty(t, migrated.ID)
}
