// ABOUTME: Tests for the Badger key/value store and persister
// ABOUTME: Uses in-memory Badger so nothing touches disk
package kv

import (
	"context"
	"testing"
	"time"

	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/notify"
	"github.com/abbrubin150-ui/crmhtml/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestKV(t *testing.T) *KV {
	t.Helper()
	kv, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestKVGetMissingKey(t *testing.T) {
	kv := openTestKV(t)

	v, err := kv.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestKVSetDeleteKeys(t *testing.T) {
	kv := openTestKV(t)

	require.NoError(t, kv.Set(KeyUsers, []byte(`[]`)))
	require.NoError(t, kv.Set(KeyTasks, []byte(`[]`)))
	require.NoError(t, kv.Set("other", []byte(`1`)))

	keys, err := kv.Keys(KeyPrefix)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{KeyUsers, KeyTasks}, keys)

	require.NoError(t, kv.Delete(KeyTasks))
	v, err := kv.Get(KeyTasks)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestPersisterRoundTrip(t *testing.T) {
	p := NewPersister(openTestKV(t))
	ctx := context.Background()

	users, err := p.LoadUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, p.SaveUsers(ctx, []models.User{{ID: "u1", Name: "Ann", Role: models.RoleTeamLead, TeamName: "Blue"}}))
	require.NoError(t, p.SaveCurrentUserID(ctx, "u1"))
	require.NoError(t, p.SaveMeetings(ctx, []models.Meeting{{ID: "m1", ContactName: "Acme", Date: "2026-10-15", Scope: models.Scope{TeamName: "Blue"}}}))
	require.NoError(t, p.SaveDismissals(ctx, notify.NewKeySet("meeting-m1")))

	users, err = p.LoadUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Blue", users[0].TeamName)

	id, err := p.LoadCurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	meetings, err := p.LoadMeetings(ctx)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, "Blue", meetings[0].TeamName)

	dismissed, err := p.LoadDismissals(ctx)
	require.NoError(t, err)
	assert.True(t, dismissed.Has("meeting-m1"))

	require.NoError(t, p.SaveCurrentUserID(ctx, ""))
	id, err = p.LoadCurrentUserID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestDismissalsStoredAsKeyMap(t *testing.T) {
	kv := openTestKV(t)
	p := NewPersister(kv)
	ctx := context.Background()

	require.NoError(t, p.SaveDismissals(ctx, notify.NewKeySet("task-1")))
	raw, err := kv.Get(KeyDismissals)
	require.NoError(t, err)
	assert.JSONEq(t, `{"task-1": true}`, string(raw))

	// A false entry written by another client counts as not dismissed.
	require.NoError(t, kv.Set(KeyDismissals, []byte(`{"task-1": false, "task-2": true}`)))
	dismissed, err := p.LoadDismissals(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"task-2"}, dismissed.Keys())
}

func TestCorruptCollectionFailsLoad(t *testing.T) {
	kv := openTestKV(t)
	require.NoError(t, kv.Set(KeyContacts, []byte(`{not json`)))

	_, err := NewPersister(kv).LoadContacts(context.Background())
	assert.Error(t, err)
}

func TestStoreOverBadger(t *testing.T) {
	kv := openTestKV(t)
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }

	s, err := store.Open(ctx, NewPersister(kv), store.Options{Clock: clock})
	require.NoError(t, err)
	admin := s.Users()[0]
	require.NoError(t, s.Dispatch(ctx, store.SetCurrentUser{UserID: admin.ID}))
	require.NoError(t, s.Dispatch(ctx, store.SwitchViewMode{Mode: models.ViewMyData}))

	reopened, err := store.Open(ctx, NewPersister(kv), store.Options{Clock: clock})
	require.NoError(t, err)
	require.NotNil(t, reopened.CurrentUser())
	assert.Equal(t, models.ViewMyData, reopened.CurrentUser().ViewMode)
}
