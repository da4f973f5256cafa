package accounts

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenDatabase(nil, filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	return db
}

func TestUserServiceLifecycle(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	users := NewUserService(nil, testDB(t), 16, time.Minute)

	ok, err := users.Has(ctx, 42)
	assert.NoError(err)
	assert.False(ok)

	assert.NoError(users.Add(ctx, 42))
	assert.NoError(users.Add(ctx, 42)) // idempotent

	ok, err = users.Has(ctx, 42)
	assert.NoError(err)
	assert.True(ok)

	blocked, err := users.IsBlocked(ctx, 42)
	assert.NoError(err)
	assert.False(blocked)

	assert.NoError(users.SetBlocked(ctx, 42, true))
	blocked, err = users.IsBlocked(ctx, 42)
	assert.NoError(err)
	assert.True(blocked)

	assert.NoError(users.Remove(ctx, 42))
	ok, err = users.Has(ctx, 42)
	assert.NoError(err)
	assert.False(ok)
}

func TestUserServiceUnknownNotBlocked(t *testing.T) {
	assert := assert.New(t)

	users := NewUserService(nil, testDB(t), 16, time.Minute)
	blocked, err := users.IsBlocked(context.Background(), 999)
	assert.NoError(err)
	assert.False(blocked)
}

func TestModeratorServiceInitStoresSystemRoot(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	mods := NewModeratorService(nil, testDB(t))
	require.NoError(t, mods.Init(ctx))

	// the row must exist under the system id itself, not a generated key
	mod, err := mods.Get(ctx, SystemUserID)
	assert.NoError(err)
	require.NotNil(t, mod)
	assert.Equal(SystemUserID, mod.UserID)
	assert.True(mod.IsRoot)

	// re-running bootstrap is a no-op
	require.NoError(t, mods.Init(ctx))
	mod, err = mods.Get(ctx, SystemUserID)
	assert.NoError(err)
	require.NotNil(t, mod)
	assert.True(mod.IsRoot)
}

func TestModeratorServicePermissions(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	mods := NewModeratorService(nil, testDB(t))
	require.NoError(t, mods.Init(ctx))

	// root bootstrap holds every permission
	ok, err := mods.Can(ctx, SystemUserID, PermManageModerators)
	assert.NoError(err)
	assert.True(ok)

	// root appoints a moderator; fresh moderators hold nothing
	assert.NoError(mods.Add(ctx, SystemUserID, 7))
	ok, err = mods.Can(ctx, 7, PermApprovePosts)
	assert.NoError(err)
	assert.False(ok)

	// unprivileged moderator cannot appoint others
	err = mods.Add(ctx, 7, 8)
	assert.ErrorIs(err, ErrPermissionDenied)

	// grant, then verify
	assert.NoError(mods.UpdatePermissions(ctx, SystemUserID, 7, true, true, false))
	ok, err = mods.Can(ctx, 7, PermApprovePosts)
	assert.NoError(err)
	assert.True(ok)
	ok, err = mods.Can(ctx, 7, PermManageBans)
	assert.NoError(err)
	assert.True(ok)
	ok, err = mods.Can(ctx, 7, PermManageModerators)
	assert.NoError(err)
	assert.False(ok)

	// non-moderators hold nothing
	ok, err = mods.Can(ctx, 999, PermApprovePosts)
	assert.NoError(err)
	assert.False(ok)
}

func TestModeratorServiceSelfAction(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	mods := NewModeratorService(nil, testDB(t))
	require.NoError(t, mods.Init(ctx))

	err := mods.Remove(ctx, SystemUserID, SystemUserID)
	assert.ErrorIs(err, ErrSelfAction)

	err = mods.Ban(ctx, SystemUserID, SystemUserID)
	assert.ErrorIs(err, ErrSelfAction)
}

func TestModeratorServiceBans(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	mods := NewModeratorService(nil, testDB(t))
	require.NoError(t, mods.Init(ctx))

	banned, err := mods.IsBanned(ctx, 42)
	assert.NoError(err)
	assert.False(banned)

	assert.NoError(mods.Ban(ctx, SystemUserID, 42))
	banned, err = mods.IsBanned(ctx, 42)
	assert.NoError(err)
	assert.True(banned)

	// ban management requires the permission
	assert.NoError(mods.Add(ctx, SystemUserID, 7))
	err = mods.Unban(ctx, 7, 42)
	assert.ErrorIs(err, ErrPermissionDenied)

	assert.NoError(mods.Unban(ctx, SystemUserID, 42))
	banned, err = mods.IsBanned(ctx, 42)
	assert.NoError(err)
	assert.False(banned)
}
