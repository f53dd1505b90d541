package forum

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanMutate_OwnerInsideWindow(t *testing.T) {
	createdAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	owner := &User{ID: "alice", Role: RoleMember}

	assert.True(t, CanMutate("alice", createdAt, owner, createdAt.Add(4*time.Minute+59*time.Second)))
	assert.False(t, CanMutate("alice", createdAt, owner, createdAt.Add(5*time.Minute)))
	assert.False(t, CanMutate("alice", createdAt, owner, createdAt.Add(time.Hour)))
}

func TestCanMutate_NonOwner(t *testing.T) {
	createdAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	other := &User{ID: "bob", Role: RoleMember}

	assert.False(t, CanMutate("alice", createdAt, other, createdAt.Add(time.Minute)))
}

func TestCanMutate_AdminBypassesWindow(t *testing.T) {
	createdAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	admin := &User{ID: "root", Role: RoleAdmin}

	assert.True(t, CanMutate("alice", createdAt, admin, createdAt.Add(48*time.Hour)))
}

func TestCanMutate_ModeratorGetsNoBypass(t *testing.T) {
	createdAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	mod := &User{ID: "mod", Role: RoleModerator}

	assert.False(t, CanMutate("alice", createdAt, mod, createdAt.Add(time.Minute)))
	// Unless the moderator owns the content
	assert.True(t, CanMutate("mod", createdAt, mod, createdAt.Add(time.Minute)))
}

func TestBannedNow(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	assert.False(t, (&User{}).BannedNow(now))

	permanent := &User{IsBanned: true}
	assert.True(t, permanent.BannedNow(now))

	until := now.Add(time.Hour)
	temporary := &User{IsBanned: true, BannedUntil: &until}
	assert.True(t, temporary.BannedNow(now))
	// Lazy expiry: the flag stays set but the ban no longer bites
	assert.False(t, temporary.BannedNow(now.Add(2*time.Hour)))
}

func TestIsNewAccount(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	young := &User{CreatedAt: now.Add(-6 * 24 * time.Hour)}
	assert.True(t, young.IsNewAccount(now))

	old := &User{CreatedAt: now.Add(-8 * 24 * time.Hour)}
	assert.False(t, old.IsNewAccount(now))
}
