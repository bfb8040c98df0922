package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedarboard/cedar/models"
)

func TestIssueWarningRequiresModerator(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db)

	regular := newUser(t, db, "regular", models.RoleRegular, false)
	mod := newUser(t, db, "mod", models.RoleModerator, false)
	target := newUser(t, db, "target", models.RoleRegular, false)

	_, err := svc.IssueWarning(target.ID, regular, "spam")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.IssueWarning(target.ID, mod, "   ")
	assert.ErrorIs(t, err, ErrInvalid)

	warn, err := svc.IssueWarning(target.ID, mod, "spam")
	require.NoError(t, err)
	assert.Equal(t, target.ID, warn.UserID)
	assert.Equal(t, mod.ID, warn.ModeratorID)

	// Warnings accumulate without limit.
	_, err = svc.IssueWarning(target.ID, mod, "more spam")
	require.NoError(t, err)
	warns, err := svc.ListWarns(target.ID)
	require.NoError(t, err)
	assert.Len(t, warns, 2)
}

func TestIssueBanValidatesDurationBeforeWriting(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db)

	mod := newUser(t, db, "mod", models.RoleModerator, false)
	target := newUser(t, db, "target", models.RoleRegular, false)

	for _, days := range []int{0, -1, -30} {
		_, err := svc.IssueBan(target.ID, mod, "abuse", days)
		assert.ErrorIs(t, err, ErrInvalid, "duration %d must be rejected", days)
	}

	var count int64
	require.NoError(t, db.Model(&models.Ban{}).Count(&count).Error)
	assert.EqualValues(t, 0, count, "rejected bans must write nothing")
}

func TestIssueBanEndDate(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db)

	mod := newUser(t, db, "mod", models.RoleModerator, false)
	target := newUser(t, db, "target", models.RoleRegular, false)

	ban, err := svc.IssueBan(target.ID, mod, "abuse", 7)
	require.NoError(t, err)
	assert.True(t, ban.IsActive)
	assert.Equal(t, ban.StartDate.Add(7*24*time.Hour), ban.EndDate)

	banned, err := svc.HasActiveBan(target.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, banned)
}

func TestHasActiveBanExpiry(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db)

	mod := newUser(t, db, "mod", models.RoleModerator, false)
	target := newUser(t, db, "target", models.RoleRegular, false)

	ban, err := svc.IssueBan(target.ID, mod, "abuse", 3)
	require.NoError(t, err)

	// Nothing sweeps expired bans: is_active stays true, only the clock decides.
	afterExpiry := ban.EndDate.Add(time.Minute)
	banned, err := svc.HasActiveBan(target.ID, afterExpiry)
	require.NoError(t, err)
	assert.False(t, banned)

	var stored models.Ban
	require.NoError(t, db.First(&stored, ban.ID).Error)
	assert.True(t, stored.IsActive)
	assert.False(t, stored.ActiveAt(afterExpiry))
	assert.True(t, stored.ActiveAt(ban.StartDate.Add(time.Hour)))
}

func TestLiftBan(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db)

	mod := newUser(t, db, "mod", models.RoleModerator, false)
	regular := newUser(t, db, "regular", models.RoleRegular, false)
	target := newUser(t, db, "target", models.RoleRegular, false)

	ban, err := svc.IssueBan(target.ID, mod, "abuse", 30)
	require.NoError(t, err)

	err = svc.LiftBan(ban.ID, regular)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.LiftBan(ban.ID, mod))

	banned, err := svc.HasActiveBan(target.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, banned, "a lifted ban no longer counts even before its end date")

	err = svc.LiftBan(9999, mod)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdjustKarma(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db)

	target := newUser(t, db, "target", models.RoleRegular, false)

	karma, err := svc.AdjustKarma(target.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, karma)

	karma, err = svc.AdjustKarma(target.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, karma)

	// Unbounded below zero.
	karma, err = svc.AdjustKarma(target.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, -1, karma)

	_, err = svc.AdjustKarma(target.ID, 5)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.AdjustKarma(9999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListBansNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewModerationService(db)

	mod := newUser(t, db, "mod", models.RoleModerator, false)
	target := newUser(t, db, "target", models.RoleRegular, false)

	first, err := svc.IssueBan(target.ID, mod, "first", 1)
	require.NoError(t, err)
	second, err := svc.IssueBan(target.ID, mod, "second", 2)
	require.NoError(t, err)

	bans, err := svc.ListBans(target.ID)
	require.NoError(t, err)
	require.Len(t, bans, 2)
	assert.Equal(t, second.ID, bans[0].ID)
	assert.Equal(t, first.ID, bans[1].ID)
	assert.Equal(t, "mod", bans[0].Moderator.Username)
}
