package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cedarboard/cedar/models"
)

// ModerationService issues warnings and bans and adjusts profile karma.
type ModerationService struct {
	db *gorm.DB
}

// NewModerationService creates a new ModerationService instance.
func NewModerationService(db *gorm.DB) *ModerationService {
	return &ModerationService{db: db}
}

// IssueWarning records a warning against a user. Moderators and admins only.
// There is no cap on how many warnings a user can accumulate.
func (s *ModerationService) IssueWarning(targetID uint, moderator *models.User, reason string) (*models.Warn, error) {
	if !moderator.IsModerator() {
		return nil, fmt.Errorf("%w: only moderators may issue warnings", ErrForbidden)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason cannot be empty", ErrInvalid)
	}
	if err := s.userExists(targetID); err != nil {
		return nil, err
	}
	warn := models.Warn{UserID: targetID, ModeratorID: moderator.ID, Reason: reason}
	if err := s.db.Create(&warn).Error; err != nil {
		return nil, err
	}
	return &warn, nil
}

// IssueBan creates a time-bounded ban: end date is start date plus the given
// number of days. The duration is validated before anything is written.
// Existing bans are not checked or superseded; overlapping records may exist.
func (s *ModerationService) IssueBan(targetID uint, moderator *models.User, reason string, durationDays int) (*models.Ban, error) {
	if !moderator.IsModerator() {
		return nil, fmt.Errorf("%w: only moderators may issue bans", ErrForbidden)
	}
	if durationDays < 1 {
		return nil, fmt.Errorf("%w: ban duration must be at least one day", ErrInvalid)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason cannot be empty", ErrInvalid)
	}
	if err := s.userExists(targetID); err != nil {
		return nil, err
	}
	now := time.Now()
	ban := models.Ban{
		UserID:      targetID,
		ModeratorID: moderator.ID,
		Reason:      reason,
		StartDate:   now,
		EndDate:     now.Add(time.Duration(durationDays) * 24 * time.Hour),
		IsActive:    true,
	}
	if err := s.db.Create(&ban).Error; err != nil {
		return nil, err
	}
	return &ban, nil
}

// LiftBan deactivates a ban early. This is the only mutation Ban supports.
func (s *ModerationService) LiftBan(banID uint, moderator *models.User) error {
	if !moderator.IsModerator() {
		return fmt.Errorf("%w: only moderators may lift bans", ErrForbidden)
	}
	var ban models.Ban
	if err := s.db.First(&ban, banID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: ban %d", ErrNotFound, banID)
		}
		return err
	}
	return s.db.Model(&ban).Update("is_active", false).Error
}

// ListWarns returns a user's warning history, newest first.
func (s *ModerationService) ListWarns(userID uint) ([]models.Warn, error) {
	if err := s.userExists(userID); err != nil {
		return nil, err
	}
	var warns []models.Warn
	if err := s.db.Where("user_id = ?", userID).Preload("Moderator").
		Order("created_at DESC, id DESC").Find(&warns).Error; err != nil {
		return nil, err
	}
	return warns, nil
}

// ListBans returns a user's ban history, newest first.
func (s *ModerationService) ListBans(userID uint) ([]models.Ban, error) {
	if err := s.userExists(userID); err != nil {
		return nil, err
	}
	var bans []models.Ban
	if err := s.db.Where("user_id = ?", userID).Preload("Moderator").
		Order("start_date DESC, id DESC").Find(&bans).Error; err != nil {
		return nil, err
	}
	return bans, nil
}

// HasActiveBan reports whether the user is banned at the given instant.
// No sweep ever clears expired bans, so the end date is compared against the
// clock here instead of trusting is_active alone.
func (s *ModerationService) HasActiveBan(userID uint, now time.Time) (bool, error) {
	var count int64
	err := s.db.Model(&models.Ban{}).
		Where("user_id = ? AND is_active = ? AND end_date > ?", userID, true, now).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AdjustKarma applies a +1 or -1 karma action to a user's profile and returns
// the new value. Karma is unbounded in both directions. The update is a single
// SQL expression, so concurrent adjustments cannot lose increments.
func (s *ModerationService) AdjustKarma(targetUserID uint, delta int) (int, error) {
	if delta != 1 && delta != -1 {
		return 0, fmt.Errorf("%w: karma delta must be +1 or -1", ErrInvalid)
	}
	res := s.db.Model(&models.Profile{}).Where("user_id = ?", targetUserID).
		Update("karma", gorm.Expr("karma + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: profile for user %d", ErrNotFound, targetUserID)
	}
	var profile models.Profile
	if err := s.db.Where("user_id = ?", targetUserID).First(&profile).Error; err != nil {
		return 0, err
	}
	return profile.Karma, nil
}

func (s *ModerationService) userExists(id uint) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return nil
}
