package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cedarboard/cedar/models"
	"github.com/cedarboard/cedar/utils"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)

// AccountService manages account registration and credentials.
type AccountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// Register creates an account and its profile in one transaction. The profile
// is an explicit step of registration, not a side effect: every account ends
// up with exactly one.
func (s *AccountService) Register(username, email, password string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if !usernameRe.MatchString(username) {
		return nil, fmt.Errorf("%w: username must be 3-32 characters of letters, digits, '_', '.' or '-'", ErrInvalid)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalid)
	}
	if role == "" {
		role = models.RoleRegular
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Role:         role,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: username already taken", ErrInvalid)
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := models.Profile{UserID: user.ID, LastActivity: time.Now()}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies credentials and returns the matching account.
func (s *AccountService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown user", ErrForbidden)
		}
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: wrong password", ErrForbidden)
	}
	s.touchActivity(user.ID)
	return &user, nil
}

// GetUser loads an account by id.
func (s *AccountService) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Profile").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername loads an account by its unique username.
func (s *AccountService) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Profile").Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		return nil, err
	}
	return &user, nil
}

// UpdateContact updates the optional contact fields on a user's profile.
func (s *AccountService) UpdateContact(userID uint, telegramNickname, personalSite *string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: profile for user %d", ErrNotFound, userID)
		}
		return nil, err
	}
	if telegramNickname != nil {
		profile.TelegramNickname = strings.TrimSpace(*telegramNickname)
	}
	if personalSite != nil {
		profile.PersonalSite = strings.TrimSpace(*personalSite)
	}
	profile.LastActivity = time.Now()
	if err := s.db.Save(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AccountService) ChangePassword(userID uint, current, next string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return err
	}
	if !utils.CheckPassword(user.PasswordHash, current) {
		return fmt.Errorf("%w: current password is incorrect", ErrForbidden)
	}
	if len(next) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalid)
	}
	hash, err := utils.HashPassword(next)
	if err != nil {
		return err
	}
	return s.db.Model(&user).Update("password_hash", hash).Error
}

func (s *AccountService) touchActivity(userID uint) {
	s.db.Model(&models.Profile{}).Where("user_id = ?", userID).Update("last_activity", time.Now())
}
