package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cedarboard/cedar/config"
	"github.com/cedarboard/cedar/models"
	"github.com/cedarboard/cedar/services"
	"github.com/cedarboard/cedar/utils"
)

const tokenDuration = 72 * time.Hour

// AuthController handles registration, login and account management.
type AuthController struct {
	accounts   *services.AccountService
	moderation *services.ModerationService
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{
		accounts:   services.NewAccountService(db),
		moderation: services.NewModerationService(db),
	}
}

// Register creates a new account and returns a token for it.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	role := models.RoleRegular
	if isBootstrapAdmin(req.Username) {
		role = models.RoleAdmin
	}

	user, err := a.accounts.Register(req.Username, req.Email, req.Password, role)
	if err != nil {
		failService(ctx, err, 50010, "failed to register user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{"user": user, "token": token})
}

// Login verifies credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}

	user, err := a.accounts.Authenticate(req.Username, req.Password)
	if err != nil {
		// Do not leak whether the username or the password was wrong.
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid credentials")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{"user": user, "token": token})
}

// Logout blacklists the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 {
		token := strings.TrimSpace(parts[1])
		if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated account with its profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}
	user, err := a.accounts.GetUser(userID)
	if err != nil {
		failService(ctx, err, 50013, "failed to load user")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// UpdateProfile updates the caller's contact fields.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}
	var req struct {
		TelegramNickname *string `json:"telegram_nickname"`
		PersonalSite     *string `json:"personal_site"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}
	profile, err := a.accounts.UpdateContact(userID, req.TelegramNickname, req.PersonalSite)
	if err != nil {
		failService(ctx, err, 50014, "failed to update profile")
		return
	}
	utils.Success(ctx, gin.H{"profile": profile})
}

// ChangePassword verifies the current password before setting a new one.
func (a *AuthController) ChangePassword(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid request payload")
		return
	}
	if err := a.accounts.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		failService(ctx, err, 50015, "failed to change password")
		return
	}
	utils.Success(ctx, gin.H{"message": "password changed"})
}

// GetUserPublic returns a user's public profile together with the moderation
// history shown on profile pages.
func (a *AuthController) GetUserPublic(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40014, "invalid user id")
		return
	}
	user, err := a.accounts.GetUser(id)
	if err != nil {
		failService(ctx, err, 50016, "failed to load user")
		return
	}
	warns, err := a.moderation.ListWarns(id)
	if err != nil {
		failService(ctx, err, 50017, "failed to load warnings")
		return
	}
	bans, err := a.moderation.ListBans(id)
	if err != nil {
		failService(ctx, err, 50018, "failed to load bans")
		return
	}
	utils.Success(ctx, gin.H{
		"user":     publicUser(user),
		"profile":  user.Profile,
		"warnings": warns,
		"bans":     bans,
	})
}

func publicUser(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"role":       u.Role,
		"staff":      u.Staff,
		"created_at": u.CreatedAt,
	}
}

// isBootstrapAdmin checks whether a username is configured as an admin (case-insensitive).
func isBootstrapAdmin(username string) bool {
	for _, admin := range config.Get().AdminUsernames {
		if strings.EqualFold(admin, username) {
			return true
		}
	}
	return false
}
