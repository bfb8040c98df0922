package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cedarboard/cedar/models"
	"github.com/cedarboard/cedar/services"
	"github.com/cedarboard/cedar/utils"
)

// ModerationController exposes warnings, bans and karma adjustment.
type ModerationController struct {
	moderation *services.ModerationService
	accounts   *services.AccountService
}

// NewModerationController creates a new ModerationController instance.
func NewModerationController(db *gorm.DB) *ModerationController {
	return &ModerationController{
		moderation: services.NewModerationService(db),
		accounts:   services.NewAccountService(db),
	}
}

// WarnUser records a warning against a user. Moderators only.
func (m *ModerationController) WarnUser(ctx *gin.Context) {
	targetID, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid user id")
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid request payload")
		return
	}
	moderator, ok := m.currentUser(ctx)
	if !ok {
		return
	}
	warn, err := m.moderation.IssueWarning(targetID, moderator, req.Reason)
	if err != nil {
		failService(ctx, err, 50050, "failed to issue warning")
		return
	}
	utils.Success(ctx, gin.H{"warning": warn})
}

// BanUser creates a time-bounded ban. Moderators only.
func (m *ModerationController) BanUser(ctx *gin.Context) {
	targetID, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid user id")
		return
	}
	var req struct {
		Reason       string `json:"reason" binding:"required"`
		DurationDays int    `json:"duration_days" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40053, "invalid request payload")
		return
	}
	moderator, ok := m.currentUser(ctx)
	if !ok {
		return
	}
	ban, err := m.moderation.IssueBan(targetID, moderator, req.Reason, req.DurationDays)
	if err != nil {
		failService(ctx, err, 50051, "failed to issue ban")
		return
	}
	utils.Success(ctx, gin.H{"ban": ban})
}

// LiftBan deactivates a ban early. Moderators only.
func (m *ModerationController) LiftBan(ctx *gin.Context) {
	banID, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40054, "invalid ban id")
		return
	}
	moderator, ok := m.currentUser(ctx)
	if !ok {
		return
	}
	if err := m.moderation.LiftBan(banID, moderator); err != nil {
		failService(ctx, err, 50052, "failed to lift ban")
		return
	}
	utils.Success(ctx, gin.H{"message": "ban lifted"})
}

// AdjustKarma applies a +1/-1 action to a profile. Any authenticated account
// may call this, mirroring the profile page actions.
func (m *ModerationController) AdjustKarma(ctx *gin.Context) {
	targetID, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40055, "invalid user id")
		return
	}
	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40056, "invalid request payload")
		return
	}
	var delta int
	switch req.Action {
	case "increase":
		delta = 1
	case "decrease":
		delta = -1
	default:
		utils.Error(ctx, http.StatusBadRequest, 40057, "action must be increase or decrease")
		return
	}
	karma, err := m.moderation.AdjustKarma(targetID, delta)
	if err != nil {
		failService(ctx, err, 50053, "failed to adjust karma")
		return
	}
	utils.Success(ctx, gin.H{"karma": karma})
}

func (m *ModerationController) currentUser(ctx *gin.Context) (*models.User, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40150, "unauthorized")
		return nil, false
	}
	user, err := m.accounts.GetUser(userID)
	if err != nil {
		failService(ctx, err, 50054, "failed to load current user")
		return nil, false
	}
	return user, true
}
