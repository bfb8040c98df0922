package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cedarboard/cedar/services"
	"github.com/cedarboard/cedar/utils"
)

// BanGuard refuses requests from accounts with an active ban. Bans never
// expire on their own, so the end date is compared against the clock on
// every request rather than trusting the stored active flag.
func BanGuard(db *gorm.DB) gin.HandlerFunc {
	moderation := services.NewModerationService(db)
	return func(ctx *gin.Context) {
		raw, ok := ctx.Get(ContextUserIDKey)
		if !ok {
			ctx.Next()
			return
		}
		userID, ok := raw.(uint)
		if !ok {
			ctx.Next()
			return
		}
		banned, err := moderation.HasActiveBan(userID, time.Now())
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to check ban status")
			ctx.Abort()
			return
		}
		if banned {
			utils.Error(ctx, http.StatusForbidden, 40390, "account is banned")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
