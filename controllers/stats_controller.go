package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cedarboard/cedar/services"
	"github.com/cedarboard/cedar/utils"
)

const statsCacheKey = "cache:stats:forum"

// StatsController serves aggregate forum statistics.
type StatsController struct {
	stats *services.StatsService
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{stats: services.NewStatsService(db)}
}

// GetStats returns section/subsection/topic/post counts plus per-section and
// per-subsection topic counts. The rendered envelope is cached in Redis and
// invalidated by the forum controllers on writes.
func (s *StatsController) GetStats(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(statsCacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	stats, err := s.stats.ComputeForumStats()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to compute stats")
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: stats}
	utils.CacheSetJSON(statsCacheKey, wrapper, time.Hour)
	utils.Success(ctx, stats)
}
