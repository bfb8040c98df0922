package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cedarboard/cedar/config"
	"github.com/cedarboard/cedar/controllers"
	"github.com/cedarboard/cedar/middleware"
	"github.com/cedarboard/cedar/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	// Access log goes to its own rolling file, apart from the app log.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	forumController := controllers.NewForumController(db)
	moderationController := controllers.NewModerationController(db)
	messageController := controllers.NewMessageController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)
	authGroup.POST("/password", middleware.AuthRequired(), authController.ChangePassword)

	// Public reads
	api.GET("/sections", forumController.ListSections)
	api.GET("/sections/:id/subsections", forumController.ListSubsections)
	api.GET("/subsections/:id/topics", forumController.ListTopics)
	api.GET("/topics/:id", forumController.GetTopic)
	api.GET("/stats", statsController.GetStats)
	api.GET("/users/:id", authController.GetUserPublic)

	// Authenticated writes; banned accounts are refused at the door.
	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.BanGuard(db), middleware.RateLimitMiddleware())
	protected.POST("/sections", forumController.CreateSection)
	protected.POST("/sections/:id/subsections", forumController.CreateSubsection)
	protected.POST("/subsections/:id/topics", forumController.CreateTopic)
	protected.PUT("/topics/:id", forumController.EditTopic)
	protected.DELETE("/topics/:id", forumController.DeleteTopic)
	protected.PUT("/topics/:id/curator", forumController.SetCurator)
	protected.POST("/topics/:id/posts", forumController.CreatePost)
	protected.DELETE("/posts/:postId", forumController.DeletePost)

	protected.POST("/users/:id/warnings", moderationController.WarnUser)
	protected.POST("/users/:id/bans", moderationController.BanUser)
	protected.DELETE("/bans/:id", moderationController.LiftBan)
	protected.POST("/users/:id/karma", moderationController.AdjustKarma)

	protected.GET("/conversations", messageController.ListConversations)
	protected.POST("/conversations", messageController.StartConversation)
	protected.GET("/conversations/:id/messages", messageController.ListMessages)
	protected.POST("/conversations/:id/messages", messageController.PostMessage)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40490, "route not found")
	})

	return r
}
