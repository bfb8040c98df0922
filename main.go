package main

import (
	"github.com/cedarboard/cedar/config"
	"github.com/cedarboard/cedar/models"
	"github.com/cedarboard/cedar/routes"
	"github.com/cedarboard/cedar/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Profile{},
		&models.Section{},
		&models.Subsection{},
		&models.Topic{},
		&models.Post{},
		&models.Warn{},
		&models.Ban{},
		&models.Conversation{},
		&models.Message{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
