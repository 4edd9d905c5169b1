package main

import (
	"fmt"
	"os"
	"time"

	"github.com/grimoire-app/grimoire-backend/internal/db"
	"github.com/grimoire-app/grimoire-backend/internal/handlers"
	"github.com/grimoire-app/grimoire-backend/internal/logger"
	"github.com/grimoire-app/grimoire-backend/internal/middleware"
	"github.com/grimoire-app/grimoire-backend/internal/repos"
	"github.com/grimoire-app/grimoire-backend/internal/server"
	"github.com/grimoire-app/grimoire-backend/internal/services"
	"github.com/grimoire-app/grimoire-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	serverPort := utils.GetEnv("SERVER_PORT", "8080", log)
	allowedOrigins := utils.GetEnv("ALLOWED_ORIGINS", "", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	rulesetRepo := repos.NewRulesetRepo(thePG, log)
	entityRepo := repos.NewRulesetEntityRepo(thePG, log)
	campaignRepo := repos.NewCampaignRepo(thePG, log)
	characterRepo := repos.NewCharacterRepo(thePG, log)
	overlayRepo := repos.NewOverlayRepo(thePG, log)

	// Services
	log.Info("Setting up services...")
	authService := services.NewAuthService(
		thePG, log, userRepo, userTokenRepo,
		jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second,
		time.Duration(refreshTokenTTL)*time.Second,
	)
	userService := services.NewUserService(thePG, log, userRepo)
	rulesetService := services.NewRulesetService(thePG, log, rulesetRepo, entityRepo, overlayRepo)
	overlayService := services.NewOverlayService(thePG, log, overlayRepo, rulesetRepo, campaignRepo)
	campaignService := services.NewCampaignService(thePG, log, campaignRepo, rulesetRepo)
	characterService := services.NewCharacterService(thePG, log, characterRepo, campaignRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	rulesetHandler := handlers.NewRulesetHandler(log, rulesetService)
	overlayHandler := handlers.NewOverlayHandler(log, overlayService)
	campaignHandler := handlers.NewCampaignHandler(log, campaignService, characterService)
	characterHandler := handlers.NewCharacterHandler(log, characterService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins:   allowedOrigins,
		AuthMiddleware:   authMiddleware,
		AuthHandler:      authHandler,
		UserHandler:      userHandler,
		RulesetHandler:   rulesetHandler,
		OverlayHandler:   overlayHandler,
		CampaignHandler:  campaignHandler,
		CharacterHandler: characterHandler,
	})

	log.Info("Starting server...", "port", serverPort)
	if err := router.Run(":" + serverPort); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
