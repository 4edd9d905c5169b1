package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/grimoire-app/grimoire-backend/internal/handlers"
	"github.com/grimoire-app/grimoire-backend/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins   string
	AuthMiddleware   *middleware.AuthMiddleware
	AuthHandler      *handlers.AuthHandler
	UserHandler      *handlers.UserHandler
	RulesetHandler   *handlers.RulesetHandler
	OverlayHandler   *handlers.OverlayHandler
	CampaignHandler  *handlers.CampaignHandler
	CharacterHandler *handlers.CharacterHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if cfg.AllowedOrigins != "" {
		origins = strings.Split(cfg.AllowedOrigins, ",")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	router.POST("/auth/register", cfg.AuthHandler.Register)
	router.POST("/auth/login", cfg.AuthHandler.Login)

	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/auth/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/auth/logout", cfg.AuthHandler.Logout)
	protected.GET("/auth/me", cfg.UserHandler.GetMe)

	protected.GET("/rulesets", cfg.RulesetHandler.ListRulesets)
	protected.GET("/rulesets/:id", cfg.RulesetHandler.GetRuleset)
	protected.GET("/rulesets/:id/sources", cfg.RulesetHandler.ListSources)
	protected.GET("/rulesets/:id/entities", cfg.RulesetHandler.ListEntities)
	protected.GET("/rulesets/:id/entities/:entityID", cfg.RulesetHandler.GetEntity)

	protected.GET("/overlays", cfg.OverlayHandler.ListOverlays)
	protected.POST("/overlays", cfg.OverlayHandler.CreateOverlay)
	protected.PUT("/overlays/:id", cfg.OverlayHandler.UpdateOverlay)
	protected.DELETE("/overlays/:id", cfg.OverlayHandler.DeleteOverlay)

	protected.GET("/campaigns", cfg.CampaignHandler.ListCampaigns)
	protected.POST("/campaigns", cfg.CampaignHandler.CreateCampaign)
	protected.GET("/campaigns/:id", cfg.CampaignHandler.GetCampaign)
	protected.PUT("/campaigns/:id", cfg.CampaignHandler.UpdateCampaign)
	protected.DELETE("/campaigns/:id", cfg.CampaignHandler.DeleteCampaign)
	protected.GET("/campaigns/:id/characters", cfg.CampaignHandler.ListCampaignCharacters)
	protected.POST("/campaigns/:id/characters", cfg.CampaignHandler.CreateCampaignCharacter)
	protected.GET("/campaigns/:id/characters/:characterID", cfg.CharacterHandler.GetCharacter)
	protected.PUT("/campaigns/:id/characters/:characterID", cfg.CharacterHandler.UpdateCharacter)
	protected.DELETE("/campaigns/:id/characters/:characterID", cfg.CharacterHandler.DeleteCharacter)

	protected.GET("/characters", cfg.CharacterHandler.ListCharacters)

	return router
}
