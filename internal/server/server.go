package server

import (
	"net/http"

	_ "airdrop-api/docs"
	"airdrop-api/internal/auth"
	"airdrop-api/internal/config"
	"airdrop-api/internal/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter builds the gin engine with all routes and middleware wired.
// Everything the routes need is passed in explicitly; the server holds no
// package-level state.
func NewRouter(cfg *config.Config, verifier *auth.Verifier, claimHandler *handlers.ClaimHandler) *gin.Engine {
	router := gin.Default()

	router.Use(configureCORS(cfg))

	// Swagger endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// if we are not in production, log the request body
	if cfg.GinMode != "release" {
		router.Use(handlers.LogRequest())
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Protected routes (authentication required)
		protected := v1.Group("/")
		protected.Use(verifier.EnsureValidToken())
		{
			airdrop := protected.Group("/airdrop")
			{
				airdrop.POST("/claim", claimHandler.ClaimAirdrop)
				airdrop.GET("/status", claimHandler.GetClaimStatus)
			}
		}
	}

	return router
}

// configureCORS returns a configured CORS middleware
func configureCORS(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	if len(cfg.CORSAllowedOrigins) == 0 {
		// Default to localhost if not set
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}

	return cors.New(corsConfig)
}
