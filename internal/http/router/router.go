package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/config"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/http/handlers"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/http/middleware"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	skillsHandler *handlers.SkillsHandler,
	profileSkillsHandler *handlers.ProfileSkillsHandler,
	mediaHandler *handlers.MediaHandler,
	publicHandler *handlers.PublicHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	inspector *service.TokenInspector,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Публичные маршруты: каталог навыков, макеты hero и портфолио по slug.
	api.GET("/skills", skillsHandler.List)
	api.GET("/hero-designs", skillsHandler.HeroDesigns)
	api.GET("/u/:slug", publicHandler.Portfolio)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.AuthCookie, inspector))
	{
		protected.GET("/profile", profileHandler.GetMe)
		protected.POST("/profile", profileHandler.UpdateMe)
		protected.PUT("/profile", profileHandler.UpdateMe)

		protected.GET("/profile-skills", profileSkillsHandler.List)
		protected.POST("/profile-skills", profileSkillsHandler.Create)
		protected.PATCH("/profile-skills/:id", profileSkillsHandler.Update)
		protected.DELETE("/profile-skills/:id", profileSkillsHandler.Delete)
		protected.POST("/profile-skills/stage", profileSkillsHandler.Stage)
		protected.POST("/profile-skills/commit", profileSkillsHandler.Commit)
		protected.POST("/profile-skills/reset", profileSkillsHandler.Reset)

		protected.POST("/upload", mediaHandler.Upload)
		protected.GET("/media", mediaHandler.Media)

		protected.GET("/ws", wsHandler.Handle)
	}

	return r
}
