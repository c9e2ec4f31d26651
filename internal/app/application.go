package app

import (
	"net/http"
	"time"

	"github.com/ak/sba/internal/app/middleware"
	"github.com/ak/sba/internal/domain/services"
	"github.com/ak/sba/internal/infrastructure/config"
	"github.com/ak/sba/internal/infrastructure/metrics"
	"github.com/ak/sba/internal/infrastructure/repositories"
	"github.com/ak/sba/internal/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleAdmin may restore or wipe the document stores
const RoleAdmin = "admin"

// Application holds all application dependencies and services
type Application struct {
	config    *config.Config
	logger    *logger.Logger
	repos     *repositories.Provider
	metrics   *metrics.Metrics
	router    *gin.Engine
	inventory services.InventoryService
	logs      services.LogService
	brew      services.BrewService
	backup    services.BackupService
}

// New creates a new Application instance over an opened storage provider
func New(cfg *config.Config, log *logger.Logger, repos *repositories.Provider) (*Application, error) {
	inventory := services.NewInventoryService(repos.Settings, log)
	logs := services.NewLogService(repos.Logs, log)

	app := &Application{
		config:    cfg,
		logger:    log.WithComponent("http"),
		repos:     repos,
		metrics:   metrics.New(cfg.Metrics),
		inventory: inventory,
		logs:      logs,
		brew:      services.NewBrewService(repos.Settings, inventory, logs, cfg.Brew.DefaultRegion, log),
		backup:    services.NewBackupService(repos.Settings, repos.Logs, log),
	}

	if err := middleware.RegisterValidators(); err != nil {
		return nil, err
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app.router = gin.New()

	app.router.Use(requestid.New())
	app.router.Use(middleware.RecoveryMiddleware(app.logger.Logger))
	app.router.Use(middleware.LoggerMiddleware(app.logger.Logger))
	app.router.Use(middleware.MetricsMiddleware(app.metrics))
	app.router.Use(app.corsMiddleware())
	app.router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes, app.logger.Logger))

	app.setupRoutes()

	return app, nil
}

// Router returns the HTTP handler
func (a *Application) Router() http.Handler {
	return a.router
}

// setupRoutes configures all application routes
func (a *Application) setupRoutes() {
	a.router.GET("/health", a.healthCheck)
	a.router.GET("/ready", a.readinessCheck)
	if a.metrics != nil {
		path := a.config.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		a.router.GET(path, gin.WrapH(a.metrics.Handler()))
	}

	v1 := a.router.Group("/api/v1")
	if a.config.JWT.Enabled {
		v1.Use(middleware.JWTMiddleware(a.jwtConfig()))
	}
	{
		v1.GET("/info", a.apiInfo)

		catalog := v1.Group("/catalog")
		{
			catalog.GET("", a.listCatalog)
			catalog.GET("/search", a.searchCatalog)
			catalog.GET("/:id", a.getIngredient)
		}

		v1.GET("/substitutes/:id", a.suggestSubstitutes)

		recipes := v1.Group("/recipes")
		{
			recipes.POST("", a.buildRecipe)
			recipes.GET("/stage-defaults", a.stageDefaults)
		}

		inventory := v1.Group("/inventory")
		{
			inventory.GET("", a.getInventory)
			inventory.PUT("", a.setInventory)
			inventory.GET("/grouped", a.groupedInventory)
			inventory.GET("/export", a.exportInventory)
			inventory.POST("/:id/toggle", a.toggleInventory)
			inventory.POST("/:id/favorite", a.toggleFavorite)
		}

		logs := v1.Group("/logs")
		{
			logs.GET("", a.listLogs)
			logs.POST("", a.createLog)
			logs.GET("/export", a.exportLogs)
			logs.GET("/draft", a.takeDraftLog)
			logs.DELETE("/:id", a.deleteLog)
			logs.POST("/:id/duplicate", a.duplicateLog)
		}

		brew := v1.Group("/brew")
		{
			brew.GET("/inputs", a.getBrewInputs)
			brew.PUT("/inputs", a.saveBrewInputs)
			brew.POST("/stage", a.changeStage)
			brew.PATCH("/carbs", a.updateCarbs)
			brew.GET("/recipe", a.brewRecipe)
			brew.GET("/recipe/export", a.exportBrewRecipe)
			brew.GET("/recipe/qrcode", a.brewRecipeQRCode)
			brew.GET("/advice", a.brewAdvice)
			brew.POST("/draft-log", a.saveDraftLog)
			brew.GET("/presets", a.listPresets)
			brew.POST("/presets", a.savePreset)
			brew.POST("/presets/:id/apply", a.applyPreset)
			brew.DELETE("/presets/:id", a.deletePreset)
			brew.GET("/timer", a.getTimer)
			brew.POST("/timer", a.startTimer)
			brew.DELETE("/timer", a.resetTimer)
		}

		backup := v1.Group("/backup")
		{
			backup.GET("", a.exportBackup)
			backup.POST("", a.adminOnly(a.importBackup)...)
			backup.DELETE("", a.adminOnly(a.clearAll)...)
		}
	}
}

func (a *Application) jwtConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		Secret:         a.config.JWT.Secret,
		Issuer:         a.config.JWT.Issuer,
		AccessTokenTTL: a.config.JWT.AccessTokenTTL,
	}
}

// adminOnly puts the admin role check in front of h when tokens are enabled
func (a *Application) adminOnly(h gin.HandlerFunc) []gin.HandlerFunc {
	if !a.config.JWT.Enabled {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{middleware.RequireRole(RoleAdmin), h}
}

// Middleware

func (a *Application) corsMiddleware() gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:  a.config.CORS.AllowedMethods,
		AllowHeaders:  a.config.CORS.AllowedHeaders,
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	origins := a.config.CORS.AllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
		cc.AllowCredentials = true
	}
	if len(cc.AllowMethods) == 0 {
		cc.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	a.logger.Debug("CORS configured", zap.Strings("origins", origins))
	return cors.New(cc)
}
