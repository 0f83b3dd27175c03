package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/civicreach/backend/internal/classify"
	"github.com/civicreach/backend/internal/config"
	"github.com/civicreach/backend/internal/db"
	"github.com/civicreach/backend/internal/http/handlers"
	"github.com/civicreach/backend/internal/http/middleware"
	"github.com/civicreach/backend/internal/queue"
	"github.com/civicreach/backend/internal/routing"

	_ "github.com/civicreach/backend/docs"
)

func Router(cfg config.Config, store *db.Store, classifier classify.Classifier, configs *routing.ConfigSource, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:      store,
		Classifier: classifier,
		Routing:    configs,
		Queue:      queue.NewEngine(store, logger),
		Status:     queue.NewStatusController(store, logger),
		Validator:  validator.New(),
		Logger:     logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.POST("/classify", h.Classify)
		api.POST("/reports", h.SubmitReport)
		api.GET("/queue", h.QueueList)
		api.POST("/queue/update", h.QueueUpdate)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/routing/init", h.RoutingInit)
		admin.GET("/routing", h.RoutingInspect)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
