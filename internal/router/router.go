package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/api"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
)

// Dependencies are the collaborators the routes are wired to. Redis and
// Metrics are optional; without redis there is no rate limiting and
// without Metrics the default prometheus registry is exposed.
type Dependencies struct {
	Config        *config.Config
	DB            *gorm.DB
	Redis         redis.Cmdable
	Auth          middleware.TokenValidator
	Extractor     api.Extractor
	Recipes       service.IRecipeService
	ShoppingLists service.IShoppingListService
	Metrics       http.Handler
	Log           logrus.FieldLogger
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Config.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log := logging.Component(deps.Log, "http")
	router := gin.New()
	router.Use(middleware.Recovery(log), middleware.RequestLogger(log))
	router.Use(middleware.CORS(deps.Config.CORSAllowedOrigins))
	router.NoRoute(middleware.NotFound)

	router.GET("/healthz", api.NewHealthHandler(deps.DB, deps.Redis).HealthCheck)
	metrics := deps.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	router.GET("/metrics", gin.WrapH(metrics))

	// Protected routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(deps.Auth, log))
	{
		var limiter []gin.HandlerFunc
		if deps.Redis != nil && deps.Config.Extraction.RateLimit > 0 {
			rl := middleware.NewExtractionRateLimiter(deps.Redis, deps.Config.Extraction.RateLimit,
				deps.Config.Extraction.RateWindow, logging.Component(deps.Log, "rate_limit"))
			limiter = append(limiter, rl.RateLimitMiddleware())
		}
		api.NewExtractHandler(deps.Extractor, logging.Component(deps.Log, "extract")).RegisterRoutes(v1, limiter...)
		api.NewRecipeHandler(deps.Recipes, logging.Component(deps.Log, "recipes")).RegisterRoutes(v1)
		api.NewShoppingListHandler(deps.ShoppingLists, logging.Component(deps.Log, "shopping_lists")).RegisterRoutes(v1)
	}

	return router
}
