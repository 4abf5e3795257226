// Package api exposes the service operations over HTTP. Transport concerns
// only; all invariants live in the repositories and services.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gryroach/ugc-service/internal/auth"
	"github.com/gryroach/ugc-service/internal/health"
	"github.com/gryroach/ugc-service/internal/middleware"
	"github.com/gryroach/ugc-service/internal/observability/logger"
	"github.com/gryroach/ugc-service/internal/repository"
	"github.com/gryroach/ugc-service/internal/service"
)

// Dependencies wires the handlers to the repositories and services.
type Dependencies struct {
	Movies    *repository.MovieRepository
	Reviews   *repository.ReviewRepository
	Bookmarks *repository.BookmarkRepository
	Reactions *repository.ReactionRepository

	ReactionService *service.ReactionService
	Statistics      *service.StatisticsService

	Auth   *auth.Validator
	Health *health.Registry
	Logger logger.Logger
}

// NewRouter assembles the gin engine with middleware and the v1 routes.
func NewRouter(deps Dependencies) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.AccessLog(deps.Logger))

	engine.GET("/health", func(c *gin.Context) {
		result := deps.Health.Check(c.Request.Context())
		status := http.StatusOK
		if result.Status != health.StatusHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, result)
	})

	authRequired := auth.Middleware(deps.Auth)

	v1 := engine.Group("/api-ugc/v1")

	movies := &movieHandlers{deps: deps}
	v1.GET("/movies", movies.list)
	v1.GET("/movies/:movie_id", movies.get)
	v1.POST("/movies", authRequired, movies.create)

	reviews := &reviewHandlers{deps: deps}
	v1.GET("/reviews", reviews.list)
	v1.GET("/reviews/:review_id", reviews.get)
	v1.POST("/reviews", authRequired, reviews.create)
	v1.DELETE("/reviews/:review_id", authRequired, reviews.delete)

	bookmarks := &bookmarkHandlers{deps: deps}
	v1.GET("/bookmarks", authRequired, bookmarks.list)
	v1.GET("/bookmarks/:bookmark_id", authRequired, bookmarks.get)
	v1.POST("/bookmarks", authRequired, bookmarks.create)
	v1.DELETE("/bookmarks/:bookmark_id", authRequired, bookmarks.delete)

	reactions := &reactionHandlers{deps: deps}
	v1.GET("/reactions", reactions.list)
	v1.POST("/reactions", authRequired, reactions.evaluate)

	return engine
}
