package router

import (
	"github.com/janmaslov/wishlist/internal/api/middleware"
	"github.com/janmaslov/wishlist/internal/auth"
	"github.com/janmaslov/wishlist/internal/config"
	"github.com/janmaslov/wishlist/internal/identity"
	"github.com/janmaslov/wishlist/internal/realtime"
	"github.com/janmaslov/wishlist/internal/render"
	"github.com/janmaslov/wishlist/internal/repositories/mysql"
	"github.com/janmaslov/wishlist/internal/wishlist"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Router wires repositories, services and handlers onto one gin engine.
type Router struct {
	engine   *gin.Engine
	registry *realtime.Registry
}

func New(cfg *config.Config, db *gorm.DB, provider identity.Provider, posters wishlist.PosterStorage) *Router {
	// Repositories
	userRepo := mysql.NewUserRepository(db)
	itemRepo := mysql.NewItemRepository(db)

	// Realtime core
	registry := realtime.NewRegistry()
	broadcaster := realtime.NewBroadcaster(registry)

	// Services
	tokens := auth.NewTokenService(cfg.Session.Secret, cfg.Session.Expiry)
	authService := auth.NewService(userRepo, provider, tokens, cfg.Admins)
	renderer := render.NewRenderer(itemRepo)
	itemService := wishlist.NewService(itemRepo, broadcaster, renderer)

	// Handlers
	authHandler := auth.NewHandler(authService, cfg.Session.CookieName, cfg.Server.BasePath)
	itemHandler := wishlist.NewHandler(itemService, posters)
	wsHandler := realtime.NewHandler(registry)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.LogAPI())
	engine.Use(middleware.CORS())

	authRequired := middleware.AuthRequired(authService, cfg.Session.CookieName)

	api := engine.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "UP"})
		})

		authHandler.RegisterRoutes(api)

		protected := api.Group("")
		protected.Use(authRequired)
		itemHandler.RegisterRoutes(protected)
	}

	ws := engine.Group("/ws")
	ws.Use(authRequired)
	wsHandler.RegisterRoutes(ws)

	return &Router{
		engine:   engine,
		registry: registry,
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Registry exposes the connection registry for shutdown.
func (r *Router) Registry() *realtime.Registry {
	return r.registry
}
