package main

import (
	"net/http"

	"todolist-web/internal/handlers"
	"todolist-web/internal/lists"
	"todolist-web/internal/middleware"
	"todolist-web/internal/session"
	"todolist-web/internal/storage"
	"todolist-web/internal/web"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// routerConfig collects everything the router is built from
type routerConfig struct {
	store     storage.Store
	db        *gorm.DB
	session   *session.Config
	security  *middleware.SecurityConfig
	cors      *middleware.CORSConfig
	rateLimit *middleware.RateLimitConfig
}

func newRouterConfigFromEnv(store storage.Store, db *gorm.DB, sessionConfig *session.Config) *routerConfig {
	return &routerConfig{
		store:     store,
		db:        db,
		session:   sessionConfig,
		security:  middleware.NewSecurityConfigFromEnv(),
		cors:      middleware.NewCORSConfigFromEnv(),
		rateLimit: middleware.NewRateLimitConfigFromEnv(),
	}
}

func setupRouter(config *routerConfig) (*gin.Engine, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	// Without gin's default logger since RequestLogger replaces it
	router := gin.New()
	router.Use(gin.Recovery())
	if err := router.SetTrustedProxies(config.security.TrustedProxies); err != nil {
		return nil, err
	}
	router.HTMLRender = renderer

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(config.cors))
	router.Use(middleware.RequestSizeLimit(config.security.MaxRequestBodySize))
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorSanitizer())
	router.Use(middleware.GlobalRateLimiter(config.rateLimit))

	static, err := web.StaticFS()
	if err != nil {
		return nil, err
	}
	router.StaticFS("/static", static)

	// Probes never create sessions
	healthHandler := handlers.NewHealthHandler(config.store, config.db)
	health := router.Group("/health")
	{
		health.GET("", healthHandler.BasicHealth)
		health.GET("/live", healthHandler.LivenessProbe)
		health.GET("/ready", healthHandler.ReadinessProbe)
		health.GET("/detailed", healthHandler.DetailedHealth)
	}

	manager := lists.NewManager()
	listHandler := handlers.NewListHandler(manager)
	todoHandler := handlers.NewTodoHandler(manager)

	writes := middleware.SessionWriteLimiter(config.rateLimit)
	listID := middleware.IDValidator(handlers.ListIDParam)
	todoID := middleware.IDValidator(handlers.ListIDParam, handlers.TodoIDParam)

	site := router.Group("/", session.Middleware(config.store, config.session))
	{
		site.GET("/", listHandler.Index)
		site.GET("/lists", listHandler.GetAllLists)
		site.GET("/lists/new", listHandler.NewList)
		site.POST("/lists", writes, listHandler.CreateList)

		site.GET("/lists/:id", listID, listHandler.GetList)
		site.GET("/lists/:id/edit", listID, listHandler.EditList)
		site.POST("/lists/:id", listID, writes, listHandler.UpdateList)
		site.POST("/lists/:id/delete", listID, writes, listHandler.DeleteList)

		site.POST("/lists/:id/todos", listID, writes, todoHandler.CreateTodo)
		site.POST("/lists/:id/complete-all", listID, writes, todoHandler.CompleteAll)
		site.POST("/lists/:id/todos/:todo_id/delete", todoID, writes, todoHandler.DeleteTodo)
		site.POST("/lists/:id/todos/:todo_id/complete", todoID, writes, todoHandler.UpdateTodo)
	}

	router.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/lists")
	})

	return router, nil
}
