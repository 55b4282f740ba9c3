package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"liquid_handler"
	"liquid_handler/internal/logger"
	"liquid_handler/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// NetworkStatus is the read side of the connectivity manager.
type NetworkStatus interface {
	IsConnected() bool
	Address() string
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services       *service.Service
	log            *logger.Logger
	network        NetworkStatus
	allowedOrigins []string
}

// Option customises a Handler.
type Option func(*Handler)

// WithNetwork shows the connectivity state on the control page.
func WithNetwork(n NetworkStatus) Option {
	return func(h *Handler) { h.network = n }
}

// WithAllowedOrigins restricts CORS. Without it every origin is allowed.
func WithAllowedOrigins(origins ...string) Option {
	return func(h *Handler) { h.allowedOrigins = origins }
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(h.corsMiddleware())

	// wrong method on a known path is a 405 with the usual command body
	router.HandleMethodNotAllowed = true
	router.NoMethod(h.methodNotAllowed)

	router.SetHTMLTemplate(pageTemplates)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Control pages
	router.GET("/", h.indexPage)
	router.GET("/test", h.testPage)

	h.registerAPIRoutes(router)

	// Status stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		// Body example: {"action":"forward","speed":800,"duration":10}
		api.POST("/control", h.controlPump)
		// Body example: {"action":"start","speed":700,"duration":30}
		api.POST("/vacuum", h.controlVacuum)
		api.GET("/status", h.getStatus)
		api.GET("/events", h.getEvents)
	}
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(h.allowedOrigins) > 0 {
		cfg.AllowOrigins = h.allowedOrigins
	} else {
		cfg.AllowAllOrigins = true
	}
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	cfg.ExposeHeaders = []string{"Content-Length"}
	return cors.New(cfg)
}

func (h *Handler) methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, liquid_handler.CommandResponse{
		Success: false,
		Message: msgMethodNotAllowed,
	})
}
