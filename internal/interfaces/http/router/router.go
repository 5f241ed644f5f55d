package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kasamthapa/krisi/internal/infrastructure/logger"
	"github.com/kasamthapa/krisi/internal/interfaces/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Options configures the engine
type Options struct {
	ServiceName    string
	Tracing        bool
	TrustedProxies []string
	Mode           string // gin.DebugMode, gin.ReleaseMode, gin.TestMode
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// New builds a gin engine with the standard middleware chain
func New(opts Options, log *zap.Logger) (*Router, error) {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(logger.Recovery(log))
	if opts.Tracing {
		engine.Use(otelgin.Middleware(opts.ServiceName))
	}
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Actor(),
	)

	return &Router{
		engine:     engine,
		apiVersion: "v1",
	}, nil
}

// Register adds a RouteRegistrar to be registered by Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup registers all routes under /api/<version> and returns the engine
func (r *Router) Setup() *gin.Engine {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
	return r.engine
}
