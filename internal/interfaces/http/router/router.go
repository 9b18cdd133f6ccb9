package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by every handler that owns routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under the versioned API prefix
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the version segment of the prefix ("v1" gives /api/v1)
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues a registrar; nothing is mounted until Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup mounts every queued registrar, in registration order, and returns
// the API group
func (r *Router) Setup() *gin.RouterGroup {
	api := r.engine.Group(r.Prefix())
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
	return api
}

// Prefix is the path every registrar is mounted under
func (r *Router) Prefix() string {
	return "/api/" + r.apiVersion
}
