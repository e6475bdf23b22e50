package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/roamio/backend/api/handler"
	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/internal/middleware"
)

type Handlers struct {
	Auth      *apiHandler.AuthHandler
	Catalog   *apiHandler.CatalogHandler
	Favorites *apiHandler.FavoritesHandler
	Leads     *apiHandler.LeadsHandler
	Health    *apiHandler.HealthHandler
}

type Middleware = func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New wires the route table. The principal middleware runs on every route so
// anonymous-tolerant endpoints (lead submission) can still attach a user;
// admin routes additionally pass the role gate before any handler side
// effect.
func New(handlers Handlers, principal Middleware) *router.Router {
	r := router.New()
	admin := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return principal(middleware.RequireRole(domain.RoleAdmin)(h))
	}

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/logout", handlers.Auth.Logout)

	// Public catalog reads
	r.GET("/api/v1/packages/{type}", handlers.Catalog.ListPackages)
	r.GET("/api/v1/packages/{type}/{id}", handlers.Catalog.GetPackage)
	r.GET("/api/v1/destinations", handlers.Catalog.ListDestinations)
	r.GET("/api/v1/destinations/{id}", handlers.Catalog.GetDestination)

	// Lead submission tolerates anonymous callers
	r.POST("/api/v1/leads", principal(handlers.Leads.Submit))

	// Favorites require a resolved principal
	r.POST("/api/v1/favorites/{type}/{id}", principal(handlers.Favorites.Toggle))
	r.GET("/api/v1/favorites", principal(handlers.Favorites.List))

	// Admin catalog mutations
	r.POST("/api/v1/admin/packages/{type}", admin(handlers.Catalog.CreatePackage))
	r.PUT("/api/v1/admin/packages/{type}/{id}", admin(handlers.Catalog.UpdatePackage))
	r.DELETE("/api/v1/admin/packages/{type}/{id}", admin(handlers.Catalog.DeletePackage))
	r.POST("/api/v1/admin/destinations", admin(handlers.Catalog.SaveDestination))
	r.PUT("/api/v1/admin/destinations/{id}", admin(handlers.Catalog.SaveDestination))
	r.DELETE("/api/v1/admin/destinations/{id}", admin(handlers.Catalog.DeleteDestination))

	// Lead administration
	r.GET("/api/v1/admin/leads", admin(handlers.Leads.List))
	r.GET("/api/v1/admin/leads/{id}", admin(handlers.Leads.Get))
	r.PUT("/api/v1/admin/leads/{id}", admin(handlers.Leads.UpdateStatus))
	r.DELETE("/api/v1/admin/leads/{id}", admin(handlers.Leads.Delete))

	return r
}
