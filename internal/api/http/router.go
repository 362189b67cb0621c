package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/storefront-ir/storefront-service/internal/api/http/handlers"
	"github.com/storefront-ir/storefront-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Products       *handlers.ProductsHandler
	Orders         *handlers.OrdersHandler
	Tickets        *handlers.TicketsHandler
	Notifications  *handlers.NotificationsHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	authenticated := cfg.AuthMiddleware.Handle
	admin := auth.RequireAdmin()

	products := app.Group("/products", authenticated)
	products.Get("/", cfg.Products.ListProducts)
	products.Get("/:id", cfg.Products.GetProduct)
	products.Post("/", admin, cfg.Products.CreateProduct)

	orders := app.Group("/orders", authenticated)
	orders.Get("/", cfg.Orders.ListOrders)
	orders.Post("/", cfg.Orders.CreateOrder)
	orders.Get("/:id", cfg.Orders.GetOrder)
	orders.Put("/:id", admin, cfg.Orders.UpdateOrder)

	tickets := app.Group("/tickets", authenticated)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", admin, cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)

	notifications := app.Group("/notifications", authenticated)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Post("/read", cfg.Notifications.MarkAllRead)

	app.Get("/admin/analytics", authenticated, admin, cfg.Analytics.Dashboard)
}
