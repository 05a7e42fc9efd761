// Package routes wires the storefront handlers onto a gin engine.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"food-storefront/handlers"
	"food-storefront/metrics"
	"food-storefront/middleware"
	"food-storefront/models"
)

// Options configures the router's middleware. Limiter and Metrics may be nil.
type Options struct {
	Log         *logrus.Logger
	Tokens      *middleware.TokenIssuer
	Users       middleware.UserLookup
	Metrics     *metrics.Metrics
	Limiter     *middleware.RateLimiter
	CORSOrigins []string
}

func NewRouter(h *handlers.Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(opts.Log), gin.Recovery(), middleware.CORS(opts.CORSOrigins))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	r.GET("/", h.Welcome)
	r.GET("/health", h.Health)

	SetupRoutes(r.Group("/api"), h, opts)
	return r
}

func SetupRoutes(api *gin.RouterGroup, h *handlers.Handler, opts Options) {
	authed := middleware.AuthRequired(opts.Tokens, opts.Users)
	owners := middleware.RoleRequired(models.RoleRestaurantOwner, models.RoleAdmin)

	// ── Auth ───────────────────────────────────────────────────────
	auth := api.Group("/auth")
	if opts.Limiter != nil {
		auth.Use(opts.Limiter.Handler())
	}
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/me", authed, h.Me)
		auth.POST("/logout", authed, h.Logout)
	}

	// ── Restaurants ────────────────────────────────────────────────
	restaurants := api.Group("/restaurants")
	{
		restaurants.GET("", h.ListRestaurants)
		restaurants.GET("/nearby", h.NearbyRestaurants)
		restaurants.GET("/mine", authed, owners, h.GetMyRestaurants)
		restaurants.GET("/:id", h.GetRestaurant)
		restaurants.GET("/:id/menu", h.GetRestaurantMenu)
		restaurants.POST("", authed, owners, h.CreateRestaurant)
		restaurants.PUT("/:id", authed, owners, h.UpdateRestaurant)
		restaurants.DELETE("/:id", authed, owners, h.DeleteRestaurant)
	}

	// ── Menu ───────────────────────────────────────────────────────
	menu := api.Group("/menu")
	{
		menu.GET("", h.ListMenuItems)
		menu.GET("/restaurant/:restaurantId", h.GetRestaurantMenu)
		menu.GET("/:id", h.GetMenuItem)
		menu.POST("", authed, owners, h.CreateMenuItem)
		menu.PUT("/:id", authed, owners, h.UpdateMenuItem)
		menu.DELETE("/:id", authed, owners, h.DeleteMenuItem)
	}

	// ── Orders ─────────────────────────────────────────────────────
	orders := api.Group("/orders")
	{
		orders.GET("/state-machine", h.StateMachineInfo)
		orders.GET("", authed, h.ListOrders)
		orders.GET("/:id", authed, h.GetOrder)
		orders.POST("", authed, middleware.RoleRequired(models.RoleCustomer), h.PlaceOrder)
		orders.PUT("/:id/status", authed, owners, h.UpdateOrderStatus)
		orders.PUT("/:id/rating", authed, middleware.RoleRequired(models.RoleCustomer), h.RateOrder)
		orders.PUT("/:id/cancel", authed, middleware.RoleRequired(models.RoleCustomer), h.CancelOrder)
	}

	// ── Driver deliveries ──────────────────────────────────────────
	deliveries := api.Group("/deliveries")
	deliveries.Use(authed, middleware.RoleRequired(models.RoleDeliveryDriver))
	{
		deliveries.GET("/available", h.AvailableDeliveries)
		deliveries.PUT("/:id/pickup", h.PickupOrder)
		deliveries.PUT("/:id/deliver", h.DeliverOrder)
	}

	// ── Users ──────────────────────────────────────────────────────
	users := api.Group("/users")
	users.Use(authed)
	{
		users.GET("/profile", h.GetProfile)
		users.PUT("/profile", h.UpdateProfile)
		users.GET("/orders", h.GetUserOrders)
		users.GET("/favorites", h.GetFavorites)
	}

	// ── Admin ──────────────────────────────────────────────────────
	admin := api.Group("/admin")
	admin.Use(authed, middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/users", h.AdminListUsers)
		admin.GET("/orders", h.AdminListOrders)
		admin.GET("/restaurants", h.AdminListRestaurants)
	}
}
