package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	HostListing    HostListingHTTP
	HostBooking    HostBookingHTTP
	Availability   AvailabilityHTTP
	Listing        ListingHTTP
	Booking        BookingHTTP
	Admin          AdminHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{Addr: cfg.HTTPAddr, Handler: NewRouter(cfg, obsMW, health, h)}
}

// NewRouter builds the full route table. Split from NewServer so tests can
// drive the router through httptest.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.HostListing != nil {
		hostListings := api.Group("/host/listings")
		hostListings.GET("", h.HostListing.List)
		hostListings.POST("", h.HostListing.Create)
		hostListings.POST("/:id/photos", h.HostListing.UploadPhoto)
		if h.Availability != nil {
			hostListings.GET("/:id/availability", h.Availability.Get)
			hostListings.POST("/:id/availability", h.Availability.Set)
		}
	}
	if h.HostBooking != nil {
		hostBookings := api.Group("/host/bookings")
		hostBookings.GET("", h.HostBooking.List)
		hostBookings.POST("/:id/approve", h.HostBooking.Approve)
		hostBookings.POST("/:id/decline", h.HostBooking.Decline)
	}
	if h.Listing != nil {
		api.GET("/guest/listings", h.Listing.Search)
		api.GET("/guest/listings/:id", h.Listing.Details)
	}
	if h.Booking != nil {
		api.POST("/guest/bookings", h.Booking.Create)
		api.GET("/guest/bookings", h.Booking.List)
	}
	if h.Admin != nil {
		admin := api.Group("/admin")
		admin.GET("/users", h.Admin.Users)
		admin.GET("/listings", h.Admin.Listings)
	}

	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
