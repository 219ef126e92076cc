package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/micromarket/marketplace-api/docs"
	"github.com/micromarket/marketplace-api/internal/api/handler"
	"github.com/micromarket/marketplace-api/internal/api/middleware"
	"github.com/micromarket/marketplace-api/internal/core/domain"
	"github.com/micromarket/marketplace-api/internal/core/ports"
)

// Deps are the services the HTTP layer is wired to.
type Deps struct {
	Log       zerolog.Logger
	Verifier  ports.TokenVerifier
	Auth      ports.AuthService
	Products  ports.ProductService
	Favorites ports.FavoriteService
	Admin     ports.AdminService
	Checks    map[string]handler.HealthCheck
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("marketplace"))

	authn := middleware.Auth(d.Verifier)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Products: public reads, owner-scoped writes ---
	productHandler := handler.NewProductHandler(d.Products)
	products := e.Group("/products")
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.Get)
	products.POST("", productHandler.Create, authn)
	products.PUT("/:id", productHandler.Update, authn)
	products.DELETE("/:id", productHandler.Delete, authn)

	// --- Favorites: always the caller's own set ---
	favoriteHandler := handler.NewFavoriteHandler(d.Favorites)
	favorites := e.Group("/favorites", authn)
	favorites.GET("", favoriteHandler.List)
	favorites.POST("/:productId", favoriteHandler.Add)
	favorites.DELETE("/:productId", favoriteHandler.Remove)

	// --- Admin console ---
	adminHandler := handler.NewAdminHandler(d.Admin)
	admin := e.Group("/api/admin", authn, adminOnly)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/users/:id", adminHandler.GetUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.PATCH("/users/:id/role", adminHandler.ChangeRole)
	admin.GET("/products", adminHandler.ListProducts)
	admin.PUT("/products/:id", adminHandler.UpdateProduct)
	admin.DELETE("/products/:id", adminHandler.DeleteProduct)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(d.Checks)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
