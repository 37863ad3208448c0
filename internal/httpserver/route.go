package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/shop_backend/internal/metrics"
	authmw "github.com/Skotchmaster/shop_backend/internal/middleware/auth"
	"github.com/Skotchmaster/shop_backend/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/shop_backend/internal/middleware/logging"
	"github.com/Skotchmaster/shop_backend/internal/transport"
)

type Deps struct {
	Auth     *AuthHTTP
	Users    *UserHTTP
	Catalog  *CatalogHTTP
	Cart     *CartHTTP
	Wishlist *WishlistHTTP
	Orders   *OrderHTTP

	AuthMW *authmw.AutoRefreshMiddleware

	// Ready backs /health/ready. Nil means always ready.
	Ready func(ctx context.Context) error
	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler
	// LoginRate is requests per second per client IP on /login and /token.
	// Zero disables the limiter.
	LoginRate float64
}

// New builds the echo instance with the shared middleware chain and routes.
// Paths are registered without the trailing slash and requests are
// normalised before routing, so /products and /products/ are the same route.
func New(logger *slog.Logger, m *metrics.ServerMetrics, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	if m != nil {
		e.Use(m.Middleware())
	}
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.Secure())
	e.Use(echomw.CORS())
	e.Use(csrf.Middleware(csrf.DefaultConfig()))

	Register(e, d)
	return e
}

func loginLimiter(perSecond float64) echo.MiddlewareFunc {
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     int(perSecond) + 1,
		ExpiresIn: 3 * time.Minute,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Could not identify client.")
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Request was throttled.")
		},
	})
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, transport.DetailResponse{Detail: "not ready"})
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.MetricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(d.MetricsHandler))
	}

	var limited []echo.MiddlewareFunc
	if d.LoginRate > 0 {
		limited = append(limited, loginLimiter(d.LoginRate))
	}

	e.POST("/register", d.Auth.Register)
	e.POST("/login", d.Auth.Login, limited...)
	e.POST("/token", d.Auth.ObtainPair, limited...)
	e.POST("/token/refresh", d.Auth.Refresh)
	e.POST("/logout", d.Auth.Logout, d.AuthMW.RequireAuth)

	users := e.Group("/users", d.AuthMW.RequireAdmin)
	users.GET("", d.Users.ListUsers)
	users.POST("", d.Users.CreateUser)
	users.GET("/:id", d.Users.GetUser)
	users.PATCH("/:id", d.Users.PatchUser)
	users.DELETE("/:id", d.Users.DeleteUser)

	products := e.Group("/products")
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("", d.Catalog.GetProducts)
	products.GET("/:id", d.Catalog.GetProduct)
	products.POST("", d.Catalog.CreateProduct, d.AuthMW.RequireAdmin)
	products.PATCH("/:id", d.Catalog.PatchProduct, d.AuthMW.RequireAdmin)
	products.DELETE("/:id", d.Catalog.DeleteProduct, d.AuthMW.RequireAdmin)

	cart := e.Group("/cart", d.AuthMW.RequireAuth)
	cart.GET("", d.Cart.GetCart)
	cart.POST("", d.Cart.AddToCart)
	cart.PATCH("", d.Cart.UpdateCartItem)
	cart.DELETE("", d.Cart.RemoveCartItem)

	wishlist := e.Group("/wishlist", d.AuthMW.RequireAuth)
	wishlist.GET("", d.Wishlist.GetWishlist)
	wishlist.POST("", d.Wishlist.AddToWishlist)
	wishlist.DELETE("", d.Wishlist.RemoveFromWishlist)

	orders := e.Group("/orders", d.AuthMW.RequireAuth)
	orders.GET("", d.Orders.ListOrders)
	orders.POST("", d.Orders.CreateOrder)
	orders.GET("/:id", d.Orders.GetOrder)
	e.PATCH("/orders/:id", d.Orders.UpdateOrderStatus, d.AuthMW.RequireAdmin)
}
