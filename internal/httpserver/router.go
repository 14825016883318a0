package httpserver

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	addresssvc "storefront-api/internal/service/address"
	cartsvc "storefront-api/internal/service/cart"
	catalogsvc "storefront-api/internal/service/catalog"
	notificationsvc "storefront-api/internal/service/notification"
	ordersvc "storefront-api/internal/service/order"
	paymentsvc "storefront-api/internal/service/payment"
	returnssvc "storefront-api/internal/service/returns"
	usersvc "storefront-api/internal/service/user"
	wishlistsvc "storefront-api/internal/service/wishlist"
	"storefront-api/internal/ws"
)

// Deps carries the services the route table is wired against.
type Deps struct {
	UserSvc         *usersvc.Service
	CatalogSvc      *catalogsvc.Service
	CartSvc         *cartsvc.Service
	OrderSvc        *ordersvc.Service
	ReturnsSvc      *returnssvc.Service
	WishlistSvc     *wishlistsvc.Service
	NotificationSvc *notificationsvc.Service
	AddressBook     *addresssvc.Book
	PaymentSvc      *paymentsvc.Service
	Hub             *ws.Hub
	WSAuthTimeout   time.Duration
	CORSOrigins     []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(deps.CORSOrigins) == 0 || (len(deps.CORSOrigins) == 1 && deps.CORSOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = deps.CORSOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	auth := authMiddleware(deps.UserSvc)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/register", registerHandler(deps.UserSvc))
		v1.POST("/auth/login", loginHandler(deps.UserSvc))
		v1.POST("/auth/logout", auth, logoutHandler(deps.UserSvc))
		v1.GET("/auth/me", auth, meHandler())

		v1.GET("/products", listProductsHandler(deps.CatalogSvc))
		v1.GET("/products/featured", featuredProductsHandler(deps.CatalogSvc))
		v1.GET("/products/trending", trendingProductsHandler(deps.CatalogSvc))
		v1.GET("/products/new-arrivals", newArrivalsHandler(deps.CatalogSvc))
		v1.GET("/products/:id", getProductHandler(deps.CatalogSvc))
		v1.POST("/products", auth, requireStaff(), createProductHandler(deps.CatalogSvc))
		v1.PUT("/products/:id", auth, requireStaff(), updateProductHandler(deps.CatalogSvc))
		v1.DELETE("/products/:id", auth, requireAdmin(), deleteProductHandler(deps.CatalogSvc))
		v1.POST("/products/:id/inventory", auth, requireStaff(), adjustInventoryHandler(deps.CatalogSvc))

		v1.GET("/cart", auth, getCartHandler(deps.CartSvc))
		v1.POST("/cart/items", auth, addCartItemHandler(deps.CartSvc))
		v1.PUT("/cart/items", auth, updateCartItemHandler(deps.CartSvc))
		v1.DELETE("/cart/items", auth, removeCartItemHandler(deps.CartSvc))
		v1.DELETE("/cart", auth, clearCartHandler(deps.CartSvc))

		v1.POST("/orders/checkout", auth, checkoutHandler(deps.OrderSvc))
		v1.GET("/orders", auth, listOrdersHandler(deps.OrderSvc))
		v1.GET("/orders/number/:number", auth, getOrderByNumberHandler(deps.OrderSvc))
		v1.GET("/orders/:id", auth, getOrderHandler(deps.OrderSvc))

		v1.POST("/returns", auth, createReturnHandler(deps.ReturnsSvc))
		v1.GET("/returns", auth, listReturnsHandler(deps.ReturnsSvc))
		v1.GET("/returns/:id", auth, getReturnHandler(deps.ReturnsSvc))

		v1.GET("/wishlist", auth, getWishlistHandler(deps.WishlistSvc))
		v1.POST("/wishlist/:productId", auth, addWishlistHandler(deps.WishlistSvc))
		v1.DELETE("/wishlist/:productId", auth, removeWishlistHandler(deps.WishlistSvc))

		v1.GET("/notifications", auth, listNotificationsHandler(deps.NotificationSvc))
		v1.GET("/notifications/unread-count", auth, unreadCountHandler(deps.NotificationSvc))
		v1.POST("/notifications/:id/read", auth, markNotificationReadHandler(deps.NotificationSvc))
		v1.POST("/notifications/read-all", auth, markAllNotificationsReadHandler(deps.NotificationSvc))

		v1.GET("/addresses", auth, listAddressesHandler(deps.AddressBook))
		v1.POST("/addresses", auth, createAddressHandler(deps.AddressBook))
		v1.GET("/addresses/:id", auth, getAddressHandler(deps.AddressBook))
		v1.PUT("/addresses/:id", auth, updateAddressHandler(deps.AddressBook))
		v1.DELETE("/addresses/:id", auth, deleteAddressHandler(deps.AddressBook))
		v1.POST("/addresses/:id/default", auth, setDefaultAddressHandler(deps.AddressBook))

		v1.GET("/payment-methods", auth, listPaymentMethodsHandler(deps.PaymentSvc))
		v1.POST("/payment-methods", auth, createPaymentMethodHandler(deps.PaymentSvc))
		v1.GET("/payment-methods/:id", auth, getPaymentMethodHandler(deps.PaymentSvc))
		v1.PUT("/payment-methods/:id", auth, updatePaymentMethodHandler(deps.PaymentSvc))
		v1.DELETE("/payment-methods/:id", auth, removePaymentMethodHandler(deps.PaymentSvc))
		v1.POST("/payment-methods/:id/default", auth, setDefaultPaymentMethodHandler(deps.PaymentSvc))
		v1.GET("/billing-history", auth, billingHistoryHandler(deps.PaymentSvc))

		v1.PUT("/users/me", auth, updateProfileHandler(deps.UserSvc))
		v1.POST("/users/me/password", auth, changePasswordHandler(deps.UserSvc))

		admin := v1.Group("/admin", auth, requireStaff())
		{
			admin.GET("/orders", adminListOrdersHandler(deps.OrderSvc))
			admin.GET("/orders/stats", orderStatsHandler(deps.OrderSvc))
			admin.PUT("/orders/:id", updateOrderHandler(deps.OrderSvc))
			admin.GET("/returns", adminListReturnsHandler(deps.ReturnsSvc))
			admin.PUT("/returns/:id/status", updateReturnStatusHandler(deps.ReturnsSvc))
			admin.GET("/users", requireAdmin(), adminListUsersHandler(deps.UserSvc))
			admin.PUT("/users/:id", requireAdmin(), adminUpdateUserHandler(deps.UserSvc))
		}
	}

	wsHandlers := newWSHandlers(deps.Hub, deps.UserSvc, deps.WSAuthTimeout, logger)
	router.GET("/ws/products", wsHandlers.channel(ws.ChannelProducts))
	router.GET("/ws/orders", wsHandlers.channel(ws.ChannelOrders))
	router.GET("/ws/cart", wsHandlers.cart())
	router.GET("/ws/admin-dashboard", wsHandlers.adminDashboard())

	return router
}
