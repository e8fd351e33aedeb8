package httpserver

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	favoritesvc "storefront/internal/service/favorite"
	historysvc "storefront/internal/service/history"
	productsvc "storefront/internal/service/product"
	reviewsvc "storefront/internal/service/review"
	ticketsvc "storefront/internal/service/ticket"
	usersvc "storefront/internal/service/user"
	walletsvc "storefront/internal/service/wallet"
)

// Deps collects the services the router exposes.
type Deps struct {
	UserSvc     *usersvc.Service
	ProductSvc  *productsvc.Service
	CartSvc     *cartsvc.Service
	CheckoutSvc *checkoutsvc.Service
	WalletSvc   *walletsvc.Service
	HistorySvc  *historysvc.Service
	ReviewSvc   *reviewsvc.Service
	FavoriteSvc *favoritesvc.Service
	TicketSvc   *ticketsvc.Service

	CORSOrigins   []string
	WebhookSecret string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.POST("/stripe/webhook", webhookHandler(logger, deps.CheckoutSvc, deps.WebhookSecret))
	router.GET("/checkout/success", checkoutSuccessHandler(logger, deps.CheckoutSvc))
	router.GET("/checkout/cancel", checkoutCancelHandler())

	api := router.Group("/api")
	{
		api.POST("/signup", signupHandler(deps.UserSvc))
		api.POST("/login", loginHandler(deps.UserSvc))
		api.GET("/products", listProductsHandler(deps.ProductSvc))
		api.GET("/products/:id", getProductHandler(deps.ProductSvc))
		api.GET("/products/:id/reviews", listReviewsHandler(deps.ReviewSvc))

		authed := api.Group("")
		authed.Use(authRequired(deps.UserSvc))
		{
			authed.GET("/user", currentUserHandler())
			authed.POST("/logout", logoutHandler(deps.UserSvc))
			authed.POST("/checkout", checkoutHandler(logger, deps.CheckoutSvc))
			authed.GET("/purchases", listPurchasesHandler(deps.HistorySvc))
			authed.GET("/purchases/export/csv", exportCSVHandler(logger, deps.HistorySvc))
			authed.GET("/purchases/export/print", exportPrintHandler(deps.HistorySvc))
			authed.GET("/wallet", walletHandler(deps.WalletSvc))
			authed.GET("/cart", getCartHandler(deps.CartSvc))
			authed.POST("/cart", saveCartHandler(deps.CartSvc))
			authed.DELETE("/cart", clearCartHandler(deps.CartSvc))
			authed.GET("/favorites", listFavoritesHandler(deps.FavoriteSvc))
			authed.POST("/favorites", addFavoriteHandler(deps.FavoriteSvc))
			authed.DELETE("/favorites/:id", removeFavoriteHandler(deps.FavoriteSvc))
			authed.GET("/support-tickets", listTicketsHandler(deps.TicketSvc))
			authed.POST("/support-tickets", createTicketHandler(deps.TicketSvc))
			authed.POST("/products/:id/reviews", createReviewHandler(deps.ReviewSvc))
		}
	}

	return router
}
