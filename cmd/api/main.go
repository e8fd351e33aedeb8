package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/gateway"
	"storefront/internal/httpserver"
	cartrepo "storefront/internal/repository/cart"
	favoriterepo "storefront/internal/repository/favorite"
	productrepo "storefront/internal/repository/product"
	purchaserepo "storefront/internal/repository/purchase"
	reviewrepo "storefront/internal/repository/review"
	ticketrepo "storefront/internal/repository/ticket"
	userrepo "storefront/internal/repository/user"
	walletrepo "storefront/internal/repository/wallet"
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

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	userRepo := userrepo.NewPostgres(dbpool)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	walletRepo := walletrepo.NewPostgres(dbpool, logger)
	purchaseRepo := purchaserepo.NewPostgres(dbpool, walletRepo, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	reviewRepo := reviewrepo.NewPostgres(dbpool)
	favoriteRepo := favoriterepo.NewPostgres(dbpool)
	ticketRepo := ticketrepo.NewPostgres(dbpool)

	stripeClient := gateway.NewStripeClient(cfg.StripeSecretKey, cfg.GatewayTimeout, logger)

	userService := usersvc.New(userRepo)
	productService := productsvc.New(productRepo)
	cartService := cartsvc.New(cartRepo)
	walletService := walletsvc.New(walletRepo)
	historyService := historysvc.New(purchaseRepo)
	reviewService := reviewsvc.New(reviewRepo, purchaseRepo, productRepo)
	favoriteService := favoritesvc.New(favoriteRepo, productRepo)
	ticketService := ticketsvc.New(ticketRepo)
	checkoutService := checkoutsvc.New(productRepo, purchaseRepo, walletRepo, stripeClient, checkoutsvc.Config{
		Currency:   cfg.Currency,
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
	}, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		UserSvc:     userService,
		ProductSvc:  productService,
		CartSvc:     cartService,
		CheckoutSvc: checkoutService,
		WalletSvc:   walletService,
		HistorySvc:  historyService,
		ReviewSvc:   reviewService,
		FavoriteSvc: favoriteService,
		TicketSvc:   ticketService,

		CORSOrigins:   cfg.CORSOrigins,
		WebhookSecret: cfg.StripeWebhookSecret,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
