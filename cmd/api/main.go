package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/httpserver"
	addressrepo "storefront-api/internal/repository/address"
	cartrepo "storefront-api/internal/repository/cart"
	notificationrepo "storefront-api/internal/repository/notification"
	orderrepo "storefront-api/internal/repository/order"
	paymentrepo "storefront-api/internal/repository/payment"
	productrepo "storefront-api/internal/repository/product"
	returnsrepo "storefront-api/internal/repository/returns"
	tokenrepo "storefront-api/internal/repository/token"
	userrepo "storefront-api/internal/repository/user"
	wishlistrepo "storefront-api/internal/repository/wishlist"
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

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	hub := ws.NewHub(logger)

	userRepo := userrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	returnsRepo := returnsrepo.NewPostgres(dbpool)
	wishlistRepo := wishlistrepo.NewPostgres(dbpool)
	notificationRepo := notificationrepo.NewPostgres(dbpool)
	addressRepo := addressrepo.NewPostgres(dbpool)
	paymentRepo := paymentrepo.NewPostgres(dbpool)

	userService := usersvc.New(userRepo, tokenRepo, cfg.TokenTTL, logger)
	catalogService := catalogsvc.New(productRepo, hub, logger)
	cartService := cartsvc.New(cartRepo, productRepo, hub)
	notificationService := notificationsvc.New(notificationRepo, hub, logger)
	orderService := ordersvc.New(orderRepo, cartRepo, productRepo, hub, notificationService, logger)
	returnsService := returnssvc.New(returnsRepo, orderRepo)
	wishlistService := wishlistsvc.New(wishlistRepo, productRepo)
	addressBook := addresssvc.New(addressRepo)
	paymentService := paymentsvc.New(paymentRepo, orderRepo)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepExpiredTokens(sweepCtx, tokenRepo, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		UserSvc:         userService,
		CatalogSvc:      catalogService,
		CartSvc:         cartService,
		OrderSvc:        orderService,
		ReturnsSvc:      returnsService,
		WishlistSvc:     wishlistService,
		NotificationSvc: notificationService,
		AddressBook:     addressBook,
		PaymentSvc:      paymentService,
		Hub:             hub,
		WSAuthTimeout:   cfg.WSAuthTimeout,
		CORSOrigins:     strings.Split(cfg.CORSOrigins, ","),
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

// sweepExpiredTokens deletes expired session rows periodically. Validation
// already drops expired tokens on use; the sweeper keeps never-touched rows
// from accumulating.
func sweepExpiredTokens(ctx context.Context, tokens tokenrepo.Repository, logger *log.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokens.DeleteExpired(ctx)
			if err != nil {
				logger.Printf("token sweep: %v", err)
				continue
			}
			if n > 0 {
				logger.Printf("token sweep: deleted=%d", n)
			}
		}
	}
}
