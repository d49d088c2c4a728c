package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"

	"mirin-backend/internal/accounts"
	"mirin-backend/internal/admin"
	"mirin-backend/internal/notify/notifications"
	"mirin-backend/internal/notify/pushtokens"
	"mirin-backend/internal/platform/auth"
	"mirin-backend/internal/platform/db"
	"mirin-backend/internal/platform/storage"
	"mirin-backend/internal/platform/webpush"
	"mirin-backend/internal/rental_mgmt/idcards"
	"mirin-backend/internal/rental_mgmt/payments"
	"mirin-backend/internal/rental_mgmt/products"
	"mirin-backend/internal/rental_mgmt/rentals"
	"mirin-backend/internal/shop/orders"
)

func main() {
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if mode != "dev" && mode != "release" {
		log.Fatal("config mode must be dev or release")
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("auth.jwt_secret (or MIRIN_JWT_SECRET) is required")
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS is only needed while the frontend runs on its own port
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.Static("/uploads", cfg.Uploads.Dir)

	// shared services
	notifySvc := notifications.NewService(conn)
	tokenSvc := pushtokens.NewService(conn)
	pusher := webpush.NewSender(cfg.WebPush.Subscriber, cfg.WebPush.VAPIDPublicKey, cfg.WebPush.VAPIDPrivateKey, tokenSvc)
	files := storage.New(cfg.Uploads.Dir)
	authSvc := auth.NewService(conn, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	paymentSvc := payments.NewService(conn, notifySvc, pusher, cfg.PromptPay.ID)

	// /api/v1
	api := r.Group("/api/v1")
	authed := r.Group("/api/v1", auth.RequireAuth(authSvc.Secret(), cfg.Auth.CookieName))
	adminAPI := r.Group("/api/v1/admin",
		auth.RequireAuth(authSvc.Secret(), cfg.Auth.CookieName),
		auth.RequireRole(auth.RoleAdmin))

	auth.RegisterRoutes(api, authSvc, cfg.Auth.CookieName, mode == "release")
	products.RegisterRoutes(api, adminAPI, products.NewService(conn))
	rentals.RegisterRoutes(authed, adminAPI, rentals.NewService(conn, notifySvc, cfg.PromptPay.ID))
	payments.RegisterRoutes(authed, adminAPI, paymentSvc)
	idcards.RegisterRoutes(authed, adminAPI, idcards.NewService(conn, files, notifySvc, pusher))
	notifications.RegisterRoutes(authed, notifySvc)
	pushtokens.RegisterRoutes(authed, tokenSvc)
	orders.RegisterRoutes(authed, adminAPI, orders.NewService(conn, notifySvc))
	accounts.RegisterRoutes(authed, adminAPI, accounts.NewService(conn))
	admin.RegisterRoutes(adminAPI, admin.NewService(conn))

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if cfg.Payments.PendingTTLHours > 0 {
		sweeper := payments.NewSweeper(
			payments.NewStore(conn),
			time.Duration(cfg.Payments.PendingTTLHours)*time.Hour,
			time.Duration(cfg.Payments.SweepMinutes)*time.Minute,
		)
		go sweeper.Run(workerCtx)
	}

	go func() {
		log.Printf("[INFO] listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	stopWorkers()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
