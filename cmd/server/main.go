package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/dareyes/restaurant-management/internal/auth"
	"github.com/dareyes/restaurant-management/internal/config"
	"github.com/dareyes/restaurant-management/internal/database"
	"github.com/dareyes/restaurant-management/internal/handler"
	"github.com/dareyes/restaurant-management/internal/jobs"
	"github.com/dareyes/restaurant-management/internal/middleware"
	"github.com/dareyes/restaurant-management/internal/queue"
	"github.com/dareyes/restaurant-management/internal/repository"
	"github.com/dareyes/restaurant-management/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db, cfg.BcryptCost)
	tokens := repository.NewTokenRepo(db)
	products := repository.NewProductRepo(db)
	tables := repository.NewTableRepo(db)
	reports := repository.NewReportRepo(db)

	codec := auth.NewCodec(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL(), cfg.RefreshTTL())
	sessions := auth.NewSessionManager(users, tokens, codec)
	if cfg.RabbitURL != "" {
		sessions.SetAudit(func(ev queue.AuthEvent) {
			// Fire and forget; audit must not block or fail the refresh.
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = queue.Publish(ctx, cfg.RabbitURL, ev)
			}()
		})
	}
	authn := middleware.NewAuthenticator(codec, users, sessions, cfg)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and dashboard cache disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, sessions),
		Products:  handler.NewProductHandler(products),
		Tables:    handler.NewTableHandler(tables),
		Users:     handler.NewUserAdminHandler(users, sessions),
		Dashboard: handler.NewDashboardHandler(reports, rdb, cfg.DashboardCacheTTL),
	}, authn, limiter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs.StartTokenSweep(ctx, cfg, tokens)

	if cfg.RabbitURL != "" {
		go func() {
			if err := queue.StartAuthConsumer(cfg.RabbitURL); err != nil {
				log.Printf("auth consumer stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
