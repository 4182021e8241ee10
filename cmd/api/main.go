package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/canteenhq/canteen-api/internal/config"
	"github.com/canteenhq/canteen-api/internal/domain/coupon"
	"github.com/canteenhq/canteen-api/internal/domain/loyalty"
	"github.com/canteenhq/canteen-api/internal/domain/rule"
	"github.com/canteenhq/canteen-api/internal/middleware"
	"github.com/canteenhq/canteen-api/internal/pkg/database"
	"github.com/canteenhq/canteen-api/internal/pkg/jwt"
	pkgresponse "github.com/canteenhq/canteen-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Canteen loyalty API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Repositories ----------
	ruleRepo := rule.NewRepository(db)
	couponRepo := coupon.NewRepository(db)
	ledgerRepo := loyalty.NewRepository(db, couponRepo)

	// ---------- Services ----------
	var ruleCache *rule.Cache
	if cfg.RuleCacheEnabled {
		ruleCache = rule.NewCache(redis, cfg.RuleCacheTTL)
	}
	ruleService := rule.NewService(ruleRepo, ruleCache)
	couponService := coupon.NewService(couponRepo)

	rewardEvents := loyalty.NewRedisPublisher(redis)
	engine := loyalty.NewEngine(ledgerRepo, ruleService, rewardEvents, cfg.CouponTTL)

	// ---------- Handlers ----------
	ruleHandler := rule.NewHandler(ruleService)
	couponHandler := coupon.NewHandler(couponService)
	loyaltyHandler := loyalty.NewHandler(engine)

	authMiddleware := middleware.Auth(jwtService)
	adminMiddleware := middleware.RequireAdmin()

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/loyalty", loyaltyHandler.Routes(authMiddleware))
		r.Mount("/coupons", couponHandler.Routes(authMiddleware))
		r.Mount("/rewards/rules", ruleHandler.Routes(authMiddleware))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Mount("/rewards/rules", ruleHandler.AdminRoutes(authMiddleware, adminMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
