package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	httpSwagger "github.com/swaggo/http-swagger"

	"gangboard/internal/activity"
	"gangboard/internal/config"
	"gangboard/internal/database"
	"gangboard/internal/gang"
	"gangboard/internal/leaderboard"
	"gangboard/internal/ledger"
	"gangboard/internal/member"
	"gangboard/internal/rollover"
	"gangboard/internal/tracker"
)

// @title        gangboard API
// @version      1.0
// @description  Community-engagement points tracker: member and gang points, leaderboards, weekly resets.
// @BasePath     /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration and the gang roster
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	// Repositories
	memberRepo := member.NewRepository(db)
	gangRepo := gang.NewRepository(db)
	activityRepo := activity.NewRepository(db)

	// Services
	memberService := member.NewService(memberRepo, gangRepo, cfg.MemberCategories)
	gangService := gang.NewService(gangRepo, memberRepo, cfg.GangCategories, cfg.MemberCategories)
	ledgerService := ledger.NewService(memberRepo, gangRepo, activityRepo, gangRepo, cfg.MemberCategories, cfg.GangCategories)
	trackerService := tracker.NewService(cfg, memberRepo, gangRepo, activityRepo, gangRepo, cfg.MemberCategories, cfg.ActivityCategory)
	leaderboardService := leaderboard.NewService(memberRepo, gangRepo)
	rolloverService := rollover.NewService(memberRepo, gangRepo, cfg.GangCategories)

	// Sync the gang roster: create configured gangs, clean up removed ones
	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := gangService.SyncRoster(startupCtx, cfg.GuildID, cfg.Gangs); err != nil {
		log.Fatalf("Failed to sync gang roster: %v", err)
	}
	if err := gangService.CleanupOrphans(startupCtx, cfg.GuildID, cfg.Gangs, cfg.DefaultGangID); err != nil {
		log.Printf("Failed to clean up removed gangs: %v", err)
	}
	cancel()

	// Weekly reset schedule (Sunday midnight UTC by default)
	scheduler := cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC))
	if _, err := scheduler.AddFunc(cfg.WeeklyResetSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		summary, err := rolloverService.ResetWeekly(ctx, cfg.GuildID)
		if err != nil {
			log.Printf("Weekly reset failed: %v", err)
			return
		}
		log.Printf("Weekly reset done: %d members and %d gangs zeroed", summary.MembersReset, summary.GangsReset)
	}); err != nil {
		log.Fatalf("Invalid weekly reset schedule %q: %v", cfg.WeeklyResetSpec, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Handlers
	memberHandler := member.NewHandler(memberService, cfg.GuildID)
	gangHandler := gang.NewHandler(gangService, cfg.GuildID)
	awardHandler := ledger.NewHandler(ledgerService, cfg.GuildID)
	trackerHandler := tracker.NewHandler(trackerService, cfg.GuildID)
	leaderboardHandler := leaderboard.NewHandler(leaderboardService, cfg.GuildID)
	rolloverHandler := rollover.NewHandler(rolloverService, cfg.GuildID)
	activityHandler := activity.NewHandler(activityRepo, cfg.GuildID)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// doc.json comes from the docs package `make docs` generates
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/members", memberHandler.Routes())
		r.Mount("/gangs", gangHandler.Routes())
		r.Mount("/awards", awardHandler.Routes())
		r.Mount("/messages", trackerHandler.Routes())
		r.Mount("/leaderboard", leaderboardHandler.Routes())
		r.Mount("/admin", rolloverHandler.Routes())
		r.Mount("/activity", activityHandler.Routes())
	})

	log.Printf("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
