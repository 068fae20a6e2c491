package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"questlogAPI/handlers"
	"questlogAPI/internal/cache"
	"questlogAPI/middleware"
	"questlogAPI/services"
)

const challengeSweepInterval = 5 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database config: %v", err)
	}
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	dbPool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalf("Unable to create connection pool: %v", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	middleware.InitPrometheus()
	cache.InitMetrics()

	queryCache := cache.New()

	userService := services.NewUserService(dbPool, queryCache)
	friendService := services.NewFriendService(dbPool, queryCache)
	challengeService := services.NewChallengeService(dbPool, queryCache, userService, friendService)
	activityService := services.NewActivityService(dbPool, queryCache, userService, challengeService)
	achievementService := services.NewAchievementService(dbPool, queryCache, userService)

	userHandler := handlers.NewUserHandler(userService)
	activityHandler := handlers.NewActivityHandler(activityService)
	achievementHandler := handlers.NewAchievementHandler(achievementService)
	challengeHandler := handlers.NewChallengeHandler(challengeService)
	friendHandler := handlers.NewFriendHandler(friendService)
	performanceHandler := handlers.NewPerformanceHandler(queryCache)

	router := mux.NewRouter()
	router.Use(middleware.MonitorMiddleware)
	router.Use(middleware.RateLimitMiddleware)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	}).Methods("GET")

	router.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler())).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", userHandler.Register).Methods("POST")
	auth.HandleFunc("/login", userHandler.Login).Methods("POST")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)

	protected.HandleFunc("/users/me", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/users/stats", userHandler.GetStats).Methods("GET")

	protected.HandleFunc("/activities", activityHandler.SubmitActivity).Methods("POST")
	protected.HandleFunc("/activities", activityHandler.ListActivities).Methods("GET")
	protected.HandleFunc("/activities/stats", activityHandler.GetAggregateStats).Methods("GET")
	protected.HandleFunc("/activities/recent", activityHandler.GetRecentActivities).Methods("GET")

	protected.HandleFunc("/achievements", achievementHandler.ListAchievements).Methods("GET")
	protected.HandleFunc("/achievements/check", achievementHandler.CheckAchievements).Methods("POST")
	protected.HandleFunc("/achievements/reset", achievementHandler.ResetAchievements).Methods("POST")
	protected.HandleFunc("/achievements/{id}/unlock", achievementHandler.UnlockAchievement).Methods("POST")
	protected.HandleFunc("/achievements/{id}/progress", achievementHandler.GetProgress).Methods("GET")

	protected.HandleFunc("/challenges", challengeHandler.CreateChallenge).Methods("POST")
	protected.HandleFunc("/challenges/active", challengeHandler.GetActiveChallenges).Methods("GET")
	protected.HandleFunc("/challenges/invites", challengeHandler.GetInvites).Methods("GET")
	protected.HandleFunc("/challenges/history", challengeHandler.GetHistory).Methods("GET")
	protected.HandleFunc("/challenges/{id}", challengeHandler.GetChallengeDetail).Methods("GET")
	protected.HandleFunc("/challenges/{id}/respond", challengeHandler.RespondToInvite).Methods("POST")

	protected.HandleFunc("/friends", friendHandler.GetFriends).Methods("GET")
	protected.HandleFunc("/friends/requests", friendHandler.SendRequest).Methods("POST")
	protected.HandleFunc("/friends/requests", friendHandler.GetPendingRequests).Methods("GET")
	protected.HandleFunc("/friends/requests/{id}/respond", friendHandler.RespondToRequest).Methods("POST")
	protected.HandleFunc("/friends/search", friendHandler.SearchUsers).Methods("GET")
	protected.HandleFunc("/friends/leaderboard", friendHandler.GetLeaderboard).Methods("GET")
	protected.HandleFunc("/friends/{id}", friendHandler.RemoveFriend).Methods("DELETE")

	protected.HandleFunc("/performance/cache", performanceHandler.GetCacheStats).Methods("GET")
	protected.HandleFunc("/performance/cache/clear", performanceHandler.ClearCache).Methods("POST")

	go middleware.CleanupVisitors()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(challengeSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if _, err := challengeService.SweepExpired(sweepCtx); err != nil {
					log.Printf("challenge sweep: %v", err)
				}
			}
		}
	}()

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      corsHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
