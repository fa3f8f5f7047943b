package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"nusakalaAPI/handlers"
	"nusakalaAPI/internal/backend"
	"nusakalaAPI/internal/batik"
	"nusakalaAPI/internal/config"
	"nusakalaAPI/internal/database"
	"nusakalaAPI/internal/gemini"
	"nusakalaAPI/internal/metrics"
	"nusakalaAPI/internal/notification"
	"nusakalaAPI/internal/province"
	"nusakalaAPI/internal/storage"
	"nusakalaAPI/internal/translate"
	"nusakalaAPI/internal/trivia"
	"nusakalaAPI/internal/workers"
	"nusakalaAPI/middleware"
	"nusakalaAPI/services"

	_ "net/http/pprof"
)

var (
	cfg         *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	feedHub             *services.FeedHub
	pushDispatcher      *services.PushDispatcher
	userService         *services.UserService
	triviaService       *services.TriviaService
	eventService        *services.EventService
	provinceService     *services.ProvinceService
	translationService  *services.TranslationService
	batikService        *services.BatikService
	assistantService    *services.AssistantService
	communityService    *services.CommunityService
	notificationService *services.NotificationService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	clerk.SetKey(cfg.ClerkSecretKey)
	log.Println("Clerk initialized successfully")

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbPool, err = database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(ctx, dbPool); err != nil {
		log.Fatal(err)
	}
	log.Println("Successfully connected to Postgres")

	var statuses services.TriviaStatusStore = services.NewMemoryTriviaStatusStore()
	var history services.TranslationHistoryStore = services.NewMemoryTranslationHistory()
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal(err)
		}
		statuses = services.NewRedisTriviaStatusStore(redisClient)
		history = services.NewRedisTranslationHistory(redisClient)
		log.Println("Successfully connected to Redis")
	} else {
		log.Println("REDIS_URL not set, keeping trivia status and translation history in memory")
	}

	provinces := province.DefaultCatalog()
	upstream := backend.NewClient(cfg.Backend.URL, cfg.Backend.Email, cfg.Backend.Password, cfg.Backend.Timeout)

	var push services.PushProvider
	fcmService, err := notification.NewFCMService(ctx, cfg.FCMServiceAccountJSON, cfg.FCMCredentialsFile)
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		pushDispatcher = services.NewPushDispatcher(fcmService, 5)
		push = pushDispatcher
		log.Println("FCM Push Provider initialized successfully")
	}

	var translator services.Translator
	if cfg.TranslateAPIKey != "" {
		gt, err := translate.NewGoogleTranslator(ctx, cfg.TranslateAPIKey)
		if err != nil {
			log.Printf("Warning: Could not initialize Google Translate: %v", err)
		} else {
			translator = gt
		}
	}

	var generator services.TextGenerator
	if cfg.GeminiAPIKey != "" {
		gc, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("Warning: Could not initialize Gemini: %v", err)
		} else {
			generator = gc
		}
	}

	var images services.ImageStore
	if cfg.R2.Enabled() {
		r2, err := storage.NewR2Store(ctx, cfg.R2)
		if err != nil {
			log.Printf("Warning: Could not initialize R2: %v", err)
		} else {
			images = r2
		}
	}

	streaks := services.NewPgStreakStore(dbPool)
	feedHub = services.NewFeedHub()

	notificationService = services.NewNotificationService(services.NewPgDeviceStore(dbPool), push)
	userService = services.NewUserService(services.NewPgProfileStore(dbPool), streaks)
	triviaService = services.NewTriviaService(streaks, statuses, trivia.DefaultBank(), loc, notificationService)
	eventService = services.NewEventService(upstream, upstream, provinces, cfg.EventShareBaseURL)
	provinceService = services.NewProvinceService(provinces)
	translationService = services.NewTranslationService(translator, history)
	batikService = services.NewBatikService(batik.NewClassifierClient(cfg.BatikClassifierURL), batik.DefaultCatalog())
	assistantService = services.NewAssistantService(generator, provinces)
	communityService = services.NewCommunityService(services.NewPgCommunityStore(dbPool), images, upstream, provinces, feedHub)

	metrics.Register()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
		if redisClient != nil {
			redisClient.Close()
		}
	}()

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go feedHub.Run(hubCtx)

	scheduler, err := workers.Start(triviaService, middleware.CleanupVisitors)
	if err != nil {
		log.Fatal("Failed to start scheduler: ", err)
	}

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	webhookHandler := handlers.NewWebhookHandler(userService, cfg.ClerkWebhookSecret)
	triviaHandler := handlers.NewTriviaHandler(triviaService)
	eventHandler := handlers.NewEventHandler(eventService)
	provinceHandler := handlers.NewProvinceHandler(provinceService)
	translationHandler := handlers.NewTranslationHandler(translationService)
	batikHandler := handlers.NewBatikHandler(batikService)
	assistantHandler := handlers.NewAssistantHandler(assistantService)
	communityHandler := handlers.NewCommunityHandler(communityService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := mux.NewRouter()

	// The monitor middleware wraps the ResponseWriter, which breaks hijacking.
	r.HandleFunc("/api/v1/community/ws", communityHandler.Subscribe)

	standardRouter := r.PathPrefix("/").Subrouter()

	standardRouter.Use(middleware.RateLimitMiddleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "nusakala-api"}`))
	}).Methods("GET")

	standardRouter.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/provinces", provinceHandler.ListProvinces).Methods("GET")
	api.HandleFunc("/provinces/{slug}", provinceHandler.GetProvince).Methods("GET")

	api.HandleFunc("/events", eventHandler.ListEvents).Methods("GET")
	api.HandleFunc("/events/{id}", eventHandler.GetEvent).Methods("GET")
	api.HandleFunc("/events/{id}/qr", eventHandler.GetEventQR).Methods("GET")

	api.HandleFunc("/batik/motifs", batikHandler.ListMotifs).Methods("GET")
	api.HandleFunc("/batik/motifs/{slug}", batikHandler.GetMotif).Methods("GET")

	api.HandleFunc("/translate/languages", translationHandler.Languages).Methods("GET")

	// Public, but signed in callers get personalised fields.
	optional := api.PathPrefix("").Subrouter()
	optional.Use(middleware.OptionalAuthMiddleware)

	optional.HandleFunc("/trivia/leaderboard", triviaHandler.GetLeaderboard).Methods("GET")
	optional.HandleFunc("/community/posts", communityHandler.Feed).Methods("GET")
	optional.HandleFunc("/community/posts/{id}/comments", communityHandler.Comments).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")

	protected.HandleFunc("/trivia/today", triviaHandler.GetToday).Methods("GET")
	protected.HandleFunc("/trivia/answer", triviaHandler.SubmitAnswer).Methods("POST")
	protected.HandleFunc("/trivia/streak", triviaHandler.GetStreak).Methods("GET")
	protected.HandleFunc("/trivia/status", triviaHandler.GetStatus).Methods("GET")

	protected.HandleFunc("/events", eventHandler.CreateEvent).Methods("POST")

	protected.HandleFunc("/translate", translationHandler.Translate).Methods("POST")
	protected.HandleFunc("/translate/history", translationHandler.History).Methods("GET")
	protected.HandleFunc("/translate/history", translationHandler.ClearHistory).Methods("DELETE")

	protected.HandleFunc("/batik/identify", batikHandler.Identify).Methods("POST")
	protected.HandleFunc("/assistant/ask", assistantHandler.Ask).Methods("POST")

	protected.HandleFunc("/community/posts", communityHandler.CreatePost).Methods("POST")
	protected.HandleFunc("/community/posts/{id}", communityHandler.DeletePost).Methods("DELETE")
	protected.HandleFunc("/community/posts/{id}/like", communityHandler.ToggleLike).Methods("POST")
	protected.HandleFunc("/community/posts/{id}/comments", communityHandler.AddComment).Methods("POST")

	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins(cfg.Origins),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := ":" + cfg.Port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
	if pushDispatcher != nil {
		pushDispatcher.Stop()
	}

	log.Println("Server shutdown complete")
}
