package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	redisDriver "github.com/redis/go-redis/v9"

	"movienight-go/internal/config"
	"movienight-go/internal/handlers/apiserver"
	appKafka "movienight-go/internal/kafka"
	"movienight-go/internal/middleware"
	appRedis "movienight-go/internal/redis"
	"movienight-go/internal/services"
	"movienight-go/internal/storage"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	log.Printf("%s %s configuration loaded.", cfg.AppName, cfg.AppVersion)

	// 2. Initialize the database connection
	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Println("Database connection established.")

	if err := storage.AutoMigrateTables(db); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	// 3. Initialize the Redis client
	redisClient := redisDriver.NewClient(&redisDriver.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis.")

	// 4. Token blacklist
	tokenBlacklist := appRedis.NewRedisTokenBlacklist(redisClient)

	// 5. Repositories
	userRepo := storage.NewGormUserRepository(db)
	followRepo := storage.NewGormFollowRepository(db)
	friendRepo := storage.NewGormFriendRequestRepository(db)
	movieNightRepo := storage.NewGormMovieNightRepository(db)
	attendanceRepo := storage.NewGormAttendanceRepository(db)

	// 6. Kafka producer for relationship events
	kfkProducer, err := appKafka.NewConfluentKafkaProducer(cfg.Kafka)
	if err != nil {
		log.Fatalf("failed to create Kafka producer: %v", err)
	}
	defer kfkProducer.Close()
	log.Println("Kafka producer initialized.")

	// 7. Services
	authService := services.NewAuthService(userRepo, cfg.Auth)
	userService := services.NewUserService(userRepo, movieNightRepo, followRepo, friendRepo, attendanceRepo)
	followService := services.NewFollowService(userRepo, followRepo)
	friendService := services.NewFriendService(userRepo, friendRepo, kfkProducer, cfg.Kafka)
	attendanceService := services.NewAttendanceService(userRepo, attendanceRepo)
	visibilityService := services.NewVisibilityService(friendRepo)
	calendarService := services.NewCalendarService(userRepo, movieNightRepo, friendRepo, visibilityService, attendanceService, kfkProducer, cfg.Kafka)
	movieNightService := services.NewMovieNightService(movieNightRepo, attendanceService)

	// 8. Handlers
	authHandler := apiserver.NewAuthHandler(authService, tokenBlacklist)
	profileHandler := apiserver.NewProfileHandler(userService)
	followHandler := apiserver.NewFollowHandler(followService)
	friendHandler := apiserver.NewFriendHandler(friendService)
	movieNightHandler := apiserver.NewMovieNightHandler(movieNightService)
	calendarHandler := apiserver.NewCalendarHandler(calendarService)

	// 9. HTTP routes
	r := mux.NewRouter()

	// Public auth routes
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	authMW := middleware.AuthMiddleware(cfg.Auth.JWTSecretKey, tokenBlacklist)

	// Authenticated API routes
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMW)

	apiRouter.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	// Profile
	apiRouter.HandleFunc("/profile", profileHandler.GetProfile).Methods(http.MethodGet)
	apiRouter.HandleFunc("/profile", profileHandler.UpdateProfile).Methods(http.MethodPut)
	apiRouter.HandleFunc("/profile", profileHandler.DeleteAccount).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/profile/password", profileHandler.ChangePassword).Methods(http.MethodPost)

	// Follow graph
	apiRouter.HandleFunc("/follow/stats", followHandler.Stats).Methods(http.MethodGet)
	apiRouter.HandleFunc("/follow/search", followHandler.Search).Methods(http.MethodGet)
	apiRouter.HandleFunc("/follow/followers", followHandler.Followers).Methods(http.MethodGet)
	apiRouter.HandleFunc("/follow/following", followHandler.Following).Methods(http.MethodGet)
	apiRouter.HandleFunc("/follow/{userID}", followHandler.Follow).Methods(http.MethodPost)
	apiRouter.HandleFunc("/follow/{userID}", followHandler.Unfollow).Methods(http.MethodDelete)

	// Friend requests and friendships
	apiRouter.HandleFunc("/friends", friendHandler.ListFriends).Methods(http.MethodGet)
	apiRouter.HandleFunc("/friends/stats", friendHandler.Stats).Methods(http.MethodGet)
	apiRouter.HandleFunc("/friends/search", friendHandler.Search).Methods(http.MethodGet)
	apiRouter.HandleFunc("/friends/requests", friendHandler.PendingRequests).Methods(http.MethodGet)
	apiRouter.HandleFunc("/friends/request/{userID}", friendHandler.SendRequest).Methods(http.MethodPost)
	apiRouter.HandleFunc("/friends/request/{userID}", friendHandler.Cancel).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/friends/accept/{requestID:[0-9]+}", friendHandler.Accept).Methods(http.MethodPost)
	apiRouter.HandleFunc("/friends/reject/{requestID:[0-9]+}", friendHandler.Reject).Methods(http.MethodPost)
	apiRouter.HandleFunc("/friends/{userID}", friendHandler.Unfriend).Methods(http.MethodDelete)

	// Own movie nights
	apiRouter.HandleFunc("/movie-nights", movieNightHandler.Create).Methods(http.MethodPost)
	apiRouter.HandleFunc("/movie-nights", movieNightHandler.List).Methods(http.MethodGet)
	apiRouter.HandleFunc("/movie-nights/{id:[0-9]+}", movieNightHandler.Get).Methods(http.MethodGet)
	apiRouter.HandleFunc("/movie-nights/{id:[0-9]+}", movieNightHandler.Update).Methods(http.MethodPut)
	apiRouter.HandleFunc("/movie-nights/{id:[0-9]+}", movieNightHandler.Delete).Methods(http.MethodDelete)

	// Friend calendars and RSVPs
	apiRouter.HandleFunc("/calendar/movie-nights/{movieNightID:[0-9]+}", calendarHandler.GetMovieNightDetails).Methods(http.MethodGet)
	apiRouter.HandleFunc("/calendar/movie-nights/{movieNightID:[0-9]+}/attend", calendarHandler.Attend).Methods(http.MethodPost)
	apiRouter.HandleFunc("/calendar/movie-nights/{movieNightID:[0-9]+}/attend", calendarHandler.Unattend).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/calendar/{userID}", calendarHandler.GetUserCalendar).Methods(http.MethodGet)

	// 10. CORS from configuration
	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		handlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		handlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}
	corsHandler := handlers.CORS(corsOptions...)(r)

	// 11. Start the HTTP server with graceful shutdown
	serverAddr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      corsHandler,
		ReadTimeout:  cfg.APIServer.ReadTimeout,
		WriteTimeout: cfg.APIServer.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	}

	go func() {
		log.Printf("API server listening on %s", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received, stopping API server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("API server forced to shut down: %v", err)
	}

	log.Println("API server stopped.")
}
