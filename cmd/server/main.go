package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"formgate/internal/api"
	"formgate/internal/app/service"
	"formgate/internal/common/security"
	"formgate/internal/domain/repository"
	"formgate/internal/platform/config"
	"formgate/internal/platform/database"
	"formgate/internal/platform/ratelimit"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize rate limiter (optional, needs Redis)
	var limiter *ratelimit.Limiter
	if !config.AppConfig.SubmitRateDisabled {
		ratelimit.ConnectRedis()
		defer ratelimit.CloseRedis()
		limiter = ratelimit.NewLimiter(ratelimit.RDB, config.AppConfig.SubmitRatePerMin, "submit")
		fmt.Println("Rate limiter enabled.")
	}

	// 5. Initialize Repositories
	submissionRepo := repository.NewSQLSubmissionRepository(database.DB, database.ActiveDial)

	// 6. Initialize Services
	authService := service.NewAuthService()
	submissionService := service.NewSubmissionService(submissionRepo)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(authService, submissionService, limiter)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
