package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"laas-calculator/internal/config"
	"laas-calculator/internal/database/postgres"
	"laas-calculator/internal/database/redis"
	"laas-calculator/internal/handlers"
	"laas-calculator/internal/repository"
	"laas-calculator/internal/services"

	"github.com/gin-gonic/gin"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/laas", "log", "calculator_service")
	err := os.MkdirAll(logDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()
	log.Printf("Connecting to PostgreSQL with: host=%s, port=%s, user=%s, dbname=%s",
		cfg.PostgresCfg.Host, cfg.PostgresCfg.Port, cfg.PostgresCfg.Username, cfg.PostgresCfg.DBname)

	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		// Block until the database is reachable: everything below needs a
		// live connection.
		log.Printf("error connect to database: %s", err)
		postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	} else if err := postgres.EnsureSchema(db); err != nil {
		log.Fatalf("Error initializing schema: %v", err)
	}
	defer db.Close()

	redisClient, err := redis.NewRedisClient(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redisClient.Close()

	// repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(redisClient.GetClient())
	pricingRepo := repository.NewPricingRepository(db)
	configRepo := repository.NewConfigurationRepository(db)

	// services
	jwtService := services.NewJWTService(cfg.AuthCfg.JWTSecret)
	sessionService := services.NewSessionService(sessionRepo)
	userService := services.NewUserService(userRepo, sessionService, jwtService)
	calculator := services.NewCostCalculator()
	pricingService := services.NewPricingService(pricingRepo, calculator)
	configService := services.NewConfigurationService(configRepo, pricingRepo, calculator)

	if err := userService.InitDefaultAdmin(cfg.AuthCfg.AdminEmail, cfg.AuthCfg.AdminPassword); err != nil {
		log.Printf("Warning: default admin not initialized: %v", err)
	}

	// handlers
	middleware := handlers.NewMiddleware(jwtService, sessionService)
	authHandler := handlers.NewAuthHandler(userService, middleware)
	pricingHandler := handlers.NewPricingHandler(pricingService, middleware)
	configHandler := handlers.NewConfigurationHandler(configService, middleware)

	r := gin.Default()
	r.GET("/checkhealth", func(c *gin.Context) {
		c.String(200, "LaaS calculator service is healthy")
	})

	// Register routes
	authHandler.RegisterRoutes(r)
	pricingHandler.RegisterRoutes(r)
	configHandler.RegisterRoutes(r)

	log.Printf("Starting laas-calculator on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
