package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/asfak07/blognest/backend/internal/handlers"
	"github.com/asfak07/blognest/backend/internal/middleware"
	"github.com/asfak07/blognest/backend/internal/models"
	"github.com/asfak07/blognest/backend/internal/repositories"
	"github.com/asfak07/blognest/backend/internal/storage"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// jwtSecret is used both to sign issued tokens and to verify incoming ones.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mdb *mongo.Database, firebaseAuthClient *auth.Client, blobStore storage.BlobStore, jwtSecret string) {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mdb)

	jwtAuth := middleware.JWTAuthMiddleware(jwtSecret)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, jwtSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// Post routes (reads public, mutations behind JWT)
	postHandler := handlers.NewPostHandler(postRepo, userRepo, blobStore)
	postHandler.RegisterPostRoutes(e, jwtAuth)
	log.Println("Post routes configured.")

	// Engagement routes
	engagementHandler := handlers.NewEngagementHandler(postRepo)
	engagementHandler.RegisterEngagementRoutes(e, jwtAuth)
	log.Println("Engagement routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(postRepo)
	commentHandler.RegisterCommentRoutes(e, jwtAuth)
	log.Println("Comment routes configured.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo, postRepo)
	userHandler.RegisterUserRoutes(e, jwtAuth)
	log.Println("User routes configured.")

	// Analytics routes
	analyticsHandler := handlers.NewAnalyticsHandler(postRepo)
	analyticsHandler.RegisterAnalyticsRoutes(e.Group("/analytics"))
	log.Println("Analytics routes configured.")

	log.Println("All routes configured.")
}
