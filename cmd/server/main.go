package main

import (
	"context"
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/asfak07/blognest/backend/internal/router"
	"github.com/asfak07/blognest/backend/internal/storage"
	"github.com/asfak07/blognest/backend/pkg/config"
	"github.com/asfak07/blognest/backend/pkg/firebase"
	"github.com/asfak07/blognest/backend/validators"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase when credentials are configured
	var firebaseAuthClient *auth.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		firebaseAuthClient = firebaseApp.AuthClient
	} else {
		log.Println("Firebase credentials not configured, firebase-login disabled.")
	}

	// Initialize the image blob store
	blobStore, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Serve uploaded images
	e.Static("/uploads", cfg.UploadDir)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo.Database(cfg.MongoDatabase), firebaseAuthClient, blobStore, cfg.JWTSecret)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
