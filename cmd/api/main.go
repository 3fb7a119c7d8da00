package main

import (
	"context"
	"log"
	"net/http"

	"github.com/petermazzocco/blogly/internal/config"
	"github.com/petermazzocco/blogly/internal/handlers"
	"github.com/petermazzocco/blogly/internal/session"
	"github.com/petermazzocco/blogly/internal/store"
	"github.com/petermazzocco/blogly/internal/views"
)

func main() {
	// Initialize environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Database connection
	db, err := store.Open(cfg.DSN, store.Options{LogSQL: cfg.LogSQL})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Create tables if they don't exist yet
	if err := db.Migrate(context.Background()); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}

	pages, err := views.New()
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	// Session store for flash messages
	flash := session.NewFlash(session.NewCookieStore(cfg.SessionKey, cfg.SecureCookies))

	h := handlers.New(db, pages, flash)

	log.Printf("Starting Blogly on :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, h.Router(cfg.RateLimit)))
}
