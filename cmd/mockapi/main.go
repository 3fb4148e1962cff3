package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/config"
	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/mockapi"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Risus mock backend")
	log.Println("========================================")

	// 1. Load environment
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found, using environment variables")
	}

	// 2. Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration error:", err)
	}
	log.Println("✅ Configuration loaded")

	// 3. Seed the in-memory store
	log.Println("🌱 Seeding accounts and posts...")
	store := mockapi.NewStore()
	if err := mockapi.Seed(store); err != nil {
		log.Fatal("❌ Seeding failed:", err)
	}
	log.Printf("✅ Seeded %d accounts (password %q)", len(mockapi.SeedUsernames), mockapi.SeedPassword)

	// 4. Build routes
	server := mockapi.New(mockapi.Options{
		Store:       store,
		PageSize:    cfg.MockPageSize,
		Secret:      []byte(cfg.MockSigningSecret),
		LogRequests: cfg.MockLogRequests,
	})
	log.Println("✅ Routes registered")

	c := cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool {
			if cfg.Environment != "production" {
				return true
			}
			if envOrigins := os.Getenv("ALLOWED_ORIGINS"); envOrigins != "" {
				for _, o := range strings.Split(envOrigins, ",") {
					if origin == strings.TrimSpace(o) {
						return true
					}
				}
			}
			return false
		},
		AllowedMethods:   []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "Origin"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type", "Location"},
		AllowCredentials: true,
		MaxAge:           86400,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.MockPort),
		Handler:      c.Handler(server.Handler()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("========================================")
		log.Printf("🚀 Mock backend running on http://localhost:%s", cfg.MockPort)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Server error:", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("⚠️  Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Shutdown error:", err)
	}
	log.Println("✅ Server stopped")
}
