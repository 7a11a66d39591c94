package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"reelview/api"
	"reelview/config"
	"reelview/handlers"
	"reelview/internal/memcache"
	"reelview/services/catalog"
	"reelview/services/category"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	// .env is optional; the settings file and real environment still apply.
	if err := godotenv.Load(); err == nil {
		log.Printf("[main] loaded environment from .env")
	}

	configPath := os.Getenv("REELVIEW_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	if settings.TMDB.APIKey == "" {
		// Every catalog call degrades to its failure path without a key; the
		// server still starts so the operator sees the condition in the log.
		log.Printf("warning: no TMDB API key configured; catalog requests will return empty results")
	}

	responseCache := memcache.New(time.Duration(settings.Cache.TTLMinutes)*time.Minute, nil)
	catalogService := catalog.NewService(settings.TMDB.APIKey, settings.TMDB.Language, responseCache)
	resolver := category.NewResolver()

	// Warm the genre tables and image configuration in the background; the
	// resolver falls back to its built-in genre table until this lands.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := catalogService.Warmup(ctx); err != nil {
			log.Printf("[main] catalog warmup failed: %v", err)
			return
		}
		for _, mediaType := range []string{catalog.MediaTypeMovie, catalog.MediaTypeTV} {
			if genres, err := catalogService.Genres(ctx, mediaType); err == nil {
				resolver.SetGenres(mediaType, genres)
			}
		}
	}()

	r := mux.NewRouter()
	api.Register(
		r,
		handlers.NewCatalogHandler(catalogService, resolver),
		handlers.NewDetailsHandler(catalogService),
		handlers.NewHomeHandler(catalogService),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Printf("[main] shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("[main] shutdown complete")
}
