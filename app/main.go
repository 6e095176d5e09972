package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feedscope/feedscope/app/api"
	"github.com/feedscope/feedscope/app/cfg"
	"github.com/feedscope/feedscope/app/checker"
	"github.com/feedscope/feedscope/app/database"
	"github.com/feedscope/feedscope/app/feed"
	"github.com/feedscope/feedscope/app/hub"
	"github.com/feedscope/feedscope/app/source"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	log.Printf("Starting Feedscope server (version %s)...", appCfg.Version)

	log.Printf("Opening database at %s...", appCfg.DBPath)
	db, err := database.Open(appCfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	log.Printf("Database schema at version %d (dirty: %t)", version, dirty)

	presets, err := source.LoadPresets(appCfg.PresetsFile)
	if err != nil {
		log.Fatal("Failed to load news presets: ", err)
	}
	log.Printf("Loaded %d news presets", len(presets))

	subRepo := database.NewSubscriptionRepo(db)
	itemRepo := database.NewItemRepo(db)

	client := source.NewClient(&http.Client{}, appCfg.UserAgent)
	registry := source.NewRegistry(client, feed.NewParser(), presets, source.Options{
		HNStoryLimit:    appCfg.HNStoryLimit,
		ArxivMaxResults: appCfg.ArxivMaxResults,
	})

	feedChecker := checker.NewChecker(registry, subRepo, itemRepo,
		appCfg.WorkerCount, time.Duration(appCfg.FetchTimeout)*time.Second)
	feedHub := hub.NewHub(registry, feedChecker, subRepo, itemRepo)

	apiHandler := api.NewHandler(feedHub, subRepo, itemRepo)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("Feedscope server started successfully!")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	log.Println("Feedscope server shutdown complete")
}
