package main

import (
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"stremdb/api"
	"stremdb/config"
	"stremdb/handlers"
	"stremdb/internal/database"
	"stremdb/services/matchstore"
	"stremdb/services/metadata"
	"stremdb/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] config: %v", err)
	}

	if cfg.LogFile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		})
	}

	var store matchstore.Store = matchstore.NoopStore{}
	if cfg.MatchDBPath != "" {
		db, err := database.NewDB(database.Config{DatabasePath: cfg.MatchDBPath})
		if err != nil {
			log.Fatalf("[main] database: %v", err)
		}
		defer db.Close()
		store = matchstore.NewSQLiteStore(db.Connection())
	}

	httpc := &http.Client{Timeout: 30 * time.Second}
	svc := metadata.NewService(cfg.TMDBAPIKey, httpc, store)

	addon := handlers.NewAddonHandler(svc)
	configure := handlers.NewConfigureHandler()
	searchLimiter := api.NewIPRateLimiter(rate.Limit(cfg.SearchRatePerSecond), cfg.SearchBurst)

	r := utils.NewRouter()
	r.Use(api.RequestLogger)

	cached := api.CacheControl(24 * time.Hour)

	// Addon protocol routes, with and without the settings path segment.
	r.Handle("/manifest.json", cached(http.HandlerFunc(addon.GetManifest))).Methods(http.MethodGet)
	r.Handle("/{settings}/manifest.json", cached(http.HandlerFunc(addon.GetManifest))).Methods(http.MethodGet)

	r.Handle("/meta/{type:movie|series}/{id}", cached(http.HandlerFunc(addon.GetMeta))).Methods(http.MethodGet)
	r.Handle("/{settings}/meta/{type:movie|series}/{id}", cached(http.HandlerFunc(addon.GetMeta))).Methods(http.MethodGet)

	searchHandler := api.RateLimit(searchLimiter, addon.SearchCatalog)
	r.Handle("/catalog/{type:movie|series}/search/{extra}", cached(searchHandler)).Methods(http.MethodGet)
	r.Handle("/{settings}/catalog/{type:movie|series}/search/{extra}", cached(searchHandler)).Methods(http.MethodGet)

	r.HandleFunc("/", configure.GetConfigurePage).Methods(http.MethodGet)
	r.HandleFunc("/configure", configure.GetConfigurePage).Methods(http.MethodGet)
	r.HandleFunc("/{settings}/configure", configure.GetConfigurePage).Methods(http.MethodGet)

	addr := ":" + cfg.Port
	log.Printf("[main] listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("[main] server: %v", err)
	}
}
