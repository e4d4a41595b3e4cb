package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/rubisplatform/rubis-api/internal/config"
	"github.com/rubisplatform/rubis-api/internal/db"
	"github.com/rubisplatform/rubis-api/internal/events"
	"github.com/rubisplatform/rubis-api/internal/handlers"
	"github.com/rubisplatform/rubis-api/internal/jobs"
	"github.com/rubisplatform/rubis-api/internal/logger"
	"github.com/rubisplatform/rubis-api/internal/middleware"
	"github.com/rubisplatform/rubis-api/internal/repository"
	"github.com/rubisplatform/rubis-api/internal/services"
)

func main() {
	// .env dosyasını yükle
	if err := godotenv.Load(); err != nil {
		stdlog.Println(".env dosyası bulunamadı, ortam değişkenlerinden okunacak.")
	}

	// config yükle
	cfg := config.LoadConfig()

	// logger başlat
	logger.Init(cfg.AppEnv)

	log.Info().
		Str("environment", cfg.AppEnv).
		Str("port", cfg.Port).
		Str("business_tz", cfg.BusinessTZ).
		Msg("🚀 Rubis API başlatıldı")

	// Database bağlantısı
	database, err := db.Connect(cfg.GetDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Veritabanı bağlantısı başarısız")
	}
	defer database.Close()

	// Repository katmanı
	userRepo := repository.NewUserRepository(database)
	lotRepo := repository.NewLotRepository(database)
	txRepo := repository.NewTransactionRepository(database)
	walletRepo := repository.NewWalletRepository(database)
	streamerRepo := repository.NewStreamerRepository(database)
	chestRepo := repository.NewChestRepository(database)
	bonusRepo := repository.NewBonusRepository(database)
	weightRepo := repository.NewWeightRepository(database)

	// Origin ağırlıkları başlangıçta bir kez yüklenir; değişiklik
	// deploy gerektirir
	weights, err := weightRepo.LoadAll()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Origin ağırlıkları yüklenemedi")
	}

	// Event notifier (2 worker, 100 buffer)
	notifier := events.NewNotifier(2, 100, events.LogSink{})
	notifier.Start()

	// Service katmanı
	userService := services.NewUserService(userRepo)
	ledgerService := services.NewLedgerService(lotRepo, txRepo, walletRepo, streamerRepo, database, weights, cfg.BeneficiaryPct)
	chestService := services.NewChestService(chestRepo, streamerRepo, ledgerService, database, cfg, notifier)
	bonusService := services.NewBonusService(bonusRepo, ledgerService, database, cfg.Location())
	walletService := services.NewWalletService(walletRepo, streamerRepo, txRepo, database)

	// Scheduler: auto-mint ve auto-close tick'leri
	scheduler := jobs.NewScheduler(chestService, cfg.Location())
	if err := scheduler.Start(cfg.AutoMintInterval, cfg.AutoCloseInterval); err != nil {
		log.Fatal().Err(err).Msg("❌ Scheduler başlatılamadı")
	}

	// Handler katmanı
	userHandler := handlers.NewUserHandler(userService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	chestHandler := handlers.NewChestHandler(chestService)
	bonusHandler := handlers.NewBonusHandler(bonusService)
	walletHandler := handlers.NewWalletHandler(walletService)

	// Gorilla Mux Router Setup
	router := setupRouter(userHandler, ledgerHandler, chestHandler, bonusHandler, walletHandler)

	// HTTP Server configuration
	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown setup
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Server'ı goroutine'de başlat
	go func() {
		log.Info().
			Str("addr", serverAddr).
			Msg("🌐 HTTP Server (Gorilla Mux) başlatıldı")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("❌ Server başlatma hatası")
		}
	}()

	// Shutdown signal'ını bekle
	<-shutdown
	log.Info().Msg("🛑 Shutdown signal alındı, server kapatılıyor...")

	// Graceful shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// 1. HTTP Server'ı kapat (aktif bağlantıları bekle)
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ HTTP Server kapatma hatası")
	} else {
		log.Info().Msg("✅ HTTP Server başarıyla kapatıldı")
	}

	// 2. Scheduler'ı durdur (çalışan tick'lerin bitmesini bekler)
	scheduler.Stop()

	// 3. Notifier'ı durdur (kuyruktaki event'lerin teslimini bekler)
	notifier.Stop()

	log.Info().Msg("👋 Rubis API başarıyla kapatıldı")
}

// setupRouter Gorilla Mux router'ını ayarlar
func setupRouter(
	userHandler *handlers.UserHandler,
	ledgerHandler *handlers.LedgerHandler,
	chestHandler *handlers.ChestHandler,
	bonusHandler *handlers.BonusHandler,
	walletHandler *handlers.WalletHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Global middleware'ler
	rateLimiter := middleware.NewRateLimitMiddleware(middleware.DefaultRateLimitConfig())
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.RequestLoggingMiddleware)
	router.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig()))
	router.Use(rateLimiter.Handler())

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 subrouter
	api := router.PathPrefix("/api/v1").Subrouter()

	// Public endpoints (Authentication)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", userHandler.Register).Methods("POST")
	auth.HandleFunc("/login", userHandler.Login).Methods("POST")

	// Protected endpoints (Authentication required)
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware)

	// User endpoints
	users := protected.PathPrefix("/users").Subrouter()
	users.HandleFunc("/profile", userHandler.GetProfile).Methods("GET")

	// Ledger endpoints
	ledger := protected.PathPrefix("/ledger").Subrouter()
	ledger.HandleFunc("/purchase", ledgerHandler.Purchase).Methods("POST")
	ledger.HandleFunc("/spend", ledgerHandler.Spend).Methods("POST")
	ledger.HandleFunc("/balance", ledgerHandler.GetBalance).Methods("GET")

	// Chest endpoints
	chests := protected.PathPrefix("/chests").Subrouter()
	chests.HandleFunc("", chestHandler.Open).Methods("POST")
	chests.HandleFunc("/{id:[0-9]+}/join", chestHandler.Join).Methods("POST")
	chests.HandleFunc("/deposit", chestHandler.Deposit).Methods("POST")
	chests.HandleFunc("/{id:[0-9]+}/settle", chestHandler.Settle).Methods("POST")
	chests.HandleFunc("/{id:[0-9]+}/cancel", chestHandler.Cancel).Methods("POST")

	// Bonus endpoints
	bonus := protected.PathPrefix("/bonus").Subrouter()
	bonus.HandleFunc("/daily", bonusHandler.ClaimDaily).Methods("POST")
	bonus.HandleFunc("/milestones/{milestone:[0-9]+}", bonusHandler.ClaimMilestone).Methods("POST")

	// Wallet endpoints
	wallets := protected.PathPrefix("/streamers").Subrouter()
	wallets.HandleFunc("/{id:[0-9]+}/wallet", walletHandler.GetSummary).Methods("GET")
	wallets.HandleFunc("/{id:[0-9]+}/cashout", walletHandler.RequestCashout).Methods("POST")

	return router
}
