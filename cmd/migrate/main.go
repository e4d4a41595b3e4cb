// Migration CLI: go run ./cmd/migrate [up|down|status]
package main

import (
	stdlog "log"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/rubisplatform/rubis-api/internal/config"
	"github.com/rubisplatform/rubis-api/internal/db"
	"github.com/rubisplatform/rubis-api/internal/logger"
	"github.com/rubisplatform/rubis-api/internal/migration"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdlog.Println(".env dosyası bulunamadı, ortam değişkenlerinden okunacak.")
	}

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	database, err := db.Connect(cfg.GetDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Veritabanı bağlantısı başarısız")
	}
	defer database.Close()

	runner := migration.NewRunner(database, "migrations")

	switch command {
	case "up":
		err = runner.Up()
	case "down":
		err = runner.Down()
	case "status":
		err = runner.Status()
	default:
		log.Fatal().Str("command", command).Msg("Bilinmeyen komut (up, down, status)")
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("❌ Migration komutu başarısız")
	}
}
