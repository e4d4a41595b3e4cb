package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config ortam yapılandırmalarını ve ledger sabitlerini tutar
type Config struct {
	AppEnv string
	Port   string
	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	// BusinessTZ gün/ay sınırlarının çözüldüğü sabit işletme saat dilimi.
	// "Bugün" tüm kullanıcılar için aynı yerel geceyarısında başlar.
	BusinessTZ string

	// ChestDurationMin yeni açılışın varsayılan süresi (dakika)
	ChestDurationMin int

	// AutoMintInterval / AutoCloseInterval periyodik job aralıkları
	AutoMintInterval  time.Duration
	AutoCloseInterval time.Duration

	// AutoMintWeightBp chest_auto lot'larının weight'i (düşük güvenli değer)
	AutoMintWeightBp int

	// DepositWeightBp chest_deposit lot'larının weight'i
	DepositWeightBp int

	// BeneficiaryPct support value'nun beneficiary'ye giden yüzdesi
	BeneficiaryPct int
}

// yardımcı fonksiyon: ortam değişkeni yoksa default değeri döner
func getEnv(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt int ortam değişkeni; parse edilemezse default döner
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// LoadConfig tüm yapılandırmayı yükler
func LoadConfig() *Config {
	return &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),
		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBUser: getEnv("DB_USER", "rubis"),
		DBPass: getEnv("DB_PASS", "password"),
		DBName: getEnv("DB_NAME", "rubisdb"),

		BusinessTZ:        getEnv("BUSINESS_TZ", "Europe/Istanbul"),
		ChestDurationMin:  getEnvInt("CHEST_DURATION_MIN", 30),
		AutoMintInterval:  time.Duration(getEnvInt("AUTO_MINT_INTERVAL_SEC", 60)) * time.Second,
		AutoCloseInterval: time.Duration(getEnvInt("AUTO_CLOSE_INTERVAL_SEC", 5)) * time.Second,
		AutoMintWeightBp:  getEnvInt("AUTO_MINT_WEIGHT_BP", 2000),
		DepositWeightBp:   getEnvInt("DEPOSIT_WEIGHT_BP", 9000),
		BeneficiaryPct:    getEnvInt("BENEFICIARY_PCT", 90),
	}
}

// GetDSN veritabanı bağlantı URL'sini döner
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName,
	)
}

// Location işletme saat dilimini yükler; bulunamazsa UTC+3'e düşer
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BusinessTZ)
	if err != nil {
		return time.FixedZone("TRT", 3*60*60)
	}
	return loc
}
