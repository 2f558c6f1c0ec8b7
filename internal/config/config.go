package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	StoreDriver string
	SQLitePath  string
	DatabaseURL string
	RedisAddr   string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	CatalogURL string

	TaxRate             float64
	FlatShipping        float64
	FreeShippingRegions []string
	OrderDelay          time.Duration

	AdminUsername string
	AdminPassword string
	JWTSecret     []byte
	SecureCookies bool
}

// Load reads .env when present and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		StoreDriver: strings.ToLower(EnvDefault("STORE_DRIVER", "sqlite")),
		SQLitePath:  EnvDefault("SQLITE_PATH", "storefront.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   EnvDefault("REDIS_ADDR", "localhost:6379"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		CatalogURL: EnvDefault("CATALOG_URL", "http://localhost:8000/data/products.json"),

		TaxRate:             EnvFloatDefault("TAX_RATE", 0.08),
		FlatShipping:        EnvFloatDefault("FLAT_SHIPPING", 9.99),
		FreeShippingRegions: csvDefault(os.Getenv("FREE_SHIPPING_REGIONS"), []string{"NY", "CA"}),
		OrderDelay:          time.Duration(EnvIntDefault("ORDER_DELAY_MS", 2000)) * time.Millisecond,

		AdminUsername: EnvDefault("ADMIN_USERNAME", "admin"),
		AdminPassword: EnvDefault("ADMIN_PASSWORD", "admin123"),
		JWTSecret:     []byte(EnvDefault("JWT_SECRET", "dev-only-secret")),
		SecureCookies: EnvBoolDefault("COOKIE_SECURE", false),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func csvDefault(v string, def []string) []string {
	if out := CSV(v); len(out) > 0 {
		return out
	}
	return def
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvFloatDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}
