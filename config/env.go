package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDatabaseDriver = "mongo"
	defaultMongoURI       = "mongodb://localhost:27017"
	defaultMongoDatabase  = "storefront"
	defaultJWTSecret      = "change-me-in-production"
	defaultTokenTTL       = 24 * time.Hour
	defaultBcryptCost     = 10
	defaultAppPort        = "8080"
	defaultAppEnv         = "local"
	defaultProductTTL     = 5 * time.Minute
	defaultMaxBodyBytes   = 4 << 20
	defaultMaxUploadBytes = 10 << 20
	defaultRateLimit      = 200
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json and .env once. Process environment variables
// always win over both files.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":      defaultAppEnv,
		"APP_PORT":     defaultAppPort,
		"DB_DRIVER":    defaultDatabaseDriver,
		"MONGO_URI":    defaultMongoURI,
		"JWT_SECRET":   defaultJWTSecret,
		"STORAGE_DISK": "local",
	}
}

// ── App ──────────────────────────────────────────────────────────────────────

func AppEnv() string  { _ = Load(); return get("APP_ENV", defaultAppEnv) }
func AppPort() string { _ = Load(); return get("APP_PORT", defaultAppPort) }

// APIPrefix is mounted in front of /users, /products, /cart and /orders.
func APIPrefix() string {
	_ = Load()
	return strings.TrimRight(get("API_PREFIX", ""), "/")
}

func ShutdownTimeout() time.Duration {
	_ = Load()
	return getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
}

// ── Database ─────────────────────────────────────────────────────────────────

func DatabaseDriver() string {
	_ = Load()

	driver := strings.ToLower(get("DB_DRIVER", defaultDatabaseDriver))
	switch driver {
	case "mongo", "memory":
		return driver
	default:
		return defaultDatabaseDriver
	}
}

func MongoURI() string      { _ = Load(); return get("MONGO_URI", defaultMongoURI) }
func MongoDatabase() string { _ = Load(); return get("MONGO_DATABASE", defaultMongoDatabase) }

// MongoTransactions enables multi-document transactions for checkout.
// Only turn it on against a replica set or sharded cluster.
func MongoTransactions() bool {
	_ = Load()
	return getBool("MONGO_TRANSACTIONS", false)
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

// ErrDefaultSecret means JWT_SECRET was left at its built-in value in
// production, where anyone could sign tokens with it.
var ErrDefaultSecret = errors.New("JWT_SECRET must be set in production")

// IsProduction reports whether APP_ENV names a production deployment.
func IsProduction() bool {
	switch strings.ToLower(AppEnv()) {
	case "production", "prod":
		return true
	}
	return false
}

// CheckSecrets refuses to run a production deployment on the default
// signing secret.
func CheckSecrets() error {
	if IsProduction() && JWTSecret() == defaultJWTSecret {
		return ErrDefaultSecret
	}
	return nil
}

func TokenTTL() time.Duration {
	_ = Load()
	return getDuration("TOKEN_TTL", defaultTokenTTL)
}

func BcryptCost() int {
	_ = Load()
	return getInt("BCRYPT_COST", defaultBcryptCost)
}

// ── Cache ────────────────────────────────────────────────────────────────────

func RedisAddr() string     { _ = Load(); return get("REDIS_ADDR", "") }
func RedisPassword() string { _ = Load(); return get("REDIS_PASSWORD", "") }

func ProductCacheTTL() time.Duration {
	_ = Load()
	return getDuration("PRODUCT_CACHE_TTL", defaultProductTTL)
}

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDefault() string   { _ = Load(); return get("STORAGE_DISK", "local") }
func StorageLocalRoot() string { _ = Load(); return get("STORAGE_LOCAL_ROOT", "storage") }

func StorageURL() string {
	_ = Load()
	return get("STORAGE_URL", "http://localhost:"+AppPort()+"/storage")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

// ── HTTP limits ──────────────────────────────────────────────────────────────

func MaxBodyBytes() int64 {
	_ = Load()
	return int64(getInt("MAX_BODY_BYTES", defaultMaxBodyBytes))
}

func MaxUploadBytes() int64 {
	_ = Load()
	return int64(getInt("MAX_UPLOAD_BYTES", defaultMaxUploadBytes))
}

func RateLimitPerMinute() int {
	_ = Load()
	return getInt("RATE_LIMIT_PER_MINUTE", defaultRateLimit)
}

// CORSOrigins is a comma-separated allow-list; "*" allows any origin.
func CORSOrigins() []string {
	_ = Load()
	var out []string
	for _, o := range strings.Split(get("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// LogMongoCollection names the collection that receives a copy of every log
// record. Empty disables the sink.
func LogMongoCollection() string {
	_ = Load()
	return get("LOG_MONGO_COLLECTION", "")
}

// ── Loading ──────────────────────────────────────────────────────────────────

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mergeProcessEnv(loaded)

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64, bool:
			s = fmt.Sprint(v)
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	for key, value := range env {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(value)
	}
	return nil
}

// mergeProcessEnv overrides every known key (and every key already loaded
// from files) with its process environment value when one is set.
func mergeProcessEnv(out map[string]string) {
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !isKnownKey(key, out) {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
}

var knownKeys = []string{
	"APP_ENV", "APP_PORT", "API_PREFIX", "SHUTDOWN_TIMEOUT",
	"DB_DRIVER", "MONGO_URI", "MONGO_DATABASE", "MONGO_TRANSACTIONS",
	"JWT_SECRET", "TOKEN_TTL", "BCRYPT_COST",
	"REDIS_ADDR", "REDIS_PASSWORD", "PRODUCT_CACHE_TTL",
	"STORAGE_DISK", "STORAGE_LOCAL_ROOT", "STORAGE_URL",
	"S3_BUCKET", "S3_REGION", "S3_KEY", "S3_SECRET", "S3_ENDPOINT", "S3_URL",
	"MAX_BODY_BYTES", "MAX_UPLOAD_BYTES", "CORS_ORIGINS", "RATE_LIMIT_PER_MINUTE",
	"LOG_MONGO_COLLECTION",
}

func isKnownKey(key string, loaded map[string]string) bool {
	if _, ok := loaded[key]; ok {
		return true
	}
	for _, k := range knownKeys {
		if k == key {
			return true
		}
	}
	return false
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(get(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(get(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

// getDuration accepts Go duration strings ("15m") or plain seconds ("900").
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := get(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env, app.json and the environment are available after Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Set overrides a single key at runtime. Intended for tests and CLI flags.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
