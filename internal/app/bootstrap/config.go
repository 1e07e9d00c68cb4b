// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/aiesociety/aiesweb/internal/app/system/assist"
	"github.com/aiesociety/aiesweb/internal/app/system/auth"
	"github.com/aiesociety/aiesweb/internal/app/system/journalmetrics"
	"github.com/aiesociety/aiesweb/internal/app/system/viewcache"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Storage backends.
const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for the site backend.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: AIES_MONGO_URI, AIES_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "aies", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "aies-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_ttl", Default: "24h", Desc: "Session lifetime (e.g., 24h, 30m)"},

	// Administrator credential
	{Name: "admin_email", Default: "", Desc: "Administrator sign-in email"},
	{Name: "admin_password_hash", Default: "", Desc: "bcrypt hash of the administrator password"},
	{Name: "password_hash_cost", Default: auth.DefaultCost, Desc: "bcrypt cost for member passwords"},

	// File storage configuration
	{Name: "storage_type", Default: StorageLocal, Desc: "Storage backend: 'local' or 'gcs'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},
	{Name: "storage_gcs_bucket", Default: "", Desc: "Google Cloud Storage bucket"},
	{Name: "storage_gcs_credentials_file", Default: "", Desc: "GCS service account JSON (blank uses default credentials)"},
	{Name: "storage_public_url", Default: "", Desc: "Public URL prefix for stored objects"},

	// AI text-assist and journal metrics
	{Name: "gemini_api_key", Default: "", Desc: "Generative model API key"},
	{Name: "gemini_model", Default: assist.DefaultModel, Desc: "Generative model name"},
	{Name: "elsevier_api_key", Default: "", Desc: "Elsevier Serial Title API key"},
	{Name: "elsevier_base_url", Default: journalmetrics.DefaultBaseURL, Desc: "Elsevier Serial Title endpoint"},

	// Public view cache
	{Name: "view_cache_ttl", Default: "10m", Desc: "Public view cache lifetime"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, AIES_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "AIES", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionTTL:    appValues.Duration("session_ttl", 24*time.Hour),

		AdminEmail:        appValues.String("admin_email"),
		AdminPasswordHash: appValues.String("admin_password_hash"),
		PasswordHashCost:  appValues.Int("password_hash_cost"),

		StorageType:               appValues.String("storage_type"),
		StorageLocalPath:          appValues.String("storage_local_path"),
		StorageLocalURL:           appValues.String("storage_local_url"),
		StorageGCSBucket:          appValues.String("storage_gcs_bucket"),
		StorageGCSCredentialsFile: appValues.String("storage_gcs_credentials_file"),
		StoragePublicURL:          appValues.String("storage_public_url"),

		GeminiAPIKey:    appValues.String("gemini_api_key"),
		GeminiModel:     appValues.String("gemini_model"),
		ElsevierAPIKey:  appValues.String("elsevier_api_key"),
		ElsevierBaseURL: appValues.String("elsevier_base_url"),

		ViewCacheTTL: appValues.Duration("view_cache_ttl", viewcache.DefaultExpiration),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// It catches configuration errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.StorageType {
	case StorageLocal:
	case StorageGCS:
		if appCfg.StorageGCSBucket == "" {
			return fmt.Errorf("storage_type %q requires storage_gcs_bucket", StorageGCS)
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want %q or %q)", appCfg.StorageType, StorageLocal, StorageGCS)
	}

	if appCfg.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", appCfg.SessionTTL)
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == devSessionKey {
		return fmt.Errorf("session_key must be set in production")
	}

	if appCfg.AdminEmail == "" || appCfg.AdminPasswordHash == "" {
		logger.Warn("admin credential not configured; admin sign-in is disabled")
	}
	if appCfg.GeminiAPIKey == "" {
		logger.Warn("gemini_api_key not set; AI text-assist is disabled")
	}
	if appCfg.ElsevierAPIKey == "" {
		logger.Warn("elsevier_api_key not set; journal metrics are disabled")
	}
	return nil
}
