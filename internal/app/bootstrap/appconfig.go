// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (AIES_*), configuration
// files, or command-line flags (loaded in LoadConfig). They represent
// *app-level* configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connections in the driver pool

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: aies-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionTTL    time.Duration // Lifetime of an issued session token

	// Administrator credential
	AdminEmail        string // Email the administrator signs in with
	AdminPasswordHash string // bcrypt hash of the administrator password (see `aiesctl hash-password`)
	PasswordHashCost  int    // bcrypt cost for new member passwords

	// File storage configuration
	StorageType               string // Storage backend: "local" or "gcs"
	StorageLocalPath          string // Local storage path (e.g., "./uploads")
	StorageLocalURL           string // URL prefix for serving local files (e.g., "/files")
	StorageGCSBucket          string // Google Cloud Storage bucket
	StorageGCSCredentialsFile string // Service account JSON (blank uses application default credentials)
	StoragePublicURL          string // Public URL prefix for GCS objects (blank uses storage.googleapis.com)

	// AI text-assist and journal metrics
	GeminiAPIKey    string // Generative model API key (blank disables the AI helpers)
	GeminiModel     string // Generative model name
	ElsevierAPIKey  string // Elsevier API key (blank disables journal metrics)
	ElsevierBaseURL string // Serial Title endpoint

	// Public view cache
	ViewCacheTTL time.Duration // How long a rendered public view stays cached
}
