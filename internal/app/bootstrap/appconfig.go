// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers framework-level settings (HTTP ports, TLS,
// logging, timeouts). AppConfig is everything specific to TeamLens:
// database connection, session and token secrets, SMTP delivery, and
// the external grouping-algorithm process.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connections in the driver pool
	MongoMinPoolSize uint64 // Min connections kept warm in the pool

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: teamlens-session)
	SessionDomain string // Cookie domain (blank means current host)

	// JWT secret for session, invitation, and password-reset tokens
	JWTSecret string

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty disables auth)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@teamlens.app)
	MailFromName string // From display name (e.g., TeamLens)

	// Base URL for email links (student registration, password reset)
	BaseURL string // e.g., "https://teamlens.app" or "http://localhost:3000"

	// External grouping-algorithm process
	AlgorithmCommand    string // interpreter or binary to invoke (e.g., "python3")
	AlgorithmScript     string // script path passed as first argument; blank for a bare binary
	AlgorithmMaxWorkers int    // max concurrent algorithm jobs
}
