package constants

import "time"

const (
	AppName            = "habitlog"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habitlog/habitlog.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// ChartLabelFormat is the day label used by the progress chart (MM/DD)
	ChartLabelFormat = "01/02"

	// Habit defaults
	DefaultCategory = "General"

	// Aggregation windows, today inclusive
	RecentWindowDays   = 7
	ProgressWindowDays = 30

	// Session constants
	SessionCookieName  = "habitlog_session"
	DefaultSessionTTL  = 7 * 24 * time.Hour
	RedisSessionPrefix = "habitlog:session:"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitlog-"
	BackupFileSuffix = ".db"

	// Server defaults
	DefaultHTTPAddr      = "localhost:8080"
	DefaultTimezone      = "Local" // Use system local timezone by default
	DefaultRateLimit     = 5
	DefaultRateBurst     = 10
	ShutdownTimeout      = 10 * time.Second
	RateLimiterExpiresIn = 3 * time.Minute
)
