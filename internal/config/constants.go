package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the bookstore database
	DefaultDatabasePath = "./bookstore.db"

	// DefaultMailFrom is the sender address used for purchase notifications
	DefaultMailFrom = "your@email.com"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Mail backends
const (
	MailBackendLog  = "log"  // Writes messages to the application log
	MailBackendSMTP = "smtp" // Delivers messages through an SMTP relay
)
