package types

// Status tracks the lifecycle of a stored record and determines whether it
// should be included in queries.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

// LogLevel is the configured logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// RunMode is the deployment mode of the service.
type RunMode string

const (
	ModeLocal  RunMode = "local"
	ModeServer RunMode = "server"
	ModeLambda RunMode = "lambda"
)
