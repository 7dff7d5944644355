package consts

// App version constants
const (
	AppName        = "fstrace"
	AppVersionName = "Watcher"
)

// Environment variable prefix for the CLI flags
const EnvVarPrefix = "FSTRACE"
