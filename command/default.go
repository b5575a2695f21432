package command

// Global flags, registered on the root command
const (
	JSONOutputFlag = "json"
	LogLevelFlag   = "log-level"
	ConfigFlag     = "config"
	EnvFileFlag    = "env-file"
)

const (
	DefaultLogLevel = "INFO"
	AppName         = "sgld"
)
