package logger

// Console writes to stdout and stderr, mainly for docker and dev.
type Console struct {
	Enabled          bool `toml:"enabled"`
	UseConsoleWriter bool
}

// Rotation is one lumberjack file.
type Rotation struct {
	File       string `toml:"file"`
	MaxSize    int    `toml:"maxSize"` // megabytes
	MaxBackups int    `toml:"maxBackups"`
	MaxAge     int    `toml:"maxAge"` // days
}

// LogFile writes each level group and the access log into its own rotating file below Path.
type LogFile struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`

	Access Rotation `toml:"access"`
	Error  Rotation `toml:"error"`
	Info   Rotation `toml:"info"`
	Trace  Rotation `toml:"trace"`
	Warn   Rotation `toml:"warn"`
}

// Log is the logging section of the service config.
type Log struct {
	LogLevel string // trace, debug, info, warn, error
	LogEnv   string

	// EnableAccessLogToConsole mirrors the access log to the console, only if Console.Enabled is set too.
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableCheckAlive        bool

	AppName     string
	ServiceName string

	Console Console
	File    LogFile `toml:"file"`
}
