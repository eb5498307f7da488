package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// MaxConcurrentRuns bounds the bootstrap runs the server executes at once.
	MaxConcurrentRuns int `mapstructure:"max_concurrent_runs" default:"2"`
	// ReportPrefix is the storage prefix of finished run reports.
	ReportPrefix string `mapstructure:"report_prefix" default:"reports"`
}

// Address returns the listen address.
func (c Config) Address() string {
	return ":" + c.Port
}

// RunLimit returns MaxConcurrentRuns, at least one.
func (c Config) RunLimit() int {
	if c.MaxConcurrentRuns < 1 {
		return 1
	}
	return c.MaxConcurrentRuns
}
