package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the API server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// MetricsPort is the port where the Prometheus metrics listener will run.
	// Empty disables the metrics listener.
	MetricsPort string `mapstructure:"metrics_port" default:"9091"`
}
