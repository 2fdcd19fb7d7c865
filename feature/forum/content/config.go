package content

// Config holds configuration for content resolution.
type Config struct {
	// Prefix is prepended to content hashes to form object names.
	Prefix string `mapstructure:"prefix" default:"content/"`
	// RetryBudget is the number of fetch attempts per content hash before
	// the payload is declared unreachable.
	RetryBudget int `mapstructure:"retry_budget" default:"30"`
}
