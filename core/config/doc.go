// Package config provides configuration management for the Forum Indexer.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file, with defaults declared as struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, metrics port)
//   - Database: MySQL/SQLite connection details
//   - Storage: S3/MinIO credentials and bucket settings for content payloads
//   - Log: Logging level and format
//   - Forum: engine settings (network id, rating refresh policy, content retry budget)
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
