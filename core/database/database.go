package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes a connection to the configured database.
// MySQL is the deployment driver; SQLite (including ":memory:") is used for
// local runs and tests. Callers should handle the error gracefully.
func Connect(cfg Config) (*gorm.DB, error) {
	// Suppress GORM logging, the application logger owns all output.
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	if cfg.Driver == DriverSQLite {
		db, err := gorm.Open(sqlite.Open(cfg.Name), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return db, nil
	}

	// MySQL DSN format:
	// [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...]
	// Special characters in the password must be URL encoded, which
	// url.UserPassword takes care of.
	userInfo := url.UserPassword(cfg.User, cfg.Password).String()

	// Ensure timeout defaults if not set (Config struct sets default but verifying safety)
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	// timeout: connection setup, readTimeout/writeTimeout: I/O
	dsn := fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		userInfo, cfg.Host, cfg.Port, cfg.Name, timeout, timeout, timeout)

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Set connection pool settings to avoid typical issues
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Verify connection with context timeout
	// We use the same timeout duration for the initial ping.
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
