package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const retryDelay = 5 * time.Second

// InitDBWithRetry attempts to connect to PostgreSQL with retries.
func InitDBWithRetry(maxRetries int) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < maxRetries; i++ {
		db, err = InitDB()
		if err == nil {
			return db, nil
		}
		log.Printf("Failed to connect to PostgreSQL (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err)
}

func InitDB() (*sql.DB, error) {
	dbParams := map[string]string{
		"dbname":   os.Getenv("DB_NAME"),
		"user":     os.Getenv("DB_USER"),
		"password": os.Getenv("DB_PASSWORD"),
		"host":     os.Getenv("DB_HOST"),
		"port":     os.Getenv("DB_PORT"),
		"sslmode":  os.Getenv("DB_SSL_MODE"),
	}

	// Log current connection parameters (excluding sensitive data)
	log.Printf("DB Host: %s", dbParams["host"])
	log.Printf("DB Port: %s", dbParams["port"])
	log.Printf("DB Name: %s", dbParams["dbname"])
	log.Printf("DB User: %s", dbParams["user"])

	// Use default values if environment variables are not set
	if dbParams["dbname"] == "" {
		dbParams["dbname"] = "gati"
	}
	if dbParams["user"] == "" {
		dbParams["user"] = "postgres"
	}
	if dbParams["host"] == "" {
		dbParams["host"] = "localhost"
	}
	if dbParams["port"] == "" {
		dbParams["port"] = "5432"
	}
	if dbParams["sslmode"] == "" {
		// Managed Postgres requires SSL
		if strings.Contains(dbParams["host"], "aivencloud.com") {
			dbParams["sslmode"] = "require"
		} else {
			dbParams["sslmode"] = "disable"
		}
	}

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbParams["host"], dbParams["port"], dbParams["user"],
		dbParams["password"], dbParams["dbname"], dbParams["sslmode"])

	log.Printf("Connecting to PostgreSQL with sslmode=%s", dbParams["sslmode"])

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening PostgreSQL database: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("error connecting to PostgreSQL database: %v", err)
	}

	log.Printf("Successfully connected to PostgreSQL database: %s", dbParams["dbname"])

	// Verify the raw records table exists
	var tableExists bool
	err = db.QueryRowContext(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = 'identity_updates'
        )`).Scan(&tableExists)

	if err != nil {
		return nil, fmt.Errorf("error checking identity_updates table: %v", err)
	}

	if !tableExists {
		return nil, fmt.Errorf("identity_updates table does not exist in the database")
	}

	log.Printf("Verified identity_updates table exists")
	return db, nil
}

func CheckPostgresHealth(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("PostgreSQL health check failed: %v", err)
	}
	return nil
}

func CloseDB(db *sql.DB) {
	if db != nil {
		if err := db.Close(); err != nil {
			log.Printf("Error closing PostgreSQL connection: %v", err)
		}
	}
}
