package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// DBService represents a service that interacts with a database.
type DBService struct {
	DB     *sql.DB
	logger *zap.Logger
}

// NewDBService establishes the process-wide database connection pool. It is
// constructed once in main and passed by handle into every repository.
func NewDBService(connStr string, logger *zap.Logger) (*DBService, error) {
	if connStr == "" {
		return nil, fmt.Errorf("missing DB_CONNECTION_STRING in environment variables")
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("could not open db connection: %v", err)
	}

	// Set database connection settings
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Ping the database to check connection
	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("could not connect to the database: %v", err)
	}

	return &DBService{DB: db, logger: logger}, nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *DBService) Health() map[string]string {
	stats := make(map[string]string)

	err := s.DB.Ping()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"
	return stats
}

// Close closes the database connection.
func (s *DBService) Close() error {
	s.logger.Info("closing database connection")
	return s.DB.Close()
}
