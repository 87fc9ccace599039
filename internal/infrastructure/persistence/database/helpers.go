// Package database provides database helper functions
package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/pkg/config"
)

// LibsqlDSN builds a libsql connection string for a remote database.
func LibsqlDSN(databaseURL, authToken string) string {
	if authToken == "" {
		return databaseURL
	}
	sep := "?"
	if strings.Contains(databaseURL, "?") {
		sep = "&"
	}
	return databaseURL + sep + "authToken=" + authToken
}

// CheckLibsqlConnection opens a remote libsql database and runs SELECT 1.
func CheckLibsqlConnection(databaseURL, authToken string, logger *logging.ChanneledLogger) error {
	start := time.Now()
	logger.Storage().Debug("Testing libsql database connection", "databaseURL", databaseURL)

	db, err := sql.Open("libsql", LibsqlDSN(databaseURL, authToken))
	if err != nil {
		logger.Storage().Error("Failed to open libsql connection", "error", err.Error(), "databaseURL", databaseURL)
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer db.Close()

	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		logger.Storage().Error("libsql connection test query failed", "error", err.Error(), "databaseURL", databaseURL)
		return fmt.Errorf("connection test query failed: %w", err)
	}
	if result != 1 {
		return fmt.Errorf("unexpected query result: %d", result)
	}

	logger.Storage().Info("libsql connection test successful", "databaseURL", databaseURL, "duration", time.Since(start))
	return nil
}

// GetSlowQueryThreshold returns the configured slow query threshold
func GetSlowQueryThreshold() time.Duration {
	return config.SlowQueryThreshold
}

// CheckAndLogSlowQuery logs query on the slow query channel when duration
// exceeds the threshold. Bulk operations get three times the budget.
func CheckAndLogSlowQuery(logger *logging.ChanneledLogger, query string, duration time.Duration, documentID string) {
	threshold := GetSlowQueryThreshold()
	if strings.HasPrefix(query, "BULK_") {
		threshold *= 3
	}
	if duration > threshold {
		logger.LogSlowQuery(query, duration, documentID)
	}
}
