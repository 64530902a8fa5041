// Package pgclient prepares a PostgreSQL server for a HomeBuddy deployment.
package pgclient

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/lib/pq"
)

var databaseNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Client wraps a PostgreSQL connection
type Client struct {
	db *sql.DB
}

// NewClient creates a new PostgreSQL client
func NewClient(connectionString string) (*Client, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	return &Client{db: db}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping tests the database connection
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// GetVersion retrieves the PostgreSQL version string
func (c *Client) GetVersion(ctx context.Context) (string, error) {
	var version string
	if err := c.db.QueryRowContext(ctx, "SHOW server_version").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}
	return version, nil
}

// DatabaseExists reports whether a database named name exists
func (c *Client) DatabaseExists(ctx context.Context, name string) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx, "SELECT 1 FROM pg_catalog.pg_database WHERE datname = $1", name).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to look up database %s: %w", name, err)
	}
	return true, nil
}

// EnsureDatabase creates the database unless it already exists. created
// reports whether it was created by this call.
func (c *Client) EnsureDatabase(ctx context.Context, name string) (created bool, err error) {
	if err := ValidateDatabaseName(name); err != nil {
		return false, err
	}

	exists, err := c.DatabaseExists(ctx, name)
	if err != nil || exists {
		return false, err
	}

	// CREATE DATABASE cannot take a bind parameter
	if _, err := c.db.ExecContext(ctx, CreateDatabaseStatement(name)); err != nil {
		return false, fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return true, nil
}

// ValidateDatabaseName rejects names PostgreSQL would truncate or that need quoting
func ValidateDatabaseName(name string) error {
	if !databaseNamePattern.MatchString(name) {
		return fmt.Errorf("invalid database name %q: use letters, digits and underscores, up to 63 characters", name)
	}
	return nil
}

// CreateDatabaseStatement returns the CREATE DATABASE statement for name
func CreateDatabaseStatement(name string) string {
	return "CREATE DATABASE " + pq.QuoteIdentifier(name)
}
