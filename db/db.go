package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/driftlabs/scout/models"
)

// DB wraps the database connection and provides data access methods
type DB struct {
	conn *sql.DB
}

// Config contains database configuration
type Config struct {
	DSN string // PostgreSQL connection string
}

// New creates a new database connection
func New(config Config) (*DB, error) {
	conn, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Configure connection pool
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn}

	// Run PostgreSQL migrations
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// DB returns the underlying database connection for metrics collection
func (db *DB) DB() *sql.DB {
	return db.conn
}

// SaveLink upserts a parsed link keyed by URL. Re-parsing a URL
// replaces the stored record.
func (db *DB) SaveLink(link *models.ParsedLink) error {
	jsonData, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("failed to marshal link: %w", err)
	}

	query := `
		INSERT INTO parsed_links (id, url, record, slug, source_kind, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT(url) DO UPDATE SET
			id = excluded.id,
			record = excluded.record,
			slug = excluded.slug,
			source_kind = excluded.source_kind,
			updated_at = excluded.updated_at
	`

	_, err = db.conn.Exec(
		query,
		link.ID,
		link.URL,
		string(jsonData),
		link.Slug,
		string(link.Record.SourceKind),
		link.CreatedAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save link: %w", err)
	}

	return nil
}

// GetByURL retrieves a parsed link by URL
func (db *DB) GetByURL(url string) (*models.ParsedLink, error) {
	var jsonData string
	query := "SELECT record FROM parsed_links WHERE url = $1"

	err := db.conn.QueryRow(query, url).Scan(&jsonData)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query link: %w", err)
	}

	var link models.ParsedLink
	if err := json.Unmarshal([]byte(jsonData), &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal link: %w", err)
	}

	return &link, nil
}

// GetByID retrieves a parsed link by ID
func (db *DB) GetByID(id string) (*models.ParsedLink, error) {
	var jsonData string
	query := "SELECT record FROM parsed_links WHERE id = $1"

	err := db.conn.QueryRow(query, id).Scan(&jsonData)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query link: %w", err)
	}

	var link models.ParsedLink
	if err := json.Unmarshal([]byte(jsonData), &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal link: %w", err)
	}

	return &link, nil
}

// DeleteByID deletes a parsed link by ID
func (db *DB) DeleteByID(id string) error {
	result, err := db.conn.Exec("DELETE FROM parsed_links WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("no link found with id: %s", id)
	}

	return nil
}

// List returns saved links with optional pagination
func (db *DB) List(limit, offset int) ([]*models.ParsedLink, error) {
	query := `
		SELECT record FROM parsed_links
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var results []*models.ParsedLink
	for rows.Next() {
		var jsonData string
		if err := rows.Scan(&jsonData); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		var link models.ParsedLink
		if err := json.Unmarshal([]byte(jsonData), &link); err != nil {
			return nil, fmt.Errorf("failed to unmarshal link: %w", err)
		}

		results = append(results, &link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

// Count returns the total count of saved links
func (db *DB) Count() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM parsed_links").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return count, nil
}

// URLExists checks if a URL has already been parsed and stored
func (db *DB) URLExists(url string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM parsed_links WHERE url = $1)"
	err := db.conn.QueryRow(query, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check URL existence: %w", err)
	}
	return exists, nil
}
