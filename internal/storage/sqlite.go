// Package storage persists the imported product catalog and a request
// audit log in SQLite. Conversation state is deliberately not stored
// here: the session window lives in memory only.
package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chicbot/chicbot/internal/catalog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding products and interactions.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database in dataDir and runs any
// pending migrations. Pass ":memory:" as dataDir for an in-memory
// database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "chicbot.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies embedded SQL migration files that haven't run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// --- Products ---

// ImportProducts replaces the stored catalog with the given records in
// a single transaction.
func (s *Store) ImportProducts(products []catalog.Product) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning import transaction: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM products"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clearing products: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO products
		(sku, name, product_type, category, color, base_color, brand, price, url, description, available_sizes, image_urls)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		var price any
		if p.Price != nil {
			price = *p.Price
		}
		if _, err := stmt.Exec(
			p.SKU, p.Name, p.ProductType, p.Category, p.Color, p.BaseColor,
			p.Brand, price, p.URL, p.Description,
			strings.Join(p.AvailableSizes, "|"), strings.Join(p.ImageURLs, "|"),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting product %q: %w", p.Name, err)
		}
	}
	return tx.Commit()
}

// ListProducts returns the full stored catalog in insertion order.
func (s *Store) ListProducts() ([]catalog.Product, error) {
	rows, err := s.db.Query(`SELECT sku, name, product_type, category, color, base_color,
		brand, price, url, description, available_sizes, image_urls
		FROM products ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var p catalog.Product
		var price sql.NullFloat64
		var sizes, images string
		if err := rows.Scan(&p.SKU, &p.Name, &p.ProductType, &p.Category, &p.Color,
			&p.BaseColor, &p.Brand, &price, &p.URL, &p.Description, &sizes, &images); err != nil {
			return nil, err
		}
		if price.Valid {
			v := price.Float64
			p.Price = &v
		}
		p.AvailableSizes = splitPipe(sizes)
		p.ImageURLs = splitPipe(images)
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts returns the number of stored catalog records.
func (s *Store) CountProducts() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&n)
	return n, err
}

func splitPipe(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}

// --- Interactions ---

// SaveInteraction records one processed request. Status defaults to
// "completed" when empty.
func (s *Store) SaveInteraction(i Interaction) error {
	status := i.Status
	if status == "" {
		status = "completed"
	}
	_, err := s.db.Exec(`
		INSERT INTO interactions (id, created_at, session_id, original_query, query_english, detected_language, intent, status, reason, product_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.CreatedAt.UTC().Format(time.RFC3339), i.SessionID, i.OriginalQuery,
		i.QueryEnglish, i.DetectedLanguage, i.Intent, status, i.Reason, i.ProductCount,
	)
	return err
}

// ListInteractions returns the most recent interactions, newest first.
func (s *Store) ListInteractions(limit int) ([]Interaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, created_at, session_id, original_query, query_english, detected_language, intent, status, reason, product_count
		FROM interactions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var i Interaction
		var createdAt string
		if err := rows.Scan(&i.ID, &createdAt, &i.SessionID, &i.OriginalQuery,
			&i.QueryEnglish, &i.DetectedLanguage, &i.Intent, &i.Status, &i.Reason, &i.ProductCount); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at for id %s: %w", i.ID, err)
		}
		i.CreatedAt = t
		out = append(out, i)
	}
	return out, rows.Err()
}
