// Package duckdb stores match logs and score summaries in DuckDB so runs can
// be queried after the fact.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for match results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SetThreads sets the size of the DuckDB worker pool. Values below 1 keep
// the DuckDB default.
func (s *Store) SetThreads(n int) error {
	if n < 1 {
		return nil
	}
	if _, err := s.db.Exec(fmt.Sprintf("SET threads TO %d", n)); err != nil {
		return fmt.Errorf("set threads: %w", err)
	}
	return nil
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS match_log (
			dataset VARCHAR,
			row_nr BIGINT,
			accession VARCHAR,
			chr_name VARCHAR,
			chr_position BIGINT,
			effect_allele VARCHAR,
			other_allele VARCHAR,
			effect_weight DOUBLE,
			effect_type VARCHAR,
			id VARCHAR,
			ref VARCHAR,
			alt VARCHAR,
			match_type VARCHAR,
			match_strategy VARCHAR,
			match_label VARCHAR,
			ambiguous BOOLEAN,
			is_multiallelic BOOLEAN,
			best_match BOOLEAN,
			exclude BOOLEAN,
			duplicate_best_match BOOLEAN,
			duplicate_id BOOLEAN,
			match_status VARCHAR,
			score_pass BOOLEAN
		)`,
		`CREATE TABLE IF NOT EXISTS match_summary (
			dataset VARCHAR,
			accession VARCHAR,
			n_variants BIGINT,
			n_matched BIGINT,
			match_rate DOUBLE,
			score_pass BOOLEAN,
			PRIMARY KEY (dataset, accession)
		)`,
		`CREATE TABLE IF NOT EXISTS input_files (
			dataset VARCHAR,
			kind VARCHAR,
			path VARCHAR,
			size BIGINT,
			mod_time TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
