package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/pgscatalog/pgsc-match/internal/match"
)

// WriteMatchLog batch-inserts match log records using the Appender API.
// Existing records of the same dataset are replaced.
func (s *Store) WriteMatchLog(dataset string, records []match.LogRecord) error {
	if _, err := s.db.Exec("DELETE FROM match_log WHERE dataset=?", dataset); err != nil {
		return fmt.Errorf("clear match log: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "match_log")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range records {
		if err := appender.AppendRow(
			r.Dataset, int64(r.Row), r.Accession, r.Chrom, r.Pos,
			r.EffectAllele, r.OtherAllele, r.EffectWeight, r.EffectType,
			r.ID, r.Ref, r.Alt, r.MatchType, r.MatchStrategy, r.MatchLabel,
			r.Ambiguous, r.Multiallelic, r.BestMatch, r.Exclude,
			r.DuplicateBestMatch, r.DuplicateID, r.MatchStatus, r.ScorePass,
		); err != nil {
			return fmt.Errorf("append match log record: %w", err)
		}
	}

	return appender.Flush()
}

// WriteSummary stores the per-accession match rates of a dataset.
func (s *Store) WriteSummary(summary []match.AccessionSummary) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, a := range summary {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO match_summary
			(dataset, accession, n_variants, n_matched, match_rate, score_pass)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.Dataset, a.Accession, a.NVariants, a.NMatched, a.MatchRate, a.Pass); err != nil {
			return fmt.Errorf("insert summary for %s: %w", a.Accession, err)
		}
	}
	return tx.Commit()
}

// LookupSummary returns the stored summary of a dataset ordered by accession.
func (s *Store) LookupSummary(dataset string) ([]match.AccessionSummary, error) {
	rows, err := s.db.Query(`SELECT
		dataset, accession, n_variants, n_matched, match_rate, score_pass
		FROM match_summary
		WHERE dataset=?
		ORDER BY accession`, dataset)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var out []match.AccessionSummary
	for rows.Next() {
		var a match.AccessionSummary
		if err := rows.Scan(&a.Dataset, &a.Accession, &a.NVariants, &a.NMatched, &a.MatchRate, &a.Pass); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary: %w", err)
	}
	return out, nil
}

// StatusCount is the number of scorefile rows of an accession with a status.
type StatusCount struct {
	Accession string
	Status    string
	Count     int
}

// CountByStatus counts distinct scorefile rows per accession and best status
// from the stored match log. A row with a matched candidate counts as
// matched, otherwise as its first recorded status.
func (s *Store) CountByStatus(dataset string) ([]StatusCount, error) {
	rows, err := s.db.Query(`SELECT accession, status, count(*) FROM (
			SELECT accession, row_nr,
				CASE WHEN bool_or(match_status = 'matched') THEN 'matched'
				     ELSE min(match_status) END AS status
			FROM match_log
			WHERE dataset=?
			GROUP BY accession, row_nr
		)
		GROUP BY accession, status
		ORDER BY accession, status`, dataset)
	if err != nil {
		return nil, fmt.Errorf("query status counts: %w", err)
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Accession, &c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return out, nil
}
