package duckdb

import (
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// RecordInputs stores fingerprints of the files a dataset was matched from.
// kind is "scorefile" or "target".
func (s *Store) RecordInputs(dataset, kind string, paths []string) error {
	if _, err := s.db.Exec("DELETE FROM input_files WHERE dataset=? AND kind=?", dataset, kind); err != nil {
		return fmt.Errorf("clear input files: %w", err)
	}
	for _, p := range paths {
		fp, err := StatFile(p)
		if err != nil {
			return fmt.Errorf("stat input file: %w", err)
		}
		if _, err := s.db.Exec(`INSERT INTO input_files (dataset, kind, path, size, mod_time)
			VALUES (?, ?, ?, ?, ?)`, dataset, kind, fp.Path, fp.Size, fp.ModTime.UTC()); err != nil {
			return fmt.Errorf("insert input file %s: %w", p, err)
		}
	}
	return nil
}

// Inputs returns the recorded input fingerprints of a dataset and kind.
func (s *Store) Inputs(dataset, kind string) ([]FileFingerprint, error) {
	rows, err := s.db.Query(`SELECT path, size, mod_time FROM input_files
		WHERE dataset=? AND kind=? ORDER BY path`, dataset, kind)
	if err != nil {
		return nil, fmt.Errorf("query input files: %w", err)
	}
	defer rows.Close()

	var out []FileFingerprint
	for rows.Next() {
		var fp FileFingerprint
		if err := rows.Scan(&fp.Path, &fp.Size, &fp.ModTime); err != nil {
			return nil, fmt.Errorf("scan input file: %w", err)
		}
		out = append(out, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate input files: %w", err)
	}
	return out, nil
}
