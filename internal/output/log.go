package output

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pgscatalog/pgsc-match/internal/match"
)

// WriteLog writes match log records as CSV.
func WriteLog(w io.Writer, records []match.LogRecord) error {
	return gocsv.Marshal(records, w)
}

// WriteSummary writes summary rows as CSV.
func WriteSummary(w io.Writer, rows []match.SummaryRow) error {
	return gocsv.Marshal(rows, w)
}

// WriteLogs writes <dataset>_log.csv.gz (every candidate and unmatched row)
// and <dataset>_summary.csv into outdir and returns their paths.
func WriteLogs(outdir string, res *match.Result) ([]string, error) {
	var fs FileSet
	defer fs.Abort()

	logName := res.Dataset + "_log.csv.gz"
	f, err := fs.Create(filepath.Join(outdir, logName))
	if err != nil {
		return nil, err
	}
	records := res.LogRecords()
	if err := writeGzip(f, func(w io.Writer) error { return WriteLog(w, records) }); err != nil {
		return nil, fmt.Errorf("write %s: %w", logName, err)
	}

	summaryName := res.Dataset + "_summary.csv"
	f, err = fs.Create(filepath.Join(outdir, summaryName))
	if err != nil {
		return nil, err
	}
	if err := WriteSummary(f, res.Summary); err != nil {
		return nil, fmt.Errorf("write %s: %w", summaryName, err)
	}

	if err := fs.Commit(); err != nil {
		return nil, err
	}
	return fs.Paths(), nil
}
