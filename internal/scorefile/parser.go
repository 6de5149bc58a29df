// Package scorefile reads combined long-format scoring files: one row per
// (variant, accession) pair.
package scorefile

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pgscatalog/pgsc-match/internal/fileio"
	"github.com/pgscatalog/pgsc-match/internal/variant"
)

// Combined scorefile column names
const (
	ColChromosome   = "chr_name"
	ColPosition     = "chr_position"
	ColEffectAllele = "effect_allele"
	ColOtherAllele  = "other_allele"
	ColEffectWeight = "effect_weight"
	ColEffectType   = "effect_type"
	ColAccession    = "accession"
)

// DefaultEffectType is used when the scorefile has no effect_type column.
const DefaultEffectType = "additive"

// ColumnIndices holds the indices of the combined scorefile columns.
type ColumnIndices struct {
	Chromosome   int
	Position     int
	EffectAllele int
	OtherAllele  int
	EffectWeight int
	EffectType   int
	Accession    int
}

// Parser reads rows from a combined scorefile.
type Parser struct {
	reader     *fileio.Reader
	lineNumber int
	row        int
	columns    ColumnIndices
}

// NewParser creates a new scorefile parser for the given file.
// Supports both plain and gzipped files.
func NewParser(path string) (*Parser, error) {
	r, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scorefile: %w", err)
	}

	return newParser(r)
}

// newParserFromReader creates a parser from an in-memory or piped source.
func newParserFromReader(src io.Reader) (*Parser, error) {
	r, err := fileio.NewReader(src)
	if err != nil {
		return nil, err
	}
	return newParser(r)
}

func newParser(r *fileio.Reader) (*Parser, error) {
	p := &Parser{reader: r}
	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// parseHeader skips comment lines and reads the header line.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return &ParseError{
					Line:    p.lineNumber,
					Message: "no header line found",
				}
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		return p.parseColumnIndices(line)
	}
}

// parseColumnIndices parses the header line to find column indices.
func (p *Parser) parseColumnIndices(headerLine string) error {
	p.columns = ColumnIndices{
		Chromosome:   -1,
		Position:     -1,
		EffectAllele: -1,
		OtherAllele:  -1,
		EffectWeight: -1,
		EffectType:   -1,
		Accession:    -1,
	}

	for i, col := range strings.Split(headerLine, "\t") {
		switch strings.TrimSpace(col) {
		case ColChromosome:
			p.columns.Chromosome = i
		case ColPosition:
			p.columns.Position = i
		case ColEffectAllele:
			p.columns.EffectAllele = i
		case ColOtherAllele:
			p.columns.OtherAllele = i
		case ColEffectWeight:
			p.columns.EffectWeight = i
		case ColEffectType:
			p.columns.EffectType = i
		case ColAccession:
			p.columns.Accession = i
		}
	}

	var missing []string
	for _, c := range []struct {
		name string
		idx  int
	}{
		{ColChromosome, p.columns.Chromosome},
		{ColPosition, p.columns.Position},
		{ColEffectAllele, p.columns.EffectAllele},
		{ColEffectWeight, p.columns.EffectWeight},
		{ColAccession, p.columns.Accession},
	} {
		if c.idx < 0 {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}

// Next reads the next scorefile row.
// Returns nil, nil when there are no more rows.
func (p *Parser) Next() (*variant.Score, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read scorefile line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		return p.parseLine(line)
	}
}

// parseLine parses a single data line into a Score.
func (p *Parser) parseLine(line string) (*variant.Score, error) {
	fields := strings.Split(line, "\t")

	get := func(idx int) string {
		if idx >= 0 && idx < len(fields) {
			return strings.TrimSpace(fields[idx])
		}
		return ""
	}

	pos, err := strconv.ParseInt(get(p.columns.Position), 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %q", get(p.columns.Position)),
		}
	}

	weight, err := strconv.ParseFloat(get(p.columns.EffectWeight), 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid effect weight: %q", get(p.columns.EffectWeight)),
		}
	}

	effectAllele := variant.NormalizeAllele(get(p.columns.EffectAllele))
	if effectAllele == "" {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: "missing effect allele",
		}
	}

	accession := get(p.columns.Accession)
	if accession == "" {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: "missing accession",
		}
	}

	effectType := get(p.columns.EffectType)
	if effectType == "" {
		effectType = DefaultEffectType
	}

	s := &variant.Score{
		Row:          p.row,
		Chrom:        get(p.columns.Chromosome),
		Pos:          pos,
		EffectAllele: effectAllele,
		OtherAllele:  variant.NormalizeAllele(get(p.columns.OtherAllele)),
		EffectWeight: weight,
		EffectType:   effectType,
		Accession:    accession,
	}
	p.row++
	return s, nil
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.reader != nil {
		return p.reader.Close()
	}
	return nil
}

// ReadAll reads every row of a combined scorefile.
func ReadAll(path string) ([]*variant.Score, error) {
	p, err := NewParser(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return readAll(p, path)
}

func readAll(p *Parser, name string) ([]*variant.Score, error) {
	var scores []*variant.Score
	for {
		s, err := p.Next()
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
			return nil, fmt.Errorf("read %s after line %d: %w", name, p.LineNumber(), err)
		}
		if s == nil {
			return scores, nil
		}
		scores = append(scores, s)
	}
}

// ParseError represents an error during scorefile parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("scorefile parse error at line %d: %s", e.Line, e.Message)
}
