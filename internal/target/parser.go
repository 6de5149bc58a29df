// Package target reads target genome variant lists in plink1 .bim and
// plink2 .pvar format.
package target

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pgscatalog/pgsc-match/internal/fileio"
	"github.com/pgscatalog/pgsc-match/internal/variant"
)

// Format is a target genome file layout.
type Format int

const (
	FormatBIM Format = iota
	FormatPVAR
)

func (f Format) String() string {
	if f == FormatPVAR {
		return "pvar"
	}
	return "bim"
}

// Columns of a plink1 .bim file. The first allele column is the ALT allele.
const (
	bimChrom = iota
	bimID
	bimCM
	bimPos
	bimAlt
	bimRef
)

// pvarColumns holds the indices of the pvar columns the matcher needs.
type pvarColumns struct {
	chrom, pos, id, ref, alt int
}

// pvarMinColumns is the column count of a .pvar without QUAL, FILTER or INFO.
const pvarMinColumns = 5

// headerlessPVAR is the fixed column order of a .pvar without #CHROM line.
var headerlessPVAR = pvarColumns{chrom: 0, pos: 1, id: 2, ref: 3, alt: 4}

// Parser reads variants from a .bim or .pvar file. Plain, gzip and zstd
// input is supported.
type Parser struct {
	reader     *fileio.Reader
	format     Format
	cols       pvarColumns
	lineNumber int
	first      string // first data line consumed while detecting the format
	pending    []*variant.Target
}

// NewParser creates a new target parser for the given file.
func NewParser(path string) (*Parser, error) {
	r, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open target file: %w", err)
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

// parseHeader skips pvar "##" meta lines and detects the file format from
// the first remaining line.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.readLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}

		if strings.HasPrefix(line, "##") || line == "" {
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			p.format = FormatPVAR
			return p.parseColumnIndices(line)
		}

		// No header: six columns are a plink1 .bim, five a headerless .pvar.
		p.format = FormatBIM
		if len(strings.Fields(line)) == pvarMinColumns {
			p.format = FormatPVAR
			p.cols = headerlessPVAR
		}
		p.first = line
		return nil
	}
}

// parseColumnIndices locates the required columns in a pvar header line.
func (p *Parser) parseColumnIndices(header string) error {
	p.cols = pvarColumns{chrom: -1, pos: -1, id: -1, ref: -1, alt: -1}

	for i, col := range strings.Fields(header) {
		switch col {
		case "#CHROM":
			p.cols.chrom = i
		case "POS":
			p.cols.pos = i
		case "ID":
			p.cols.id = i
		case "REF":
			p.cols.ref = i
		case "ALT":
			p.cols.alt = i
		}
	}

	if p.cols.chrom < 0 || p.cols.pos < 0 || p.cols.id < 0 || p.cols.ref < 0 || p.cols.alt < 0 {
		return &ParseError{
			Line:    p.lineNumber,
			Message: "pvar header must contain #CHROM, POS, ID, REF and ALT",
		}
	}
	return nil
}

// readLine returns the next line without its line terminator.
func (p *Parser) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			p.lineNumber++
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	p.lineNumber++
	return strings.TrimRight(line, "\r\n"), nil
}

// Next reads the next target variant.
// Multiallelic pvar records are returned as one variant per ALT allele.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*variant.Target, error) {
	for len(p.pending) == 0 {
		var line string
		if p.first != "" {
			line, p.first = p.first, ""
		} else {
			var err error
			line, err = p.readLine()
			if err == io.EOF {
				return nil, nil
			}
			if err != nil {
				return nil, fmt.Errorf("read target line: %w", err)
			}
		}
		if line == "" {
			continue
		}

		targets, err := p.parseLine(line)
		if err != nil {
			return nil, err
		}
		p.pending = targets
	}

	t := p.pending[0]
	p.pending = p.pending[1:]
	return t, nil
}

// parseLine parses a single data line into one or more target variants.
func (p *Parser) parseLine(line string) ([]*variant.Target, error) {
	fields := strings.Fields(line)

	var chrom, pos, id, ref, alt string
	switch p.format {
	case FormatPVAR:
		if len(fields) <= max(p.cols.chrom, p.cols.pos, p.cols.id, p.cols.ref, p.cols.alt) {
			return nil, &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("expected at least %d columns, found %d", pvarMinColumns, len(fields)),
			}
		}
		chrom, pos, id = fields[p.cols.chrom], fields[p.cols.pos], fields[p.cols.id]
		ref, alt = fields[p.cols.ref], fields[p.cols.alt]
	default:
		if len(fields) != 6 {
			return nil, &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("expected 6 bim columns, found %d", len(fields)),
			}
		}
		chrom, pos, id = fields[bimChrom], fields[bimPos], fields[bimID]
		ref, alt = fields[bimRef], fields[bimAlt]
	}

	position, err := strconv.ParseInt(pos, 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", pos),
		}
	}

	alts := strings.Split(alt, ",")
	multiallelic := len(alts) > 1
	targets := make([]*variant.Target, len(alts))
	for i, a := range alts {
		targets[i] = &variant.Target{
			Chrom:        chrom,
			Pos:          position,
			ID:           id,
			Ref:          strings.ToUpper(ref),
			Alt:          strings.ToUpper(a),
			Multiallelic: multiallelic,
		}
	}
	return targets, nil
}

// Format returns the detected file format.
func (p *Parser) Format() Format {
	return p.format
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

// ParseError represents an error during target parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("target parse error at line %d: %s", e.Line, e.Message)
}
