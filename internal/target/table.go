package target

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pgscatalog/pgsc-match/internal/variant"
)

// Table holds the variants read from one target genome file.
type Table struct {
	Path     string
	Format   Format
	Variants []*variant.Target
	RowsRead int // variants parsed, including those dropped by the filter
	chroms   map[string]struct{}
}

// KeepFunc decides whether a target variant at key is retained.
type KeepFunc func(key variant.Key) bool

// Read loads a target genome file. If keep is non-nil only variants for which
// it returns true are retained, which bounds memory to the positions a
// scorefile actually needs. Chromosomes are recorded for every parsed row.
func Read(path string, keep KeepFunc) (*Table, error) {
	p, err := NewParser(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	t := &Table{
		Path:   path,
		Format: p.Format(),
		chroms: make(map[string]struct{}),
	}
	for {
		v, err := p.Next()
		if err != nil {
			return nil, readError(path, p.LineNumber(), err)
		}
		if v == nil {
			break
		}
		t.RowsRead++

		key := v.Key()
		t.chroms[key.Chrom] = struct{}{}
		if keep != nil && !keep(key) {
			continue
		}
		t.Variants = append(t.Variants, v)
	}

	FlagMultiallelic(t.Variants)
	return t, nil
}

// Chromosomes returns the sorted, normalised chromosome names seen in the file.
func (t *Table) Chromosomes() []string {
	chroms := make([]string, 0, len(t.chroms))
	for c := range t.chroms {
		chroms = append(chroms, c)
	}
	sort.Slice(chroms, func(i, j int) bool { return variant.ChromLess(chroms[i], chroms[j]) })
	return chroms
}

// FlagMultiallelic marks every variant at a position that carries more than
// one distinct alternate allele.
func FlagMultiallelic(variants []*variant.Target) {
	alts := make(map[variant.Key]map[string]struct{})
	for _, v := range variants {
		k := v.Key()
		if alts[k] == nil {
			alts[k] = make(map[string]struct{}, 1)
		}
		alts[k][v.Alt] = struct{}{}
	}

	for _, v := range variants {
		if len(alts[v.Key()]) > 1 {
			v.Multiallelic = true
		}
	}
}

// readError adds the file and, unless err already carries it, the line.
func readError(path string, line int, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return fmt.Errorf("read %s after line %d: %w", path, line, err)
}
