// Package output writes plink2 scorefiles and match logs.
package output

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"

	"github.com/pgscatalog/pgsc-match/internal/match"
	"github.com/pgscatalog/pgsc-match/internal/variant"
)

// AllChromosomes labels scorefiles that are not split per chromosome.
const AllChromosomes = "ALL"

// groupKey identifies one family of output scorefiles.
type groupKey struct {
	chrom      string
	effectType string
}

// scoreRow is one output line: a target ID, the effect allele on the target
// strand and a weight per accession.
type scoreRow struct {
	id           string
	effectAllele string
	weights      map[string]float64
}

// scoreTable is one plink2 --score input file.
type scoreTable struct {
	accessions []string
	rows       []*scoreRow
}

// WriteScorefiles writes the valid matches as gzipped plink2 scorefiles named
// <dataset>_<chrom|ALL>_<effect_type>_<n>.scorefile.gz and returns their
// paths. A target ID matched with different effect alleles by different
// accessions cannot share a row, so later alleles go to files _1, _2, ...
// Files appear only if every file was written successfully.
func WriteScorefiles(outdir, dataset string, matches []*match.Candidate, split bool) ([]string, error) {
	var fs FileSet
	defer fs.Abort()

	groups, keys := groupMatches(matches, split)
	for _, k := range keys {
		for i, tbl := range splitByAllele(groups[k]) {
			name := fmt.Sprintf("%s_%s_%s_%d.scorefile.gz", dataset, k.chrom, k.effectType, i)
			f, err := fs.Create(filepath.Join(outdir, name))
			if err != nil {
				return nil, err
			}
			if err := writeGzip(f, tbl.write); err != nil {
				return nil, fmt.Errorf("write %s: %w", name, err)
			}
		}
	}

	if err := fs.Commit(); err != nil {
		return nil, err
	}
	return fs.Paths(), nil
}

// groupMatches splits matches by chromosome (when split) and effect type.
// Keys are returned in chromosome then effect type order.
func groupMatches(matches []*match.Candidate, split bool) (map[groupKey][]*match.Candidate, []groupKey) {
	groups := make(map[groupKey][]*match.Candidate)
	var keys []groupKey
	for _, m := range matches {
		k := groupKey{chrom: AllChromosomes, effectType: m.Score.EffectType}
		if split {
			k.chrom = variant.NormalizeChrom(m.Target.Chrom)
		}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], m)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].chrom != keys[j].chrom {
			return variant.ChromLess(keys[i].chrom, keys[j].chrom)
		}
		return keys[i].effectType < keys[j].effectType
	})
	return groups, keys
}

// splitByAllele builds the score tables of one group. The n-th distinct
// effect allele seen for a target ID goes to table n.
func splitByAllele(matches []*match.Candidate) []*scoreTable {
	type rowKey struct{ id, allele string }

	var tables []*scoreTable
	rows := make(map[rowKey]*scoreRow)
	alleleIndex := make(map[string][]string) // ID -> effect alleles in first-seen order
	tableAccessions := make([]map[string]bool, 0, 1)

	for _, m := range matches {
		k := rowKey{id: m.Target.ID, allele: m.EffectAllele()}
		row, ok := rows[k]
		if !ok {
			row = &scoreRow{id: k.id, effectAllele: k.allele, weights: make(map[string]float64)}
			rows[k] = row

			n := len(alleleIndex[k.id])
			alleleIndex[k.id] = append(alleleIndex[k.id], k.allele)
			for len(tables) <= n {
				tables = append(tables, &scoreTable{})
				tableAccessions = append(tableAccessions, make(map[string]bool))
			}
			tables[n].rows = append(tables[n].rows, row)
		}
		row.weights[m.Score.Accession] = m.Score.EffectWeight

		n := indexOf(alleleIndex[k.id], k.allele)
		if !tableAccessions[n][m.Score.Accession] {
			tableAccessions[n][m.Score.Accession] = true
			tables[n].accessions = append(tables[n].accessions, m.Score.Accession)
		}
	}
	return tables
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}

// write writes the table in plink2 --score layout. Accessions without a
// weight for a row get 0.
func (t *scoreTable) write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	header := append([]string{"ID", "effect_allele"}, t.accessions...)
	if _, err := bw.WriteString(strings.Join(header, "\t") + "\n"); err != nil {
		return err
	}

	values := make([]string, len(header))
	for _, r := range t.rows {
		values[0], values[1] = r.id, r.effectAllele
		for i, acc := range t.accessions {
			values[i+2] = strconv.FormatFloat(r.weights[acc], 'g', -1, 64)
		}
		if _, err := bw.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// writeGzip compresses everything fn writes to w.
func writeGzip(w io.Writer, fn func(io.Writer) error) error {
	zw := pgzip.NewWriter(w)
	if err := fn(zw); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
