// Package variant defines the target genome and scorefile records shared by
// the readers and the matcher.
package variant

import "strconv"

// Target represents one variant from a target genome file (plink .bim or .pvar).
// Multiallelic pvar records are split so that Alt always holds a single allele.
type Target struct {
	Chrom        string // Chromosome name as written in the file (e.g., "1", "chr1")
	Pos          int64  // 1-based genomic position
	ID           string // Variant identifier, unique within a target file
	Ref          string // Reference allele
	Alt          string // Alternate allele
	Multiallelic bool   // More than one alternate allele recorded at Chrom:Pos
}

// IsSNV returns true if the target variant is a single nucleotide variant.
func (t *Target) IsSNV() bool {
	return len(t.Ref) == 1 && len(t.Alt) == 1
}

// IsAmbiguous returns true if the ref/alt pair is a complementary SNV pair
// (A/T or C/G) whose strand cannot be resolved from the alleles alone.
func (t *Target) IsAmbiguous() bool {
	return IsAmbiguousPair(t.Ref, t.Alt)
}

// Key returns the chromosome/position key of the target variant.
func (t *Target) Key() Key {
	return Key{Chrom: NormalizeChrom(t.Chrom), Pos: t.Pos}
}

// Score represents one (variant, accession) row of a combined scorefile.
type Score struct {
	Row          int     // 0-based row number in the combined scorefile
	Chrom        string  // Chromosome name
	Pos          int64   // 1-based genomic position
	EffectAllele string  // Allele the weight applies to
	OtherAllele  string  // Empty when the scoring file did not report one
	EffectWeight float64 // Per-allele effect weight
	EffectType   string  // additive, dominant or recessive
	Accession    string  // Scoring file identifier (e.g., PGS000001)
}

// HasOtherAllele reports whether the scorefile row carries an other allele.
func (s *Score) HasOtherAllele() bool {
	return s.OtherAllele != ""
}

// Key returns the chromosome/position key of the scorefile row.
func (s *Score) Key() Key {
	return Key{Chrom: NormalizeChrom(s.Chrom), Pos: s.Pos}
}

// Key identifies a physical position on a normalised chromosome.
type Key struct {
	Chrom string
	Pos   int64
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func NormalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}

// ChromLess orders normalised chromosome names naturally: autosomes
// numerically, then everything else lexically (X, Y, MT, contigs).
func ChromLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}
