package variant

import "strings"

var complementBase = map[byte]byte{
	'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C',
	'a': 't', 't': 'a', 'c': 'g', 'g': 'c',
}

// Complement returns the opposite-strand allele. Characters other than
// A, C, G and T (e.g., N or symbolic alleles) are left unchanged.
func Complement(allele string) string {
	b := []byte(allele)
	for i, c := range b {
		if comp, ok := complementBase[c]; ok {
			b[i] = comp
		}
	}
	return string(b)
}

// IsAmbiguousPair returns true if a and b are single bases that complement
// each other (A/T, T/A, C/G or G/C).
func IsAmbiguousPair(a, b string) bool {
	if len(a) != 1 || len(b) != 1 {
		return false
	}
	comp, ok := complementBase[a[0]]
	return ok && comp == b[0]
}

// NormalizeAllele upper-cases an allele and maps missing-value markers to "".
func NormalizeAllele(allele string) string {
	allele = strings.TrimSpace(allele)
	switch allele {
	case "", ".", "NA", "NaN", "nan", "None":
		return ""
	}
	return strings.ToUpper(allele)
}
