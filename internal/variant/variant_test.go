package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplement(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"A", "T"},
		{"T", "A"},
		{"C", "G"},
		{"G", "C"},
		{"ACGT", "TGCA"},
		{"N", "N"},
		{"", ""},
		{"<DEL>", "<DEL>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Complement(tt.in), "Complement(%q)", tt.in)
	}
}

func TestIsAmbiguousPair(t *testing.T) {
	assert.True(t, IsAmbiguousPair("A", "T"))
	assert.True(t, IsAmbiguousPair("T", "A"))
	assert.True(t, IsAmbiguousPair("C", "G"))
	assert.True(t, IsAmbiguousPair("G", "C"))
	assert.False(t, IsAmbiguousPair("A", "G"))
	assert.False(t, IsAmbiguousPair("A", "A"))
	assert.False(t, IsAmbiguousPair("AT", "TA"))
	assert.False(t, IsAmbiguousPair("A", ""))
}

func TestNormalizeAllele(t *testing.T) {
	assert.Equal(t, "", NormalizeAllele("NA"))
	assert.Equal(t, "", NormalizeAllele("."))
	assert.Equal(t, "", NormalizeAllele("  "))
	assert.Equal(t, "ACG", NormalizeAllele("acg"))
}

func TestNormalizeChrom(t *testing.T) {
	assert.Equal(t, "12", NormalizeChrom("chr12"))
	assert.Equal(t, "X", NormalizeChrom("chrX"))
	assert.Equal(t, "12", NormalizeChrom("12"))
	assert.Equal(t, "chr", NormalizeChrom("chr"))
}

func TestTarget_Flags(t *testing.T) {
	snv := &Target{Chrom: "chr1", Pos: 100, Ref: "A", Alt: "T"}
	assert.True(t, snv.IsSNV())
	assert.True(t, snv.IsAmbiguous())
	assert.Equal(t, Key{Chrom: "1", Pos: 100}, snv.Key())

	indel := &Target{Chrom: "1", Pos: 100, Ref: "AT", Alt: "A"}
	assert.False(t, indel.IsSNV())
	assert.False(t, indel.IsAmbiguous())
}

func TestScore_HasOtherAllele(t *testing.T) {
	assert.True(t, (&Score{OtherAllele: "G"}).HasOtherAllele())
	assert.False(t, (&Score{}).HasOtherAllele())
}

func TestChromLess(t *testing.T) {
	assert.True(t, ChromLess("2", "10"))
	assert.False(t, ChromLess("10", "2"))
	assert.True(t, ChromLess("22", "X"))
	assert.False(t, ChromLess("X", "22"))
	assert.True(t, ChromLess("X", "Y"))
	assert.False(t, ChromLess("1", "1"))
}
