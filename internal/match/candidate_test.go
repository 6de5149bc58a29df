package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgscatalog/pgsc-match/internal/variant"
)

func score(row int, pos int64, ea, oa, accession string) *variant.Score {
	return &variant.Score{
		Row:          row,
		Chrom:        "1",
		Pos:          pos,
		EffectAllele: ea,
		OtherAllele:  oa,
		EffectWeight: 1,
		EffectType:   "additive",
		Accession:    accession,
	}
}

func tgt(id string, pos int64, ref, alt string) *variant.Target {
	return &variant.Target{Chrom: "1", Pos: pos, ID: id, Ref: ref, Alt: alt}
}

func types(cs []*Candidate) []MatchType {
	out := make([]MatchType, len(cs))
	for i, c := range cs {
		out[i] = c.Type
	}
	return out
}

func TestGenerateCandidates_Exact(t *testing.T) {
	s := score(0, 100, "A", "G", "PGS01")

	cs := GenerateCandidates([]*variant.Score{s}, []*variant.Target{tgt("v1", 100, "A", "G")}, false)
	require.Len(t, cs, 1)
	assert.Equal(t, RefAlt, cs[0].Type)
	assert.Equal(t, StrategyExact, cs[0].Strategy)
	assert.False(t, cs[0].Ambiguous)

	// Allele columns swapped
	cs = GenerateCandidates([]*variant.Score{s}, []*variant.Target{tgt("v1", 100, "G", "A")}, false)
	require.Len(t, cs, 1)
	assert.Equal(t, AltRef, cs[0].Type)
	assert.Equal(t, StrategyExact, cs[0].Strategy)
}

func TestGenerateCandidates_Flip(t *testing.T) {
	s := score(0, 100, "A", "G", "PGS01")
	targets := []*variant.Target{tgt("v1", 100, "T", "C")}

	cs := GenerateCandidates([]*variant.Score{s}, targets, false)
	require.Len(t, cs, 1)
	assert.Equal(t, RefAltFlip, cs[0].Type)
	assert.Equal(t, StrategyFlip, cs[0].Strategy)
	assert.Equal(t, "T", cs[0].EffectAllele())

	cs = GenerateCandidates([]*variant.Score{s}, targets, true)
	assert.Empty(t, cs)
}

func TestGenerateCandidates_AmbiguousComplement(t *testing.T) {
	s := score(0, 100, "A", "T", "PGS01")

	cs := GenerateCandidates([]*variant.Score{s}, []*variant.Target{tgt("v1", 100, "A", "T")}, false)
	require.Len(t, cs, 2)
	assert.Equal(t, []MatchType{RefAlt, AltRefFlip}, types(cs))
	assert.Equal(t, StrategyExact, cs[0].Strategy)
	assert.Equal(t, StrategyComplement, cs[1].Strategy)
	for _, c := range cs {
		assert.True(t, c.Ambiguous)
	}
	assert.Equal(t, "exact_ambiguous", cs[0].Label())
	assert.Equal(t, "complement", cs[1].Label())
}

func TestGenerateCandidates_NoOtherAllele(t *testing.T) {
	s := score(0, 100, "A", "", "PGS01")

	cs := GenerateCandidates([]*variant.Score{s}, []*variant.Target{tgt("v1", 100, "G", "A")}, false)
	require.Len(t, cs, 1)
	assert.Equal(t, NoOAAlt, cs[0].Type)
	assert.Equal(t, StrategyNoOA, cs[0].Strategy)

	cs = GenerateCandidates([]*variant.Score{s}, []*variant.Target{tgt("v1", 100, "T", "C")}, false)
	require.Len(t, cs, 1)
	assert.Equal(t, NoOARefFlip, cs[0].Type)
	assert.Equal(t, "T", cs[0].EffectAllele())

	cs = GenerateCandidates([]*variant.Score{s}, []*variant.Target{tgt("v1", 100, "T", "C")}, true)
	assert.Empty(t, cs)
}

func TestGenerateCandidates_PositionAndChrom(t *testing.T) {
	s := score(0, 100, "A", "G", "PGS01")
	other := &variant.Target{Chrom: "2", Pos: 100, ID: "v2", Ref: "A", Alt: "G"}
	prefixed := &variant.Target{Chrom: "chr1", Pos: 100, ID: "v3", Ref: "A", Alt: "G"}

	cs := GenerateCandidates([]*variant.Score{s}, []*variant.Target{tgt("v1", 101, "A", "G"), other, prefixed}, false)
	require.Len(t, cs, 1)
	assert.Equal(t, "v3", cs[0].Target.ID)
}

// Every target sharing position and alleles (either order) yields an exact
// candidate, and no flip candidate exists when flips are skipped.
func TestGenerateCandidates_CompletenessAndFlipSymmetry(t *testing.T) {
	alleles := []string{"A", "C", "G", "T"}
	var scores []*variant.Score
	var targets []*variant.Target
	row := 0
	for _, ea := range alleles {
		for _, oa := range alleles {
			if ea == oa {
				continue
			}
			scores = append(scores, score(row, int64(row), ea, oa, "PGS01"))
			for _, ref := range alleles {
				for _, alt := range alleles {
					if ref != alt {
						targets = append(targets, tgt("x", int64(row), ref, alt))
					}
				}
			}
			row++
		}
	}

	all := GenerateCandidates(scores, targets, false)
	exact := make(map[[2]string]bool)
	for _, c := range all {
		if c.Strategy == StrategyExact {
			exact[[2]string{c.Score.EffectAllele + c.Score.OtherAllele, c.Target.Ref + c.Target.Alt}] = true
		}
	}
	for _, s := range scores {
		assert.True(t, exact[[2]string{s.EffectAllele + s.OtherAllele, s.EffectAllele + s.OtherAllele}])
		assert.True(t, exact[[2]string{s.EffectAllele + s.OtherAllele, s.OtherAllele + s.EffectAllele}])
	}

	for _, c := range GenerateCandidates(scores, targets, true) {
		assert.False(t, c.Type.IsFlip(), "unexpected %s candidate", c.Type)
	}
}

func TestMatchType_String(t *testing.T) {
	assert.Equal(t, "refalt", RefAlt.String())
	assert.Equal(t, "no_oa_alt_flip", NoOAAltFlip.String())
	assert.Equal(t, "unknown", MatchType(99).String())
	assert.Equal(t, "no_oa_match", StrategyNoOA.String())
}
