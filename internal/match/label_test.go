package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgscatalog/pgsc-match/internal/variant"
)

func labelOne(t *testing.T, s *variant.Score, targets []*variant.Target, p Policy) ([]*Candidate, []*Candidate) {
	t.Helper()
	cs := GenerateCandidates([]*variant.Score{s}, targets, p.SkipFlip)
	return cs, Label(cs, p)
}

func TestLabel_Exact(t *testing.T) {
	_, matches := labelOne(t, score(0, 100, "A", "G", "PGS01"),
		[]*variant.Target{tgt("v1", 100, "A", "G")}, DefaultPolicy())

	require.Len(t, matches, 1)
	assert.Equal(t, StrategyExact, matches[0].Strategy)
	assert.Equal(t, StatusMatched, matches[0].Status())
}

func TestLabel_Flip(t *testing.T) {
	s := score(0, 100, "A", "G", "PGS01")
	targets := []*variant.Target{tgt("v1", 100, "T", "C")}

	_, matches := labelOne(t, s, targets, DefaultPolicy())
	require.Len(t, matches, 1)
	assert.Equal(t, StrategyFlip, matches[0].Strategy)

	p := DefaultPolicy()
	p.SkipFlip = true
	_, matches = labelOne(t, s, targets, p)
	assert.Empty(t, matches)
}

func TestLabel_SkipFlipExcludesGeneratedFlips(t *testing.T) {
	cs := GenerateCandidates([]*variant.Score{score(0, 100, "A", "G", "PGS01")},
		[]*variant.Target{tgt("v1", 100, "T", "C")}, false)
	require.Len(t, cs, 1)

	p := DefaultPolicy()
	p.SkipFlip = true
	assert.Empty(t, Label(cs, p))
	assert.True(t, cs[0].Exclude)
}

func TestLabel_Ambiguous(t *testing.T) {
	s := score(0, 100, "A", "T", "PGS01")
	targets := []*variant.Target{tgt("v1", 100, "A", "T")}

	cs, matches := labelOne(t, s, targets, DefaultPolicy())
	assert.Empty(t, matches)
	for _, c := range cs {
		assert.Equal(t, StatusExcluded, c.Status())
	}

	p := DefaultPolicy()
	p.RemoveAmbiguous = false
	cs, matches = labelOne(t, s, targets, p)
	require.Len(t, matches, 1)
	assert.Equal(t, RefAlt, matches[0].Type)
	assert.True(t, matches[0].Ambiguous)
	assert.Equal(t, StatusNotBest, cs[1].Status())
}

func TestLabel_AmbiguousCandidateStillTies(t *testing.T) {
	// Both rows match on the effect allele only; the A/T row is ambiguous.
	s := score(0, 100, "A", "", "PGS01")
	targets := []*variant.Target{
		tgt("v1", 100, "A", "T"),
		tgt("v2", 100, "A", "G"),
	}

	cs, matches := labelOne(t, s, targets, DefaultPolicy())
	assert.Empty(t, matches)
	for _, c := range cs {
		assert.True(t, c.DuplicateBestMatch)
		assert.Equal(t, StatusExcluded, c.Status())
	}

	p := DefaultPolicy()
	p.RemoveAmbiguous = false
	_, matches = labelOne(t, s, targets, p)
	assert.Empty(t, matches)

	// the first of the tie is ambiguous, so removing ambiguous matches drops it
	p = DefaultPolicy()
	p.KeepFirstMatch = true
	cs, matches = labelOne(t, s, targets, p)
	assert.Empty(t, matches)
	assert.False(t, cs[1].BestMatch)

	p.RemoveAmbiguous = false
	_, matches = labelOne(t, s, targets, p)
	require.Len(t, matches, 1)
	assert.Equal(t, "v1", matches[0].Target.ID)
}

func TestLabel_Multiallelic(t *testing.T) {
	s := score(0, 100, "A", "G", "PGS01")
	v1 := tgt("v1", 100, "A", "G")
	v1.Multiallelic = true
	v2 := tgt("v1", 100, "A", "C")
	v2.Multiallelic = true

	_, matches := labelOne(t, s, []*variant.Target{v1, v2}, DefaultPolicy())
	assert.Empty(t, matches)

	p := DefaultPolicy()
	p.RemoveMultiallelic = false
	_, matches = labelOne(t, s, []*variant.Target{v1, v2}, p)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Multiallelic)
	assert.Equal(t, "exact_multiallelic", matches[0].Label())
}

func TestLabel_DuplicateTargets(t *testing.T) {
	s := score(0, 100, "A", "G", "PGS01")
	targets := []*variant.Target{
		tgt("first", 100, "A", "G"),
		tgt("second", 100, "A", "G"),
	}

	cs, matches := labelOne(t, s, targets, DefaultPolicy())
	assert.Empty(t, matches)
	for _, c := range cs {
		assert.True(t, c.DuplicateBestMatch)
		assert.Equal(t, StatusExcluded, c.Status())
	}

	p := DefaultPolicy()
	p.KeepFirstMatch = true
	cs, matches = labelOne(t, s, targets, p)
	require.Len(t, matches, 1)
	assert.Equal(t, "first", matches[0].Target.ID)
	assert.Equal(t, StatusExcluded, cs[1].Status())
}

func TestLabel_PrefersBetterStrategy(t *testing.T) {
	s := score(0, 100, "A", "G", "PGS01")
	targets := []*variant.Target{
		tgt("flip", 100, "T", "C"),
		tgt("altref", 100, "G", "A"),
		tgt("refalt", 100, "A", "G"),
	}

	cs, matches := labelOne(t, s, targets, DefaultPolicy())
	require.Len(t, matches, 1)
	assert.Equal(t, "refalt", matches[0].Target.ID)

	notBest := 0
	for _, c := range cs {
		if c.Status() == StatusNotBest {
			notBest++
		}
	}
	assert.Equal(t, 2, notBest)
}

func TestLabel_Idempotent(t *testing.T) {
	cs := GenerateCandidates([]*variant.Score{score(0, 100, "A", "G", "PGS01")},
		[]*variant.Target{tgt("a", 100, "A", "G"), tgt("b", 100, "A", "G")}, false)

	assert.Empty(t, Label(cs, DefaultPolicy()))
	p := DefaultPolicy()
	p.KeepFirstMatch = true
	assert.Len(t, Label(cs, p), 1)
	assert.Empty(t, Label(cs, DefaultPolicy()))
}

// Removing ambiguous or multiallelic candidates never adds matches, and no
// scorefile row gets more than one match.
func TestLabel_PolicyMonotonicity(t *testing.T) {
	var scores []*variant.Score
	var targets []*variant.Target
	alleles := []string{"A", "C", "G", "T"}
	row := 0
	for i, ea := range alleles {
		for j, oa := range alleles {
			if i == j {
				continue
			}
			pos := int64(row)
			scores = append(scores, score(row, pos, ea, oa, "PGS01"))
			targets = append(targets,
				tgt("a", pos, alleles[(i+1)%4], alleles[(j+1)%4]),
				tgt("b", pos, ea, oa),
				tgt("c", pos, variant.Complement(oa), variant.Complement(ea)),
			)
			if row%3 == 0 {
				targets[len(targets)-1].Multiallelic = true
			}
			row++
		}
	}

	count := func(p Policy) int {
		matches := Label(GenerateCandidates(scores, targets, p.SkipFlip), p)
		seen := make(map[int]bool)
		for _, m := range matches {
			assert.False(t, seen[m.Score.Row], "row %d matched twice", m.Score.Row)
			seen[m.Score.Row] = true
		}
		return len(matches)
	}

	for _, keepFirst := range []bool{true, false} {
		keepAll := Policy{KeepFirstMatch: keepFirst}
		for _, strict := range []Policy{
			{RemoveAmbiguous: true, KeepFirstMatch: keepFirst},
			{RemoveMultiallelic: true, KeepFirstMatch: keepFirst},
			{RemoveAmbiguous: true, RemoveMultiallelic: true, KeepFirstMatch: keepFirst},
		} {
			assert.LessOrEqual(t, count(strict), count(keepAll))
		}
	}
}

func TestLabel_PolicyMonotonicityMultiallelicNoOtherAllele(t *testing.T) {
	// pvar row "1 100 rs1 A G,T" split into two multiallelic targets
	ag := tgt("rs1", 100, "A", "G")
	at := tgt("rs1", 100, "A", "T")
	ag.Multiallelic, at.Multiallelic = true, true
	targets := []*variant.Target{ag, at}
	s := score(0, 100, "A", "", "PGS01")

	count := func(p Policy) int {
		_, matches := labelOne(t, s, targets, p)
		return len(matches)
	}

	for _, keepFirst := range []bool{true, false} {
		loose := Policy{KeepFirstMatch: keepFirst}
		for _, strict := range []Policy{
			{RemoveAmbiguous: true, KeepFirstMatch: keepFirst},
			{RemoveMultiallelic: true, KeepFirstMatch: keepFirst},
		} {
			assert.LessOrEqual(t, count(strict), count(loose), "%+v", strict)
		}
	}
	assert.Equal(t, 0, count(Policy{RemoveAmbiguous: true}))
	assert.Equal(t, 0, count(Policy{}))
}

func TestExcludeDuplicateIDs(t *testing.T) {
	s1 := score(0, 100, "A", "G", "PGS01")
	s2 := score(1, 100, "G", "A", "PGS01")
	s3 := score(2, 100, "A", "G", "PGS02")
	targets := []*variant.Target{tgt("v1", 100, "A", "G")}

	cs := GenerateCandidates([]*variant.Score{s1, s2, s3}, targets, false)
	matches := Label(cs, DefaultPolicy())
	require.Len(t, matches, 3)

	assert.Equal(t, 2, ExcludeDuplicateIDs(matches))
	assert.True(t, matches[0].DuplicateID)
	assert.True(t, matches[1].DuplicateID)
	assert.False(t, matches[2].DuplicateID)

	remaining := Matched(cs)
	require.Len(t, remaining, 1)
	assert.Equal(t, "PGS02", remaining[0].Score.Accession)
}
