package match

import (
	"github.com/pgscatalog/pgsc-match/internal/variant"
)

// Strategy is the coarse way a scorefile row was paired with a target variant.
// Lower values are preferred when ranking candidates.
type Strategy int

const (
	StrategyExact      Strategy = iota // alleles equal, in either order
	StrategyFlip                       // alleles equal the opposite-strand alleles
	StrategyComplement                 // flip on an A/T or C/G pair, strand unresolvable
	StrategyNoOA                       // effect allele only, scorefile has no other allele
)

func (s Strategy) String() string {
	switch s {
	case StrategyExact:
		return "exact"
	case StrategyFlip:
		return "flip"
	case StrategyComplement:
		return "complement"
	case StrategyNoOA:
		return "no_oa_match"
	}
	return "unknown"
}

// MatchType is the detailed allele pairing. Declaration order is the
// preference order within a strategy.
type MatchType int

const (
	RefAlt MatchType = iota
	AltRef
	RefAltFlip
	AltRefFlip
	NoOARef
	NoOAAlt
	NoOARefFlip
	NoOAAltFlip
)

var matchTypeNames = [...]string{
	RefAlt:      "refalt",
	AltRef:      "altref",
	RefAltFlip:  "refalt_flip",
	AltRefFlip:  "altref_flip",
	NoOARef:     "no_oa_ref",
	NoOAAlt:     "no_oa_alt",
	NoOARefFlip: "no_oa_ref_flip",
	NoOAAltFlip: "no_oa_alt_flip",
}

func (m MatchType) String() string {
	if m < 0 || int(m) >= len(matchTypeNames) {
		return "unknown"
	}
	return matchTypeNames[m]
}

// IsFlip reports whether the scorefile alleles were complemented to match.
func (m MatchType) IsFlip() bool {
	switch m {
	case RefAltFlip, AltRefFlip, NoOARefFlip, NoOAAltFlip:
		return true
	}
	return false
}

// Status is the final outcome of a candidate or scorefile row.
type Status string

const (
	StatusMatched   Status = "matched"
	StatusExcluded  Status = "excluded"
	StatusNotBest   Status = "not_best"
	StatusUnmatched Status = "unmatched"
)

// Candidate pairs one scorefile row with one target variant.
type Candidate struct {
	Score        *variant.Score
	Target       *variant.Target
	Type         MatchType
	Strategy     Strategy
	Ambiguous    bool
	Multiallelic bool

	// Set by Label and ExcludeDuplicateIDs.
	BestMatch          bool
	Exclude            bool
	DuplicateBestMatch bool
	DuplicateID        bool

	seq int // generation order, the final tie-breaker
}

// Status returns the labelled outcome of the candidate.
func (c *Candidate) Status() Status {
	switch {
	case c.Exclude:
		return StatusExcluded
	case c.BestMatch:
		return StatusMatched
	}
	return StatusNotBest
}

// Label returns the strategy name with _ambiguous and _multiallelic suffixes
// for QC reporting.
func (c *Candidate) Label() string {
	label := c.Strategy.String()
	if c.Ambiguous && c.Strategy != StrategyComplement {
		label += "_ambiguous"
	}
	if c.Multiallelic {
		label += "_multiallelic"
	}
	return label
}

// EffectAllele returns the effect allele on the target strand, which is the
// allele a plink2 scorefile must carry.
func (c *Candidate) EffectAllele() string {
	if c.Type.IsFlip() {
		return variant.Complement(c.Score.EffectAllele)
	}
	return c.Score.EffectAllele
}

// rankLess orders candidates of one scorefile row: strategy, then match type,
// then generation order.
func rankLess(a, b *Candidate) bool {
	if a.Strategy != b.Strategy {
		return a.Strategy < b.Strategy
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.seq < b.seq
}

func sameRank(a, b *Candidate) bool {
	return a.Strategy == b.Strategy && a.Type == b.Type
}

// GenerateCandidates returns every (scorefile row, target variant, match type)
// combination whose alleles agree at a shared chromosome and position.
// Output order follows scores, then targets, then match type, so it is
// deterministic for identical input order.
func GenerateCandidates(scores []*variant.Score, targets []*variant.Target, skipFlip bool) []*Candidate {
	index := make(map[variant.Key][]*variant.Target, len(targets))
	for _, t := range targets {
		k := t.Key()
		index[k] = append(index[k], t)
	}

	var candidates []*Candidate
	for _, s := range scores {
		for _, t := range index[s.Key()] {
			for _, mt := range matchTypes(s, t, skipFlip) {
				candidates = append(candidates, newCandidate(s, t, mt, len(candidates)))
			}
		}
	}
	return candidates
}

// matchTypes tests each allele pairing of s against t.
func matchTypes(s *variant.Score, t *variant.Target, skipFlip bool) []MatchType {
	ea, oa := s.EffectAllele, s.OtherAllele
	eaFlip := variant.Complement(ea)

	var types []MatchType
	if s.HasOtherAllele() {
		oaFlip := variant.Complement(oa)
		if ea == t.Ref && oa == t.Alt {
			types = append(types, RefAlt)
		}
		if ea == t.Alt && oa == t.Ref {
			types = append(types, AltRef)
		}
		if !skipFlip {
			if eaFlip == t.Ref && oaFlip == t.Alt {
				types = append(types, RefAltFlip)
			}
			if eaFlip == t.Alt && oaFlip == t.Ref {
				types = append(types, AltRefFlip)
			}
		}
		return types
	}

	if ea == t.Ref {
		types = append(types, NoOARef)
	}
	if ea == t.Alt {
		types = append(types, NoOAAlt)
	}
	if !skipFlip {
		if eaFlip == t.Ref {
			types = append(types, NoOARefFlip)
		}
		if eaFlip == t.Alt {
			types = append(types, NoOAAltFlip)
		}
	}
	return types
}

func newCandidate(s *variant.Score, t *variant.Target, mt MatchType, seq int) *Candidate {
	c := &Candidate{
		Score:        s,
		Target:       t,
		Type:         mt,
		Ambiguous:    t.IsAmbiguous(),
		Multiallelic: t.Multiallelic,
		seq:          seq,
	}

	switch mt {
	case RefAlt, AltRef:
		c.Strategy = StrategyExact
	case RefAltFlip, AltRefFlip:
		c.Strategy = StrategyFlip
		if c.Ambiguous {
			c.Strategy = StrategyComplement
		}
	default:
		c.Strategy = StrategyNoOA
	}
	return c
}
