package match

import (
	"sort"
)

// Label reduces the candidates of each scorefile row to at most one best
// match according to p. Flags are set on the candidates in place and the
// best matches are returned in scorefile row order of first appearance.
//
// The best strategy wins, then the best match type. When several candidates
// share the winning rank the row is dropped, unless p.KeepFirstMatch keeps
// the first. Ambiguous and multiallelic candidates compete like any other
// and are excluded afterwards, so a removal policy can only drop a winner,
// never break a tie.
func Label(candidates []*Candidate, p Policy) []*Candidate {
	var matches []*Candidate
	for _, group := range groupByRow(candidates) {
		if best := labelRow(group, p); best != nil {
			matches = append(matches, best)
		}
	}
	return matches
}

// removedByPolicy reports whether p excludes c regardless of its rank.
func removedByPolicy(c *Candidate, p Policy) bool {
	return p.RemoveAmbiguous && c.Ambiguous || p.RemoveMultiallelic && c.Multiallelic
}

func labelRow(group []*Candidate, p Policy) *Candidate {
	ranked := make([]*Candidate, 0, len(group))
	for _, c := range group {
		c.BestMatch, c.Exclude, c.DuplicateBestMatch, c.DuplicateID = false, false, false, false

		// skipped flips behave as if never generated
		if p.SkipFlip && c.Type.IsFlip() {
			c.Exclude = true
			continue
		}
		c.Exclude = removedByPolicy(c, p)
		ranked = append(ranked, c)
	}
	if len(ranked) == 0 {
		return nil
	}

	sort.SliceStable(ranked, func(i, j int) bool { return rankLess(ranked[i], ranked[j]) })

	best := ranked[0]
	tied := 1
	for tied < len(ranked) && sameRank(best, ranked[tied]) {
		tied++
	}

	if tied > 1 {
		for _, c := range ranked[:tied] {
			c.DuplicateBestMatch = true
			c.Exclude = true
		}
		if !p.KeepFirstMatch {
			return nil
		}
		best.Exclude = removedByPolicy(best, p)
	}

	if best.Exclude {
		return nil
	}
	best.BestMatch = true
	return best
}

// ExcludeDuplicateIDs excludes best matches that share a target variant ID
// with another scorefile row of the same accession, since one ID can carry
// only one weight per score column. Returns the number of excluded matches.
func ExcludeDuplicateIDs(matches []*Candidate) int {
	type idKey struct{ accession, id string }

	counts := make(map[idKey]int, len(matches))
	for _, c := range matches {
		if c.Status() == StatusMatched {
			counts[idKey{c.Score.Accession, c.Target.ID}]++
		}
	}

	excluded := 0
	for _, c := range matches {
		if c.Status() != StatusMatched {
			continue
		}
		if counts[idKey{c.Score.Accession, c.Target.ID}] > 1 {
			c.DuplicateID = true
			c.Exclude = true
			excluded++
		}
	}
	return excluded
}

// Matched returns the candidates whose status is matched, preserving order.
func Matched(candidates []*Candidate) []*Candidate {
	var out []*Candidate
	for _, c := range candidates {
		if c.Status() == StatusMatched {
			out = append(out, c)
		}
	}
	return out
}

// groupByRow splits candidates by scorefile row, preserving first-seen order
// of rows and input order within each row.
func groupByRow(candidates []*Candidate) [][]*Candidate {
	index := make(map[int]int)
	var groups [][]*Candidate
	for _, c := range candidates {
		i, ok := index[c.Score.Row]
		if !ok {
			i = len(groups)
			index[c.Score.Row] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], c)
	}
	return groups
}

// rankedByRow maps each scorefile row to its candidates in rank order.
func rankedByRow(candidates []*Candidate) map[int][]*Candidate {
	byRow := make(map[int][]*Candidate)
	for _, group := range groupByRow(candidates) {
		ranked := append([]*Candidate(nil), group...)
		sort.SliceStable(ranked, func(i, j int) bool { return rankLess(ranked[i], ranked[j]) })
		byRow[group[0].Score.Row] = ranked
	}
	return byRow
}
