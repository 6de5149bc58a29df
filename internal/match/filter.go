package match

import (
	"github.com/pgscatalog/pgsc-match/internal/variant"
)

// AccessionSummary reports how many of a scoring file's variants matched.
type AccessionSummary struct {
	Dataset   string  `csv:"dataset"`
	Accession string  `csv:"accession"`
	NVariants int     `csv:"n_variants"`
	NMatched  int     `csv:"n_matched"`
	MatchRate float64 `csv:"match_rate"`
	Pass      bool    `csv:"score_pass"`
}

// FilterScores computes the match rate of every accession and keeps only the
// matches of accessions whose rate reaches minOverlap. Failing accessions stay
// in the summary. Summary order follows first appearance in scores.
func FilterScores(scores []*variant.Score, matches []*Candidate, minOverlap float64, dataset string) ([]*Candidate, []AccessionSummary) {
	index := make(map[string]int)
	var summary []AccessionSummary
	for _, s := range scores {
		i, ok := index[s.Accession]
		if !ok {
			i = len(summary)
			index[s.Accession] = i
			summary = append(summary, AccessionSummary{Dataset: dataset, Accession: s.Accession})
		}
		summary[i].NVariants++
	}

	for _, m := range matches {
		if i, ok := index[m.Score.Accession]; ok {
			summary[i].NMatched++
		}
	}

	pass := make(map[string]bool, len(summary))
	for i := range summary {
		s := &summary[i]
		s.MatchRate = float64(s.NMatched) / float64(s.NVariants)
		s.Pass = s.MatchRate >= minOverlap
		pass[s.Accession] = s.Pass
	}

	var valid []*Candidate
	for _, m := range matches {
		if pass[m.Score.Accession] {
			valid = append(valid, m)
		}
	}
	return valid, summary
}
