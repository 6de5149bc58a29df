package match

import (
	"github.com/pgscatalog/pgsc-match/internal/variant"
)

// SummaryRow counts scorefile rows of one accession sharing an outcome.
type SummaryRow struct {
	Dataset       string  `csv:"dataset"`
	Accession     string  `csv:"accession"`
	MatchStatus   string  `csv:"match_status"`
	Ambiguous     bool    `csv:"ambiguous"`
	Multiallelic  bool    `csv:"is_multiallelic"`
	MatchStrategy string  `csv:"match_strategy"`
	Count         int     `csv:"count"`
	Percent       float64 `csv:"percent"`
	ScorePass     bool    `csv:"score_pass"`
}

// Summarize classifies every scorefile row by its representative candidate
// (the match, else the best ranked excluded candidate) and counts rows per
// accession and outcome.
func Summarize(dataset string, scores []*variant.Score, candidates []*Candidate, accessions []AccessionSummary) []SummaryRow {
	type rowKey struct {
		accession    string
		status       Status
		ambiguous    bool
		multiallelic bool
		strategy     string
	}

	byRow := rankedByRow(candidates)
	totals := make(map[string]AccessionSummary, len(accessions))
	for _, a := range accessions {
		totals[a.Accession] = a
	}

	index := make(map[rowKey]int)
	var rows []SummaryRow
	for _, s := range scores {
		k := rowKey{accession: s.Accession, status: StatusUnmatched}
		if c := representative(byRow[s.Row]); c != nil {
			k.status = c.Status()
			if k.status == StatusNotBest {
				k.status = StatusExcluded
			}
			k.ambiguous = c.Ambiguous
			k.multiallelic = c.Multiallelic
			k.strategy = c.Strategy.String()
		}

		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, SummaryRow{
				Dataset:       dataset,
				Accession:     k.accession,
				MatchStatus:   string(k.status),
				Ambiguous:     k.ambiguous,
				Multiallelic:  k.multiallelic,
				MatchStrategy: k.strategy,
				ScorePass:     totals[k.accession].Pass,
			})
		}
		rows[i].Count++
	}

	for i := range rows {
		if n := totals[rows[i].Accession].NVariants; n > 0 {
			rows[i].Percent = 100 * float64(rows[i].Count) / float64(n)
		}
	}
	return rows
}

func representative(ranked []*Candidate) *Candidate {
	for _, c := range ranked {
		if c.Status() == StatusMatched {
			return c
		}
	}
	if len(ranked) > 0 {
		return ranked[0]
	}
	return nil
}

// LogRecord is one line of the match log: a candidate, or a scorefile row
// without any candidate.
type LogRecord struct {
	Dataset            string  `csv:"dataset"`
	Row                int     `csv:"row_nr"`
	Accession          string  `csv:"accession"`
	Chrom              string  `csv:"chr_name"`
	Pos                int64   `csv:"chr_position"`
	EffectAllele       string  `csv:"effect_allele"`
	OtherAllele        string  `csv:"other_allele"`
	EffectWeight       float64 `csv:"effect_weight"`
	EffectType         string  `csv:"effect_type"`
	ID                 string  `csv:"ID"`
	Ref                string  `csv:"REF"`
	Alt                string  `csv:"ALT"`
	MatchType          string  `csv:"match_type"`
	MatchStrategy      string  `csv:"match_strategy"`
	MatchLabel         string  `csv:"match_label"`
	Ambiguous          bool    `csv:"ambiguous"`
	Multiallelic       bool    `csv:"is_multiallelic"`
	BestMatch          bool    `csv:"best_match"`
	Exclude            bool    `csv:"exclude"`
	DuplicateBestMatch bool    `csv:"duplicate_best_match"`
	DuplicateID        bool    `csv:"duplicate_ID"`
	MatchStatus        string  `csv:"match_status"`
	ScorePass          bool    `csv:"score_pass"`
}

// LogRecords flattens the candidates into log records in scorefile order,
// each row's candidates in rank order.
func LogRecords(dataset string, scores []*variant.Score, candidates []*Candidate, accessions []AccessionSummary) []LogRecord {
	byRow := rankedByRow(candidates)
	pass := make(map[string]bool, len(accessions))
	for _, a := range accessions {
		pass[a.Accession] = a.Pass
	}

	records := make([]LogRecord, 0, len(scores)+len(candidates))
	for _, s := range scores {
		base := LogRecord{
			Dataset:      dataset,
			Row:          s.Row,
			Accession:    s.Accession,
			Chrom:        s.Chrom,
			Pos:          s.Pos,
			EffectAllele: s.EffectAllele,
			OtherAllele:  s.OtherAllele,
			EffectWeight: s.EffectWeight,
			EffectType:   s.EffectType,
			MatchStatus:  string(StatusUnmatched),
			ScorePass:    pass[s.Accession],
		}

		ranked := byRow[s.Row]
		if len(ranked) == 0 {
			records = append(records, base)
			continue
		}
		for _, c := range ranked {
			r := base
			r.ID = c.Target.ID
			r.Ref = c.Target.Ref
			r.Alt = c.Target.Alt
			r.MatchType = c.Type.String()
			r.MatchStrategy = c.Strategy.String()
			r.MatchLabel = c.Label()
			r.Ambiguous = c.Ambiguous
			r.Multiallelic = c.Multiallelic
			r.BestMatch = c.BestMatch
			r.Exclude = c.Exclude
			r.DuplicateBestMatch = c.DuplicateBestMatch
			r.DuplicateID = c.DuplicateID
			r.MatchStatus = string(c.Status())
			records = append(records, r)
		}
	}
	return records
}
