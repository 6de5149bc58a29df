package match

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/pgscatalog/pgsc-match/internal/target"
	"github.com/pgscatalog/pgsc-match/internal/variant"
)

var (
	// ErrNoTargets is returned when no target genome file was supplied.
	ErrNoTargets = errors.New("no target genomes found, check the path")
	// ErrMultipleChromosomes is returned in multi mode for a target file
	// spanning more than one chromosome.
	ErrMultipleChromosomes = errors.New("target file contains more than one chromosome")
	// ErrDuplicateChromosome is returned when a chromosome appears in more
	// than one target file.
	ErrDuplicateChromosome = errors.New("chromosome found in more than one target file")
	// ErrNoValidMatches is returned when no match survives filtering.
	ErrNoValidMatches = errors.New("no valid matches found")
	// ErrUnknownMode indicates a mode outside SingleMode, MultiMode and FastMode.
	ErrUnknownMode = errors.New("unknown match mode")
)

// Pipeline drives candidate generation, labelling and overlap filtering for
// one dataset.
type Pipeline struct {
	Dataset    string
	MinOverlap float64
	Policy     Policy
	Engine     Engine
	logger     *zap.Logger
}

// NewPipeline creates a pipeline for dataset.
func NewPipeline(dataset string, minOverlap float64, p Policy, e Engine) *Pipeline {
	return &Pipeline{
		Dataset:    dataset,
		MinOverlap: minOverlap,
		Policy:     p,
		Engine:     e,
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger for progress and diagnostic messages.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Result is the outcome of a matching run.
type Result struct {
	Dataset    string
	Mode       Mode
	Scores     []*variant.Score
	Candidates []*Candidate // every candidate, for the match log
	Valid      []*Candidate // matches of accessions passing the overlap threshold
	Accessions []AccessionSummary
	Summary    []SummaryRow
}

// LogRecords returns the full match log of the run.
func (r *Result) LogRecords() []LogRecord {
	return LogRecords(r.Dataset, r.Scores, r.Candidates, r.Accessions)
}

// Run matches scores against the target files. When no valid match remains
// it returns ErrNoValidMatches together with the non-nil Result, so callers
// can still write diagnostics.
func (p *Pipeline) Run(ctx context.Context, scores []*variant.Score, targetPaths []string, fast bool) (*Result, error) {
	mode, err := SelectMode(targetPaths, fast)
	if err != nil {
		return nil, err
	}
	p.logger.Info("matching variants",
		zap.String("dataset", p.Dataset),
		zap.Stringer("mode", mode),
		zap.Int("targets", len(targetPaths)),
		zap.String("scorefile_rows", humanize.Comma(int64(len(scores)))))

	batch, err := p.match(ctx, mode, scores)
	if err != nil {
		return nil, err
	}

	if n := ExcludeDuplicateIDs(batch.Matches); n > 0 {
		p.logger.Warn("excluded matches sharing a target ID within an accession", zap.Int("count", n))
	}

	valid, accessions := FilterScores(scores, Matched(batch.Candidates), p.MinOverlap, p.Dataset)
	res := &Result{
		Dataset:    p.Dataset,
		Mode:       mode,
		Scores:     scores,
		Candidates: batch.Candidates,
		Valid:      valid,
		Accessions: accessions,
		Summary:    Summarize(p.Dataset, scores, batch.Candidates, accessions),
	}

	for _, a := range accessions {
		fields := []zap.Field{
			zap.String("accession", a.Accession),
			zap.Int("matched", a.NMatched),
			zap.Int("variants", a.NVariants),
			zap.Float64("match_rate", a.MatchRate),
		}
		if a.Pass {
			p.logger.Info("score passed overlap threshold", fields...)
		} else {
			p.logger.Warn("score failed overlap threshold", append(fields, zap.Float64("min_overlap", p.MinOverlap))...)
		}
	}

	if len(valid) == 0 {
		return res, ErrNoValidMatches
	}
	return res, nil
}

// match reads the target files as the mode requires and returns the
// labelled candidates of every chromosome.
func (p *Pipeline) match(ctx context.Context, mode Mode, scores []*variant.Score) (*Batch, error) {
	positions := make(map[variant.Key]struct{}, len(scores))
	for _, s := range scores {
		positions[s.Key()] = struct{}{}
	}
	keep := func(k variant.Key) bool {
		_, ok := positions[k]
		return ok
	}

	switch m := mode.(type) {
	case SingleMode:
		tbl, err := p.readTarget(m.Path, keep)
		if err != nil {
			return nil, err
		}
		return p.Engine.Match(scores, tbl.Variants, p.Policy), nil

	case MultiMode:
		scoresByChrom := make(map[string][]*variant.Score)
		for _, s := range scores {
			c := variant.NormalizeChrom(s.Chrom)
			scoresByChrom[c] = append(scoresByChrom[c], s)
		}

		seen := make(map[string]string)
		batches := make([]*Batch, 0, len(m.Paths))
		for _, path := range m.Paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			tbl, err := p.readTarget(path, keep)
			if err != nil {
				return nil, err
			}

			chroms := tbl.Chromosomes()
			if len(chroms) > 1 {
				return nil, fmt.Errorf("%s: %w (%s)", path, ErrMultipleChromosomes, strings.Join(chroms, ", "))
			}
			if len(chroms) == 0 {
				p.logger.Warn("empty target file", zap.String("path", path))
				continue
			}
			if err := checkUnique(seen, path, chroms); err != nil {
				return nil, err
			}

			batches = append(batches, p.Engine.Match(scoresByChrom[chroms[0]], tbl.Variants, p.Policy))
		}
		return Concat(batches), nil

	case FastMode:
		seen := make(map[string]string)
		var targets []*variant.Target
		for _, path := range m.Paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			tbl, err := p.readTarget(path, nil)
			if err != nil {
				return nil, err
			}
			if err := checkUnique(seen, path, tbl.Chromosomes()); err != nil {
				return nil, err
			}
			targets = append(targets, tbl.Variants...)
		}
		return p.Engine.Match(scores, targets, p.Policy), nil
	}

	return nil, fmt.Errorf("%w: %v", ErrUnknownMode, mode)
}

func (p *Pipeline) readTarget(path string, keep target.KeepFunc) (*target.Table, error) {
	tbl, err := target.Read(path, keep)
	if err != nil {
		return nil, fmt.Errorf("read target genome: %w", err)
	}
	p.logger.Debug("read target genome",
		zap.String("path", path),
		zap.Stringer("format", tbl.Format),
		zap.String("rows", humanize.Comma(int64(tbl.RowsRead))),
		zap.String("kept", humanize.Comma(int64(len(tbl.Variants)))),
		zap.Strings("chromosomes", tbl.Chromosomes()))
	return tbl, nil
}

// checkUnique records the chromosomes of path in seen and fails if one was
// already contributed by another file.
func checkUnique(seen map[string]string, path string, chroms []string) error {
	for _, c := range chroms {
		if prev, ok := seen[c]; ok {
			return fmt.Errorf("chromosome %s in %s and %s: %w", c, prev, path, ErrDuplicateChromosome)
		}
		seen[c] = path
	}
	return nil
}
