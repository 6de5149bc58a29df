package match

import (
	"sort"
	"sync"

	"github.com/pgscatalog/pgsc-match/internal/variant"
)

// WorkItem holds the scorefile rows and target variants of one chromosome.
type WorkItem struct {
	Seq     int
	Chrom   string
	Scores  []*variant.Score
	Targets []*variant.Target
}

// WorkResult holds the labelled candidates of one chromosome.
type WorkResult struct {
	Seq   int
	Chrom string
	Batch *Batch
}

// Batch is the labelled output of one unit of matching work.
type Batch struct {
	Candidates []*Candidate // every candidate, flags set
	Matches    []*Candidate // best match per scorefile row
}

// Concat joins batches in order into a single batch.
func Concat(batches []*Batch) *Batch {
	var nc, nm int
	for _, b := range batches {
		nc += len(b.Candidates)
		nm += len(b.Matches)
	}

	out := &Batch{
		Candidates: make([]*Candidate, 0, nc),
		Matches:    make([]*Candidate, 0, nm),
	}
	for _, b := range batches {
		out.Candidates = append(out.Candidates, b.Candidates...)
		out.Matches = append(out.Matches, b.Matches...)
	}
	return out
}

// MatchBatch generates and labels the candidates of one unit of work.
func MatchBatch(scores []*variant.Score, targets []*variant.Target, p Policy) *Batch {
	candidates := GenerateCandidates(scores, targets, p.SkipFlip)
	return &Batch{
		Candidates: candidates,
		Matches:    Label(candidates, p),
	}
}

// ParallelMatch matches work items using a pool of e.Threads workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
func (e Engine) ParallelMatch(items <-chan WorkItem, p Policy) <-chan WorkResult {
	workers := e.workers()
	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				results <- WorkResult{
					Seq:   item.Seq,
					Chrom: item.Chrom,
					Batch: MatchBatch(item.Scores, item.Targets, p),
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// Match partitions scores and targets by chromosome, matches the chromosomes
// concurrently and concatenates the results in chromosome order.
func (e Engine) Match(scores []*variant.Score, targets []*variant.Target, p Policy) *Batch {
	scoresByChrom := make(map[string][]*variant.Score)
	for _, s := range scores {
		c := variant.NormalizeChrom(s.Chrom)
		scoresByChrom[c] = append(scoresByChrom[c], s)
	}
	targetsByChrom := make(map[string][]*variant.Target)
	for _, t := range targets {
		c := variant.NormalizeChrom(t.Chrom)
		if _, ok := scoresByChrom[c]; ok {
			targetsByChrom[c] = append(targetsByChrom[c], t)
		}
	}

	chroms := make([]string, 0, len(targetsByChrom))
	for c := range targetsByChrom {
		chroms = append(chroms, c)
	}
	sort.Slice(chroms, func(i, j int) bool { return variant.ChromLess(chroms[i], chroms[j]) })

	items := make(chan WorkItem, len(chroms))
	for i, c := range chroms {
		items <- WorkItem{Seq: i, Chrom: c, Scores: scoresByChrom[c], Targets: targetsByChrom[c]}
	}
	close(items)

	batches := make([]*Batch, 0, len(chroms))
	OrderedCollect(e.ParallelMatch(items, p), func(r WorkResult) error {
		batches = append(batches, r.Batch)
		return nil
	})
	return Concat(batches)
}
