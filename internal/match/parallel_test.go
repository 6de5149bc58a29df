package match

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgscatalog/pgsc-match/internal/variant"
)

func makeItems(n int) <-chan WorkItem {
	ch := make(chan WorkItem, n)
	for i := range n {
		chrom := fmt.Sprintf("%d", i+1)
		ch <- WorkItem{
			Seq:   i,
			Chrom: chrom,
			Scores: []*variant.Score{{
				Row: i, Chrom: chrom, Pos: 100, EffectAllele: "A", OtherAllele: "G", Accession: "PGS01",
			}},
			Targets: []*variant.Target{{Chrom: chrom, Pos: 100, ID: chrom, Ref: "A", Alt: "G"}},
		}
	}
	close(ch)
	return ch
}

func TestParallelMatch_OrderPreservation(t *testing.T) {
	results := Engine{Threads: 8}.ParallelMatch(makeItems(200), DefaultPolicy())

	var collected []int
	err := OrderedCollect(results, func(r WorkResult) error {
		require.Len(t, r.Batch.Matches, 1)
		assert.Equal(t, r.Chrom, r.Batch.Matches[0].Target.ID)
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 200)
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestParallelMatch_SingleWorker(t *testing.T) {
	results := Engine{Threads: 1}.ParallelMatch(makeItems(50), DefaultPolicy())

	count := 0
	require.NoError(t, OrderedCollect(results, func(WorkResult) error {
		count++
		return nil
	}))
	assert.Equal(t, 50, count)
}

func TestParallelMatch_DefaultWorkers(t *testing.T) {
	results := Engine{}.ParallelMatch(makeItems(10), DefaultPolicy())

	count := 0
	require.NoError(t, OrderedCollect(results, func(WorkResult) error {
		count++
		return nil
	}))
	assert.Equal(t, 10, count)
}

func TestOrderedCollect_ErrorStopsEarly(t *testing.T) {
	results := Engine{Threads: 4}.ParallelMatch(makeItems(100), DefaultPolicy())

	stop := errors.New("stop")
	count := 0
	err := OrderedCollect(results, func(WorkResult) error {
		count++
		if count == 10 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 10, count)
}

func TestEngineMatch_ChromosomeOrder(t *testing.T) {
	var scores []*variant.Score
	var targets []*variant.Target
	for i, chrom := range []string{"X", "10", "2", "1"} {
		scores = append(scores, &variant.Score{
			Row: i, Chrom: chrom, Pos: 5, EffectAllele: "A", OtherAllele: "G", Accession: "PGS01",
		})
		targets = append(targets, &variant.Target{Chrom: "chr" + chrom, Pos: 5, ID: chrom, Ref: "A", Alt: "G"})
	}
	// Chromosome absent from the scorefile is ignored
	targets = append(targets, &variant.Target{Chrom: "3", Pos: 5, ID: "3", Ref: "A", Alt: "G"})

	batch := Engine{Threads: 3}.Match(scores, targets, DefaultPolicy())
	require.Len(t, batch.Matches, 4)

	var ids []string
	for _, m := range batch.Matches {
		ids = append(ids, m.Target.ID)
	}
	assert.Equal(t, []string{"1", "2", "10", "X"}, ids)
	assert.Len(t, batch.Candidates, 4)
}

func TestConcat(t *testing.T) {
	a := &Batch{Candidates: []*Candidate{{}, {}}, Matches: []*Candidate{{}}}
	b := &Batch{Candidates: []*Candidate{{}}}
	out := Concat([]*Batch{a, b})
	assert.Len(t, out.Candidates, 3)
	assert.Len(t, out.Matches, 1)
	assert.Empty(t, Concat(nil).Candidates)
}
