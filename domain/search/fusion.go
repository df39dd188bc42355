package search

import "sort"

// defaultRRFConstant is the reciprocal-rank-fusion constant k from spec
// scenario S4: with three lists of three documents in rotated order, a k
// of 60 makes every document's fused score equal, forcing the tie-break
// rule in Fuse to be exercised rather than the RRF score itself.
const defaultRRFConstant = 60.0

// Fusion merges several independently ranked result lists (BM25 keyword
// hits, code-vector hits, text-vector hits) into a single ranking using
// Reciprocal Rank Fusion: a document's fused score is the sum, across every
// list it appears in, of 1/(k+rank) using 1-based rank.
type Fusion struct {
	k float64
}

// NewFusion builds a Fusion using the default RRF constant.
func NewFusion() Fusion {
	return Fusion{k: defaultRRFConstant}
}

// NewFusionWithK builds a Fusion with a caller-supplied constant, falling
// back to the default for non-positive values rather than dividing by a
// degenerate k.
func NewFusionWithK(k float64) Fusion {
	if k <= 0 {
		k = defaultRRFConstant
	}
	return Fusion{k: k}
}

// K reports the RRF constant in effect.
func (f Fusion) K() float64 { return f.k }

// fusionAccumulator tracks a single document's running fused score and the
// per-list original scores contributing to it, plus the order in which it
// was first observed so ties have a deterministic, insertion-order fallback
// even before the (score, id) tie-break is applied.
type fusionAccumulator struct {
	id          string
	rrf         float64
	perList     []float64
	firstListAt int
}

// Fuse combines ranked lists into one, ordered by fused score descending.
// Each list is assumed already sorted best-first; rank within a list is
// 1-based, so the top hit of every list contributes 1/(k+1).
func (f Fusion) Fuse(lists ...[]FusionRequest) []FusionResult {
	if len(lists) == 0 {
		return []FusionResult{}
	}

	order := make([]string, 0)
	acc := make(map[string]*fusionAccumulator)

	for listIdx, list := range lists {
		for i, req := range list {
			rank := i + 1 // spec: rank is 1-based
			id := req.ID()

			a, seen := acc[id]
			if !seen {
				a = &fusionAccumulator{
					id:          id,
					perList:     make([]float64, len(lists)),
					firstListAt: listIdx,
				}
				acc[id] = a
				order = append(order, id)
			}
			a.rrf += 1.0 / (f.k + float64(rank))
			a.perList[listIdx] = req.Score()
		}
	}

	results := make([]FusionResult, 0, len(order))
	sumOriginal := make(map[string]float64, len(order))
	for _, id := range order {
		a := acc[id]
		results = append(results, NewFusionResult(id, a.rrf, a.perList))
		var sum float64
		for _, s := range a.perList {
			sum += s
		}
		sumOriginal[id] = sum
	}

	sort.SliceStable(results, func(i, j int) bool {
		ri, rj := results[i], results[j]
		if ri.Score() != rj.Score() {
			return ri.Score() > rj.Score()
		}
		// Tie-break 1: prefer the document with the stronger combined
		// signal across whichever lists contributed (decision D2, a
		// list-agnostic stand-in for "BM25 score desc" when the caller
		// hasn't tagged which list is BM25).
		si, sj := sumOriginal[ri.ID()], sumOriginal[rj.ID()]
		if si != sj {
			return si > sj
		}
		// Tie-break 2: document id ascending, for full determinism.
		return ri.ID() < rj.ID()
	})

	return results
}

// FuseTopK fuses lists and truncates to the top k results.
func (f Fusion) FuseTopK(k int, lists ...[]FusionRequest) []FusionResult {
	results := f.Fuse(lists...)
	if k <= 0 || k >= len(results) {
		return results
	}
	return results[:k]
}
