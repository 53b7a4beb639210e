package queryproc

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/smart8099/web-search/internal/indexer"
)

// Result is one ranked match.
type Result struct {
	DocID string
	Score float64
}

// topKLimit is the cutoff past which heap-based selection replaces a
// full sort.
const topKLimit = 100

// Processor evaluates plans against a built index. The index is only
// read, but every evaluation writes lastTotalCount, so a Processor is
// not safe for concurrent use.
type Processor struct {
	index *indexer.Index

	// lastTotalCount is the true match count before top-K limiting,
	// set on every evaluation path — including phrase and difference
	// plans, not just the ones that trigger heap selection.
	lastTotalCount int
}

// New wraps an index for querying.
func New(ix *indexer.Index) *Processor {
	return &Processor{index: ix}
}

// LastTotalCount returns the full match count from the most recent
// Evaluate or Run call, before any top-K trimming.
func (p *Processor) LastTotalCount() int {
	return p.lastTotalCount
}

// Evaluate parses and runs query, returning ranked results.
func (p *Processor) Evaluate(query string) []Result {
	plan := Parse(query)
	return p.Run(plan)
}

// Run executes an already-parsed plan.
func (p *Processor) Run(plan Plan) []Result {
	if plan.ExactOnly {
		return p.exactOnly(plan)
	}

	switch plan.Kind {
	case KindPhrase:
		return p.phraseSearch(plan.Terms)
	case KindOr:
		return p.orSearch(plan.Terms)
	case KindAnd:
		return p.andSearch(plan.Terms)
	case KindDifference:
		return p.differenceSearch(plan.Include, plan.Exclude)
	default:
		return p.vectorSearch(plan.Terms)
	}
}

// exactOnly implements the legacy "!term" shortcut: no scoring, just
// the set of documents containing the term.
func (p *Processor) exactOnly(plan Plan) []Result {
	if len(plan.Terms) == 0 {
		p.lastTotalCount = 0
		return nil
	}
	pl, ok := p.index.Terms[plan.Terms[0]]
	if !ok {
		p.lastTotalCount = 0
		return nil
	}
	results := make([]Result, len(pl.Postings))
	for i, posting := range pl.Postings {
		results[i] = Result{DocID: posting.DocID, Score: 0}
	}
	p.lastTotalCount = len(results)
	return results
}

func (p *Processor) orSearch(terms []string) []Result {
	best := map[string]float64{}
	order := make([]string, 0)

	for _, term := range terms {
		pl, ok := p.index.Terms[term]
		if !ok {
			continue
		}
		for _, posting := range pl.Postings {
			if _, seen := best[posting.DocID]; !seen {
				order = append(order, posting.DocID)
			}
			if posting.TFIDF > best[posting.DocID] {
				best[posting.DocID] = posting.TFIDF
			}
		}
	}

	results := make([]Result, len(order))
	for i, docID := range order {
		results[i] = Result{DocID: docID, Score: best[docID]}
	}
	return p.finish(results)
}

func (p *Processor) andSearch(terms []string) []Result {
	if len(terms) == 0 {
		return p.finish(nil)
	}

	var postingSets []map[string]float64
	for _, term := range terms {
		pl, ok := p.index.Terms[term]
		if !ok {
			// Missing term means the intersection is empty.
			return p.finish(nil)
		}
		set := make(map[string]float64, len(pl.Postings))
		for _, posting := range pl.Postings {
			set[posting.DocID] = posting.TFIDF
		}
		postingSets = append(postingSets, set)
	}

	common := intersectKeys(postingSets)

	results := make([]Result, 0, len(common))
	for _, docID := range common {
		sum := 0.0
		for _, set := range postingSets {
			sum += set[docID]
		}
		results = append(results, Result{DocID: docID, Score: sum})
	}
	return p.finish(results)
}

func (p *Processor) differenceSearch(include, exclude string) []Result {
	includeList, ok := p.index.Terms[include]
	if !ok {
		return p.finish(nil)
	}

	excludeDocs := map[string]struct{}{}
	if excludeList, ok := p.index.Terms[exclude]; ok {
		for _, posting := range excludeList.Postings {
			excludeDocs[posting.DocID] = struct{}{}
		}
	}

	results := make([]Result, 0, len(includeList.Postings))
	for _, posting := range includeList.Postings {
		if _, excluded := excludeDocs[posting.DocID]; excluded {
			continue
		}
		results = append(results, Result{DocID: posting.DocID, Score: posting.TFIDF})
	}
	return p.finish(results)
}

func (p *Processor) vectorSearch(terms []string) []Result {
	if len(terms) == 0 {
		return p.finish(nil)
	}

	queryFreq := map[string]int{}
	for _, t := range terms {
		queryFreq[t]++
	}
	var queryNormSq float64
	for _, freq := range queryFreq {
		queryNormSq += float64(freq * freq)
	}
	queryNorm := math.Sqrt(queryNormSq)
	if queryNorm == 0 {
		return p.finish(nil)
	}

	// Restricted to query terms by construction: document norm is
	// computed only over query-term weights, not the full document
	// vector.
	docVectors := map[string]map[string]float64{}
	docOrder := make([]string, 0)
	for term := range queryFreq {
		pl, ok := p.index.Terms[term]
		if !ok {
			continue
		}
		for _, posting := range pl.Postings {
			vec, exists := docVectors[posting.DocID]
			if !exists {
				vec = map[string]float64{}
				docVectors[posting.DocID] = vec
				docOrder = append(docOrder, posting.DocID)
			}
			vec[term] = posting.TFIDF
		}
	}

	results := make([]Result, 0, len(docOrder))
	for _, docID := range docOrder {
		vec := docVectors[docID]
		var dot, docNormSq float64
		for term, weight := range vec {
			dot += float64(queryFreq[term]) * weight
			docNormSq += weight * weight
		}
		if docNormSq == 0 {
			continue
		}
		score := dot / (queryNorm * math.Sqrt(docNormSq))
		if score > 0 {
			results = append(results, Result{DocID: docID, Score: score})
		}
	}
	return p.finish(results)
}

func (p *Processor) phraseSearch(terms []string) []Result {
	if len(terms) == 0 {
		return p.finish(nil)
	}

	type termPostings map[string]indexer.Posting
	postingsByTerm := make([]termPostings, len(terms))
	sets := make([]map[string]float64, 0, len(terms))

	for i, term := range terms {
		pl, ok := p.index.Terms[term]
		if !ok {
			return p.finish(nil)
		}
		tp := make(termPostings, len(pl.Postings))
		set := make(map[string]float64, len(pl.Postings))
		for _, posting := range pl.Postings {
			tp[posting.DocID] = posting
			set[posting.DocID] = posting.TFIDF
		}
		postingsByTerm[i] = tp
		sets = append(sets, set)
	}

	common := intersectKeys(sets)

	results := make([]Result, 0, len(common))
	for _, docID := range common {
		first := postingsByTerm[0][docID]
		var total float64
		matched := false

		for _, startPos := range first.Positions {
			consecutive := true
			for i := 1; i < len(terms); i++ {
				posting := postingsByTerm[i][docID]
				if !hasPosition(posting.Positions, startPos+i) {
					consecutive = false
					break
				}
			}
			if consecutive {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		for i := range terms {
			total += postingsByTerm[i][docID].TFIDF
		}
		results = append(results, Result{DocID: docID, Score: total / float64(len(terms))})
	}
	return p.finish(results)
}

// finish records the true match count, then sorts or top-K selects.
func (p *Processor) finish(results []Result) []Result {
	p.lastTotalCount = len(results)
	if len(results) > topKLimit {
		return topKByHeap(results, topKLimit)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// resultHeap is a min-heap over Score, used to keep the top K results
// while scanning in a single pass.
type resultHeap []Result

func (h resultHeap) Len() int            { return len(h) }
func (h resultHeap) Less(i, j int) bool  { return h[i].Score < h[j].Score }
func (h resultHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x interface{}) { *h = append(*h, x.(Result)) }
func (h *resultHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func topKByHeap(results []Result, k int) []Result {
	h := make(resultHeap, 0, k)
	heap.Init(&h)
	for _, r := range results {
		if h.Len() < k {
			heap.Push(&h, r)
			continue
		}
		if r.Score > h[0].Score {
			heap.Pop(&h)
			heap.Push(&h, r)
		}
	}
	out := make([]Result, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(Result)
	}
	return out
}

func intersectKeys(sets []map[string]float64) []string {
	if len(sets) == 0 {
		return nil
	}
	smallest := sets[0]
	for _, s := range sets[1:] {
		if len(s) < len(smallest) {
			smallest = s
		}
	}

	var out []string
	for k := range smallest {
		inAll := true
		for _, s := range sets {
			if _, ok := s[k]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, k)
		}
	}
	return out
}

func hasPosition(positions []int, target int) bool {
	for _, p := range positions {
		if p == target {
			return true
		}
	}
	return false
}

// Describe returns a human-readable label for a parsed query, matching
// the descriptions the presenter layer surfaces to a user.
func Describe(plan Plan) string {
	if plan.ExactOnly {
		term := ""
		if len(plan.Terms) > 0 {
			term = plan.Terms[0]
		}
		return fmt.Sprintf("Exact match for: %s", term)
	}

	switch plan.Kind {
	case KindPhrase:
		return fmt.Sprintf("Phrase search for: %q", plan.Phrase)
	case KindOr:
		return "Boolean OR search for: " + joinUpper(plan.Terms, "OR")
	case KindAnd:
		return "Boolean AND search for: " + joinUpper(plan.Terms, "AND")
	case KindDifference:
		return fmt.Sprintf("Boolean difference: %s BUT NOT %s", plan.Include, plan.Exclude)
	default:
		return "Vector space search for: " + joinUpper(plan.Terms, "")
	}
}

func joinUpper(terms []string, sep string) string {
	if sep == "" {
		sep = " "
	} else {
		sep = " " + sep + " "
	}
	out := ""
	for i, t := range terms {
		if i > 0 {
			out += sep
		}
		out += t
	}
	return out
}
