package queryproc

import (
	"testing"

	"github.com/smart8099/web-search/internal/indexer"
)

func buildTestIndex(t *testing.T, docs []indexer.CrawledDocument, anchors indexer.AnchorInbox) *indexer.Index {
	t.Helper()
	ix, err := indexer.Build(docs, anchors)
	if err != nil {
		t.Fatalf("indexer.Build: %v", err)
	}
	return ix
}

func docID(t *testing.T, ix *indexer.Index, path string) string {
	t.Helper()
	id, ok := ix.DocumentID(path)
	if !ok {
		t.Fatalf("no doc id for %q", path)
	}
	return id
}

func resultDocIDs(results []Result) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.DocID
	}
	return ids
}

// TestScenario1CatDogBird reproduces the cat/dog/bird boolean-op scenario end to end.
func TestScenario1CatDogBird(t *testing.T) {
	ix := buildTestIndex(t, []indexer.CrawledDocument{
		{Path: "a.html", Bytes: []byte("<p>cat dog</p>")},
		{Path: "b.html", Bytes: []byte("<p>dog bird</p>")},
	}, nil)
	aID, bID := docID(t, ix, "a.html"), docID(t, ix, "b.html")
	p := New(ix)

	if got := resultDocIDs(p.Evaluate("cat")); !equalSet(got, []string{aID}) {
		t.Errorf("cat -> %v, want [%s]", got, aID)
	}

	// dog appears in both documents (DF==N==2), so IDF is zero and
	// every posting's TFIDF is zero; the vector plan discards
	// zero-score documents entirely, leaving no ranked result.
	if dogResults := p.Evaluate("dog"); len(dogResults) != 0 {
		t.Errorf("dog (vector) -> %v, want empty (DF==N yields zero score)", dogResults)
	}

	// The zero-score postings are still there — the exact-match
	// shortcut doesn't discard by score, so it surfaces both docs.
	exactDog := p.Evaluate("!dog")
	if got := resultDocIDs(exactDog); !equalSet(got, []string{aID, bID}) {
		t.Errorf("!dog -> %v, want both docs", got)
	}
	for _, r := range exactDog {
		if r.Score != 0 {
			t.Errorf("!dog result %+v should have zero score (DF==N)", r)
		}
	}

	if got := resultDocIDs(p.Evaluate("cat or bird")); !equalSet(got, []string{aID, bID}) {
		t.Errorf("cat or bird -> %v, want both docs", got)
	}

	if got := resultDocIDs(p.Evaluate("cat and dog")); !equalSet(got, []string{aID}) {
		t.Errorf("cat and dog -> %v, want [%s]", got, aID)
	}

	if got := resultDocIDs(p.Evaluate("dog but cat")); !equalSet(got, []string{bID}) {
		t.Errorf("dog but cat -> %v, want [%s]", got, bID)
	}
}

// TestScenario2Phrase reproduces the phrase round-trip scenario end to end.
func TestScenario2Phrase(t *testing.T) {
	ix := buildTestIndex(t, []indexer.CrawledDocument{
		{Path: "a.html", Bytes: []byte("<p>the quick brown fox</p>")},
	}, nil)
	aID := docID(t, ix, "a.html")
	p := New(ix)

	if got := resultDocIDs(p.Evaluate(`"quick brown"`)); !equalSet(got, []string{aID}) {
		t.Errorf(`"quick brown" -> %v, want [%s]`, got, aID)
	}
	if got := resultDocIDs(p.Evaluate(`"brown quick"`)); len(got) != 0 {
		t.Errorf(`"brown quick" -> %v, want no matches`, got)
	}
}

// TestScenario3AnchorBoost reproduces the anchor-boost scenario end to end.
func TestScenario3AnchorBoost(t *testing.T) {
	// A second document without "beta" keeps DF < N, so beta's IDF (and
	// therefore its TFIDF) is nonzero and ranking can be demonstrated.
	ix := buildTestIndex(t, []indexer.CrawledDocument{
		{Path: "a.html", Bytes: []byte("<p>alpha</p>")},
		{Path: "b.html", Bytes: []byte("<p>gamma delta</p>")},
	}, indexer.AnchorInbox{"a.html": {"beta gamma"}})
	aID := docID(t, ix, "a.html")
	p := New(ix)

	results := p.Evaluate("beta")
	if len(results) != 1 || results[0].DocID != aID {
		t.Fatalf("beta -> %v", results)
	}

	betaList := ix.Terms["beta"]
	if betaList.Postings[0].TF != 2 {
		t.Errorf("beta TF = %d, want 2", betaList.Postings[0].TF)
	}
}

// TestScenario4TopKCap reproduces the 150-document top-K cap scenario end to end.
func TestScenario4TopKCap(t *testing.T) {
	const matching = 150
	const decoys = 10 // keeps DF(foo) < N so IDF, and every TFIDF, stays nonzero.

	docs := make([]indexer.CrawledDocument, 0, matching+decoys)
	for i := 0; i < matching; i++ {
		docs = append(docs, indexer.CrawledDocument{Path: sprintfPath(i), Bytes: []byte("<p>foo</p>")})
	}
	for i := 0; i < decoys; i++ {
		docs = append(docs, indexer.CrawledDocument{Path: sprintfPath(matching + i), Bytes: []byte("<p>bar</p>")})
	}
	ix := buildTestIndex(t, docs, nil)
	p := New(ix)

	results := p.Evaluate("foo")
	if len(results) != 100 {
		t.Errorf("len(results) = %d, want 100", len(results))
	}
	if p.LastTotalCount() != matching {
		t.Errorf("LastTotalCount = %d, want %d", p.LastTotalCount(), matching)
	}
}

// TestScenario5StopWord reproduces the stop-word-only query scenario end to end.
func TestScenario5StopWord(t *testing.T) {
	ix := buildTestIndex(t, []indexer.CrawledDocument{
		{Path: "a.html", Bytes: []byte("<p>the cat</p>")},
	}, nil)
	p := New(ix)

	results := p.Evaluate("the")
	if len(results) != 0 {
		t.Errorf("stop-word query -> %v, want empty", results)
	}
	if p.LastTotalCount() != 0 {
		t.Errorf("LastTotalCount = %d, want 0", p.LastTotalCount())
	}
}

// TestScenario6UnknownTerm reproduces the unknown-term query scenario end to end.
func TestScenario6UnknownTerm(t *testing.T) {
	ix := buildTestIndex(t, []indexer.CrawledDocument{
		{Path: "a.html", Bytes: []byte("<p>cat</p>")},
	}, nil)
	p := New(ix)

	results := p.Evaluate("zzxxqq")
	if len(results) != 0 || p.LastTotalCount() != 0 {
		t.Errorf("unknown term -> results=%v total=%d, want empty/0", results, p.LastTotalCount())
	}
}

func TestEmptyQueryReturnsEmpty(t *testing.T) {
	ix := buildTestIndex(t, []indexer.CrawledDocument{
		{Path: "a.html", Bytes: []byte("<p>cat</p>")},
	}, nil)
	p := New(ix)

	if results := p.Evaluate(""); len(results) != 0 {
		t.Errorf("empty query -> %v, want empty", results)
	}
}

func sprintfPath(i int) string {
	digits := [...]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9'}
	buf := []byte{digits[(i/100)%10], digits[(i/10)%10], digits[i%10]}
	return "doc" + string(buf) + ".html"
}

func equalSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := map[string]int{}
	for _, x := range a {
		set[x]++
	}
	for _, x := range b {
		set[x]--
	}
	for _, v := range set {
		if v != 0 {
			return false
		}
	}
	return true
}
