package indexer

import (
	"math"
	"testing"
)

func idForPath(t *testing.T, ix *Index, path string) string {
	t.Helper()
	id, ok := ix.DocumentID(path)
	if !ok {
		t.Fatalf("no document id for path %q", path)
	}
	return id
}

func TestBuildTwoDocumentCorpus(t *testing.T) {
	docs := []CrawledDocument{
		{Path: "a.html", Bytes: []byte("<p>cat dog</p>")},
		{Path: "b.html", Bytes: []byte("<p>dog bird</p>")},
	}

	ix, err := Build(docs, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if ix.N != 2 {
		t.Fatalf("N = %d, want 2", ix.N)
	}

	aID := idForPath(t, ix, "a.html")
	bID := idForPath(t, ix, "b.html")

	catList, ok := ix.Terms["cat"]
	if !ok || catList.DocumentFrequency() != 1 {
		t.Fatalf("term cat: %+v", catList)
	}
	if catList.Postings[0].DocID != aID {
		t.Errorf("cat posting doc = %s, want %s", catList.Postings[0].DocID, aID)
	}

	dogList := ix.Terms["dog"]
	if dogList.DocumentFrequency() != 2 {
		t.Fatalf("dog df = %d, want 2", dogList.DocumentFrequency())
	}
	// DF == N means IDF == 0 means TFIDF == 0 for both postings; tie
	// breaks by doc-id ascending.
	for _, p := range dogList.Postings {
		if p.TFIDF != 0 {
			t.Errorf("dog posting %+v TFIDF should be 0 (DF==N)", p)
		}
	}
	if len(dogList.Postings) != 2 {
		t.Fatalf("dog postings = %v", dogList.Postings)
	}
	first, second := dogList.Postings[0].DocID, dogList.Postings[1].DocID
	if (first < second) == false {
		t.Errorf("dog postings not doc-id ascending on tie: %s, %s", first, second)
	}
	_ = bID
}

func TestBuildAvgDocLength(t *testing.T) {
	docs := []CrawledDocument{
		{Path: "a.html", Bytes: []byte("<p>one two three</p>")},
		{Path: "b.html", Bytes: []byte("<p>four five</p>")},
	}
	ix, err := Build(docs, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	sumLen := 0
	for _, d := range ix.Documents {
		sumLen += d.Length
	}
	want := float64(sumLen) / float64(ix.N)
	if math.Abs(ix.AvgDocLength-want) > 1e-9 {
		t.Errorf("AvgDocLength = %v, want %v", ix.AvgDocLength, want)
	}
}

func TestBuildPositionsStrictlyIncreasingAndMatchTF(t *testing.T) {
	docs := []CrawledDocument{
		{Path: "a.html", Bytes: []byte("<p>quick brown quick fox quick</p>")},
	}
	ix, err := Build(docs, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	quickList := ix.Terms["quick"]
	if len(quickList.Postings) != 1 {
		t.Fatalf("postings = %v", quickList.Postings)
	}
	p := quickList.Postings[0]
	if p.TF != 3 || len(p.Positions) != 3 {
		t.Fatalf("posting = %+v", p)
	}
	for i := 1; i < len(p.Positions); i++ {
		if p.Positions[i] <= p.Positions[i-1] {
			t.Fatalf("positions not strictly increasing: %v", p.Positions)
		}
	}
}

func TestBuildAnchorBoost(t *testing.T) {
	docs := []CrawledDocument{
		{Path: "a.html", Bytes: []byte("<p>alpha</p>")},
	}
	anchors := AnchorInbox{"a.html": {"beta gamma"}}

	ix, err := Build(docs, anchors)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	betaList, ok := ix.Terms["beta"]
	if !ok {
		t.Fatal("expected term 'beta' from anchor text")
	}
	if betaList.Postings[0].TF != 2 {
		t.Errorf("beta TF = %d, want 2 (anchor doubling)", betaList.Postings[0].TF)
	}

	stats := ix.Stats()
	if stats.AnchorInboxCount != 1 {
		t.Errorf("AnchorInboxCount = %d, want 1", stats.AnchorInboxCount)
	}
}

func TestBuildDocIDStemPrefix(t *testing.T) {
	docs := []CrawledDocument{
		{Path: "dir/index.html", Bytes: []byte("<p>hello</p>")},
	}
	ix, err := Build(docs, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	id := idForPath(t, ix, "dir/index.html")
	if len(id) < len("index")+4 || id[:len("index")] != "index" {
		t.Errorf("doc id %q does not have expected stem prefix", id)
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	ix, err := Build(nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ix.N != 0 || ix.AvgDocLength != 0 {
		t.Errorf("empty build: N=%d avg=%v", ix.N, ix.AvgDocLength)
	}
}
