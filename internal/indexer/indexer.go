package indexer

import (
	"math"
	"sort"

	"github.com/smart8099/web-search/internal/htmlx"
)

// CrawledDocument is one page the spider fetched: its archive path and
// raw bytes. Order matters only in that it is preserved for document
// iteration; doc-id assignment and TF-IDF math do not depend on it.
type CrawledDocument struct {
	Path  string
	Bytes []byte
}

// AnchorInbox maps a crawl target to the ordered anchor-text strings
// observed pointing at it, as produced by the spider.
type AnchorInbox map[string][]string

type docState struct {
	id        string
	path      string
	tokens    []string
	positions map[string][]int
	termFreq  map[string]int
}

// Build runs two passes over a crawled corpus and its anchor inboxes,
// producing a read-only Index.
// Unparseable documents are skipped, not fatal — the spider already
// filtered unreadable entries, so a failure here means the bytes
// weren't valid HTML.
func Build(docs []CrawledDocument, anchors AnchorInbox) (*Index, error) {
	ids := newIDAssigner()

	states := make([]*docState, 0, len(docs))
	urlSet := make(map[string]struct{})
	anchorInboxCount := 0

	// Pass 1: per-document statistics and document frequency counts.
	df := make(map[string]int)
	for _, d := range docs {
		docAnchors := anchors[d.Path]
		if len(docAnchors) > 0 {
			anchorInboxCount++
		}

		tokens, positions, err := htmlx.AnalyzeDocument(d.Bytes, docAnchors)
		if err != nil {
			continue
		}

		termFreq := make(map[string]int, len(positions))
		for term, pos := range positions {
			termFreq[term] = len(pos)
			df[term]++
		}

		urls, err := htmlx.ExtractURLSet(d.Bytes, d.Path)
		if err == nil {
			for _, u := range urls {
				urlSet[u] = struct{}{}
			}
		}

		states = append(states, &docState{
			id:        ids.Assign(d.Path),
			path:      d.Path,
			tokens:    tokens,
			positions: positions,
			termFreq:  termFreq,
		})
	}

	n := len(states)
	documents := make(map[string]Document, n)
	sumLen := 0
	for _, s := range states {
		documents[s.id] = Document{
			ID:           s.id,
			Path:         s.path,
			Length:       len(s.tokens),
			UniqueTokens: len(s.positions),
		}
		sumLen += len(s.tokens)
	}

	var avgDocLength float64
	if n > 0 {
		avgDocLength = float64(sumLen) / float64(n)
	}

	// Pass 2: inverted index with positional postings and TF-IDF.
	terms := make(map[string]*PostingList, len(df))
	for _, s := range states {
		doc := documents[s.id]
		for term, tf := range s.termFreq {
			docFreq := df[term]
			tfidf := tfIDF(tf, doc.Length, docFreq, n)

			pl, ok := terms[term]
			if !ok {
				pl = &PostingList{Term: term}
				terms[term] = pl
			}
			pl.Postings = append(pl.Postings, Posting{
				DocID:     s.id,
				TF:        tf,
				Positions: append([]int(nil), s.positions[term]...),
				TFIDF:     tfidf,
			})
		}
	}

	for _, pl := range terms {
		sortPostings(pl.Postings)
	}

	return &Index{
		Documents:        documents,
		Terms:            terms,
		URLSet:           urlSet,
		N:                n,
		AvgDocLength:     avgDocLength,
		pathToID:         ids.pathToID,
		idToPath:         ids.idToPath,
		anchorInboxCount: anchorInboxCount,
	}, nil
}

// tfIDF is zero when either factor is absent, otherwise
// (tf/doclen) * ln(N/df).
func tfIDF(termFreq, docLength, docFreq, n int) float64 {
	if termFreq == 0 || docFreq == 0 || docLength == 0 {
		return 0
	}
	tf := float64(termFreq) / float64(docLength)
	idf := math.Log(float64(n) / float64(docFreq))
	return tf * idf
}

// sortPostings orders by TF-IDF descending, document-id ascending on
// ties, for every posting list.
func sortPostings(postings []Posting) {
	sort.Slice(postings, func(i, j int) bool {
		if postings[i].TFIDF != postings[j].TFIDF {
			return postings[i].TFIDF > postings[j].TFIDF
		}
		return postings[i].DocID < postings[j].DocID
	})
}
