// Package search is the programmatic surface exposed to external
// presenters: build an Engine from an archive and seed, run queries
// against it, and read back document metadata and index statistics.
// Everything below this package is an implementation detail; a CLI or
// any other collaborator only needs this API.
package search

import (
	"fmt"
	"time"

	"github.com/pbnjay/memory"

	"github.com/smart8099/web-search/internal/archive"
	"github.com/smart8099/web-search/internal/cache"
	"github.com/smart8099/web-search/internal/crawlspider"
	"github.com/smart8099/web-search/internal/indexer"
	"github.com/smart8099/web-search/internal/queryproc"
	"github.com/smart8099/web-search/internal/telemetry"
)

// Result is one ranked match returned to a caller.
type Result struct {
	DocID string
	Path  string
	Score float64
}

// Stats is the snapshot returned by Engine.Stats.
type Stats struct {
	FileCount        int
	VocabularySize   int
	URLCount         int
	AvgDocLength     float64
	AnchorInboxCount int
	SystemFreeBytes  uint64
}

// Engine is a built, query-ready index plus its supporting cache and
// telemetry log.
type Engine struct {
	index   *indexer.Index
	queries *queryproc.Processor
	cache   *cache.QueryCache
	log     *telemetry.Log
	anchors map[string][]string
}

// Options configures Build.
type Options struct {
	MaxPages     int
	CrawlWorkers int
	QueryCache   cache.Config
	TelemetryDSN string
}

// Build opens the archive at archivePath, crawls it from seedPath, and
// indexes the result.
func Build(archivePath, seedPath string, opts Options) (*Engine, error) {
	log, err := telemetry.Open(opts.TelemetryDSN)
	if err != nil {
		return nil, fmt.Errorf("search: open telemetry: %w", err)
	}

	jobID, _ := log.StartCrawlJob(seedPath)

	r, err := archive.Open(archivePath)
	if err != nil {
		_ = log.FinishCrawlJob(jobID, 0, err)
		return nil, fmt.Errorf("search: open archive: %w", err)
	}
	defer r.Close()

	crawled, err := crawlspider.Crawl(r, seedPath, crawlspider.Options{
		Workers:  opts.CrawlWorkers,
		MaxPages: opts.MaxPages,
	})
	if err != nil {
		_ = log.FinishCrawlJob(jobID, 0, err)
		return nil, fmt.Errorf("search: crawl: %w", err)
	}

	docs := make([]indexer.CrawledDocument, len(crawled.Documents))
	for i, d := range crawled.Documents {
		docs[i] = indexer.CrawledDocument{Path: d.Path, Bytes: d.Bytes}
	}

	ix, err := indexer.Build(docs, crawled.Anchors)
	if err != nil {
		_ = log.FinishCrawlJob(jobID, 0, err)
		return nil, fmt.Errorf("search: build index: %w", err)
	}
	_ = log.FinishCrawlJob(jobID, crawled.Stats.Fetched, nil)

	qc := opts.QueryCache
	if qc.L1MaxItems == 0 {
		qc = cache.DefaultConfig()
	}

	return &Engine{
		index:   ix,
		queries: queryproc.New(ix),
		cache:   cache.New(qc),
		log:     log,
		anchors: crawled.Anchors,
	}, nil
}

// Query parses and evaluates query, returning ranked results, the true
// match count before top-K trimming, and a human-readable description
// of which plan was used.
func (e *Engine) Query(query string) (results []Result, totalCount int, description string) {
	start := time.Now()
	plan := queryproc.Parse(query)
	description = queryproc.Describe(plan)

	if cached, ok := e.cache.GetQueryResult(query); ok {
		if cr, ok := cached.(cachedQuery); ok {
			return cr.Results, cr.TotalCount, description
		}
	}

	raw := e.queries.Run(plan)
	totalCount = e.queries.LastTotalCount()

	results = make([]Result, len(raw))
	for i, r := range raw {
		path, _ := e.index.DocumentPath(r.DocID)
		results[i] = Result{DocID: r.DocID, Path: path, Score: r.Score}
	}

	e.cache.SetQueryResult(query, cachedQuery{Results: results, TotalCount: totalCount})

	if e.log != nil {
		_ = e.log.RecordQuery(telemetry.SearchQuery{
			Query:      query,
			Kind:       description,
			ResultsLen: len(results),
			TotalCount: totalCount,
			DurationMS: time.Since(start).Milliseconds(),
		})
	}

	return results, totalCount, description
}

type cachedQuery struct {
	Results    []Result
	TotalCount int
}

// Contains answers the legacy unscored membership query: does term
// appear in the index at all.
func (e *Engine) Contains(term string) bool {
	_, ok := e.index.Terms[term]
	return ok
}

// DocumentPath returns the original crawled path for a document-id.
func (e *Engine) DocumentPath(docID string) (string, bool) {
	return e.index.DocumentPath(docID)
}

// AnchorTexts returns the raw anchor strings recorded for a document
// during crawl — the pre-doubling AnchorInbox contents, for display.
func (e *Engine) AnchorTexts(docID string) []string {
	path, ok := e.index.DocumentPath(docID)
	if !ok {
		return nil
	}
	return e.anchors[path]
}

// Stats summarizes the built index plus a system memory reading —
// memory is the resource large corpora tend to exhaust first.
func (e *Engine) Stats() Stats {
	s := e.index.Stats()
	return Stats{
		FileCount:        s.FileCount,
		VocabularySize:   s.VocabularySize,
		URLCount:         s.URLCount,
		AvgDocLength:     s.AvgDocLength,
		AnchorInboxCount: s.AnchorInboxCount,
		SystemFreeBytes:  memory.FreeMemory(),
	}
}

// Close releases the engine's telemetry log, if any.
func (e *Engine) Close() error {
	if e.log == nil {
		return nil
	}
	return e.log.Close()
}
