// Package crawlspider performs a breadth-first traversal of the HTML
// entries inside an archive.Reader, starting from a seed path, and
// produces the corpus the indexer consumes: a crawled-document map and
// the per-target anchor-text inboxes observed along the way.
//
// A single coordinator owns the queue, discovered set, visited set,
// crawled map, and anchor inboxes. Workers only parse immutable
// (path, bytes) pairs and return results; the coordinator applies a
// batch's results back in the order the batch was popped, which is
// what makes AnchorInbox ordering deterministic.
package crawlspider

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/smart8099/web-search/internal/archive"
	"github.com/smart8099/web-search/internal/htmlx"
)

// ErrSeedNotFound is returned when the seed path is absent from the
// archive's HTML entries. It aborts the crawl entirely.
var ErrSeedNotFound = errors.New("crawlspider: seed entry not found")

// Result is the crawled corpus handed to the indexer.
type Result struct {
	Documents []Document
	Anchors   map[string][]string
	Stats     Stats
}

// Document is one successfully fetched, cached page.
type Document struct {
	Path  string
	Bytes []byte
}

// Stats summarizes one crawl run.
type Stats struct {
	Discovered int
	Visited    int
	Fetched    int
	Skipped    int
}

// Options configures a crawl.
type Options struct {
	// Workers is the size of the parse worker pool. Defaults to 4 if <= 0.
	Workers int
	// MaxPages bounds the number of documents visited. Zero means
	// unbounded (confined only by what the archive reaches).
	MaxPages int
}

type parseOutcome struct {
	path  string
	bytes []byte
	links []htmlx.Link
	err   error
}

// Crawl bulk-loads every HTML entry from r, then performs a batched
// breadth-first traversal starting at seedPath.
func Crawl(r *archive.Reader, seedPath string, opts Options) (*Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	cache, err := loadEntries(r)
	if err != nil {
		return nil, err
	}
	if _, ok := cache[seedPath]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrSeedNotFound, seedPath)
	}

	queue := []string{seedPath}
	discovered := map[string]struct{}{seedPath: {}}
	visited := map[string]struct{}{}
	crawled := map[string][]byte{}
	anchors := map[string][]string{}
	skipped := 0

	batchSize := workers * 4

	for len(queue) > 0 {
		if opts.MaxPages > 0 && len(visited) >= opts.MaxPages {
			break
		}

		batch, rest := popBatch(queue, cache, visited, batchSize, opts.MaxPages-len(visited), opts.MaxPages > 0)
		queue = rest
		if len(batch) == 0 {
			break
		}
		for _, p := range batch {
			visited[p] = struct{}{}
		}

		outcomes := parseBatch(batch, cache, workers)

		// Apply in batch order: this is what keeps AnchorInbox
		// ordering deterministic.
		for _, o := range outcomes {
			if o.err != nil {
				log.Printf("crawlspider: skipping %q: %v", o.path, o.err)
				skipped++
				continue
			}
			crawled[o.path] = o.bytes
			for _, link := range o.links {
				if link.AnchorText != "" {
					anchors[link.Target] = append(anchors[link.Target], link.AnchorText)
				}
				if _, ok := cache[link.Target]; !ok {
					continue
				}
				if _, ok := discovered[link.Target]; ok {
					continue
				}
				discovered[link.Target] = struct{}{}
				queue = append(queue, link.Target)
			}
		}
	}

	docs := make([]Document, 0, len(crawled))
	for path, bytes := range crawled {
		docs = append(docs, Document{Path: path, Bytes: bytes})
	}

	return &Result{
		Documents: docs,
		Anchors:   anchors,
		Stats: Stats{
			Discovered: len(discovered),
			Visited:    len(visited),
			Fetched:    len(crawled),
			Skipped:    skipped,
		},
	}, nil
}

// loadEntries performs a single sequential pass over the archive —
// zip random access is expensive, so streaming every HTML entry once
// up front is cheap by comparison.
func loadEntries(r *archive.Reader) (map[string][]byte, error) {
	cache := make(map[string][]byte)
	for _, entryPath := range r.ListHTMLEntries() {
		b, err := r.Read(entryPath)
		if err != nil {
			log.Printf("crawlspider: unreadable entry %q: %v", entryPath, err)
			continue
		}
		cache[entryPath] = b
	}
	return cache, nil
}

// popBatch removes up to n not-yet-visited, cached URLs from the front
// of the queue, honoring an optional remaining-page budget.
func popBatch(queue []string, cache map[string][]byte, visited map[string]struct{}, n, remaining int, bounded bool) ([]string, []string) {
	if bounded && remaining < n {
		n = remaining
	}
	if n <= 0 {
		return nil, queue
	}

	batch := make([]string, 0, n)
	rest := queue[:0:0]
	i := 0
	for ; i < len(queue) && len(batch) < n; i++ {
		p := queue[i]
		if _, ok := cache[p]; !ok {
			continue
		}
		if _, ok := visited[p]; ok {
			continue
		}
		batch = append(batch, p)
	}
	rest = append(rest, queue[i:]...)
	return batch, rest
}

// parseBatch runs htmlx.ExtractLinks over each batch member in
// parallel. Each worker only reads its own (path, bytes) pair and
// writes to its own outcome slot — no shared mutable state.
func parseBatch(batch []string, cache map[string][]byte, workers int) []parseOutcome {
	outcomes := make([]parseOutcome, len(batch))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, path := range batch {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			b := cache[path]
			links, err := htmlx.ExtractLinks(b, path)
			outcomes[i] = parseOutcome{path: path, bytes: b, links: links, err: err}
		}(i, path)
	}

	wg.Wait()
	return outcomes
}
