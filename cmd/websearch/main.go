// Command websearch is a thin presenter over the search package: it
// builds an index from a ZIP archive and a seed path, runs one query,
// and prints the ranked results as JSON. It is deliberately not a web
// server or GUI.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/smart8099/web-search/config"
	"github.com/smart8099/web-search/search"
)

type resultJSON struct {
	DocID string  `json:"doc_id"`
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

type responseJSON struct {
	Query       string       `json:"query"`
	Description string       `json:"description"`
	TotalCount  int          `json:"total_count"`
	Results     []resultJSON `json:"results"`
}

func main() {
	cfg := config.Get()

	archivePath := flag.String("archive", cfg.ArchivePath, "path to the ZIP archive to crawl")
	seedPath := flag.String("seed", cfg.SeedPath, "entry path within the archive to start crawling from")
	query := flag.String("query", "", "query string to run after building the index")
	maxPages := flag.Int("max-pages", cfg.MaxPages, "bound on pages visited during crawl (0 = unlimited)")
	workers := flag.Int("workers", cfg.CrawlWorkers, "size of the crawl's parse worker pool")
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "websearch: -query is required")
		os.Exit(2)
	}

	engine, err := search.Build(*archivePath, *seedPath, search.Options{
		MaxPages:     *maxPages,
		CrawlWorkers: *workers,
		TelemetryDSN: cfg.TelemetryDSN,
	})
	if err != nil {
		log.Fatalf("websearch: build index: %v", err)
	}
	defer engine.Close()

	results, total, description := engine.Query(*query)

	resp := responseJSON{
		Query:       *query,
		Description: description,
		TotalCount:  total,
		Results:     make([]resultJSON, len(results)),
	}
	for i, r := range results {
		resp.Results[i] = resultJSON{DocID: r.DocID, Path: r.Path, Score: r.Score}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		log.Fatalf("websearch: encode response: %v", err)
	}
}
