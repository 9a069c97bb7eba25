package edinet

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BatchOptions configures multi-document extraction.
type BatchOptions struct {
	Paths       []string // Required: files to extract
	Concurrency int      // Parallel workers; <=0 means 4
	Config      *Config  // Optional extraction config
}

// BatchResult collects per-document extractions. Documents that could not
// even be read appear in Errors; parse-level degradation is recorded inside
// each Extraction as usual.
type BatchResult struct {
	Extractions map[string]*Extraction
	Errors      []error
}

// ExtractBatch extracts every document in opts.Paths. Documents are fully
// independent, so they run in parallel with a bounded worker group; nothing
// inside the pipeline shares mutable state across documents.
func ExtractBatch(ctx context.Context, opts BatchOptions) (*BatchResult, error) {
	if len(opts.Paths) == 0 {
		return nil, fmt.Errorf("at least one path is required")
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	result := &BatchResult{Extractions: make(map[string]*Extraction, len(opts.Paths))}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, path := range opts.Paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Errorf("reading %s: %w", path, err))
				mu.Unlock()
				return nil
			}

			ex := NewExtractor(opts.Config).Extract(data)

			mu.Lock()
			result.Extractions[path] = ex
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}
