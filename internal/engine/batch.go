package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Veraticus/smsledger/internal/common"
	"github.com/Veraticus/smsledger/internal/model"
)

// BatchOptions configures batch import behavior.
type BatchOptions struct {
	OnProgress func(done, total int) // called serially after each message
	Workers    int                   // defaults to runtime.NumCPU()
	DryRun     bool                  // parse and categorize without storing
}

// BatchResult is the outcome for one message of a batch.
type BatchResult struct {
	Err         error
	Transaction *model.Transaction
	DuplicateOf *model.Transaction
	Message     model.RawMessage
	Suggestion  model.CategorySuggestion
	Dialect     model.BankDialect
	Index       int
	Outcome     Outcome
}

// BatchSummary holds per-message results in input order and aggregate stats.
type BatchSummary struct {
	Results        []BatchResult
	Stats          Stats
	ProcessingTime time.Duration
}

// Flagged returns the imported results that resemble an existing entry.
func (s *BatchSummary) Flagged() []BatchResult {
	var out []BatchResult
	for _, r := range s.Results {
		if r.Outcome == OutcomeImported && r.DuplicateOf != nil {
			out = append(out, r)
		}
	}
	return out
}

// Imported returns the results that produced a ledger entry (or would have,
// in a dry run).
func (s *BatchSummary) Imported() []BatchResult {
	var out []BatchResult
	for _, r := range s.Results {
		if r.Outcome == OutcomeImported {
			out = append(out, r)
		}
	}
	return out
}

// ImportBatch imports msgs with a pool of workers. Categories are loaded
// once for the whole batch. Per-message failures are reported in the
// results; the returned error is set only when the batch could not run or
// ctx was cancelled, in which case unprocessed messages are marked failed.
func (i *Importer) ImportBatch(ctx context.Context, msgs []model.RawMessage, opts BatchOptions) (*BatchSummary, error) {
	startTime := time.Now()
	summary := &BatchSummary{
		Results: make([]BatchResult, len(msgs)),
		Stats:   NewStats(),
	}
	if len(msgs) == 0 {
		return summary, nil
	}

	cats, err := i.categories.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(msgs))

	slog.Info("Starting batch import",
		"messages", len(msgs),
		"workers", workers,
		"categories", len(cats),
		"dry_run", opts.DryRun)

	workChan := make(chan int, len(msgs))
	for idx := range msgs {
		workChan <- idx
	}
	close(workChan)

	var (
		mu   sync.Mutex
		done int
		wg   sync.WaitGroup
	)
	record := func(r BatchResult) {
		mu.Lock()
		defer mu.Unlock()
		summary.Results[r.Index] = r
		summary.Stats.Add(r)
		done++
		if opts.OnProgress != nil {
			opts.OnProgress(done, len(msgs))
		}
	}

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(workerID int) {
			defer wg.Done()
			for idx := range workChan {
				if ctx.Err() != nil {
					record(BatchResult{
						Index:   idx,
						Message: msgs[idx],
						Outcome: OutcomeFailed,
						Err:     ctx.Err(),
					})
					continue
				}
				r := i.importOne(ctx, msgs[idx], cats, opts.DryRun)
				r.Index = idx
				if r.Err != nil {
					common.LogError(r.Err, "Failed to import message", common.Fields{
						"worker_id": workerID,
						"index":     idx,
					})
				}
				record(r)
			}
		}(w)
	}
	wg.Wait()

	summary.ProcessingTime = time.Since(startTime)
	slog.Info("Batch import finished",
		"imported", summary.Stats.Imported,
		"duplicates", summary.Stats.Duplicates+summary.Stats.NearDuplicates,
		"unrecognized", summary.Stats.Unrecognized+summary.Stats.Unreadable,
		"failed", summary.Stats.Failed,
		"duration", summary.ProcessingTime)

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("batch import interrupted: %w", err)
	}
	return summary, nil
}

// Stats tallies import outcomes.
type Stats struct {
	ByDialect      map[model.BankDialect]int
	Total          int
	Imported       int
	Categorized    int
	Flagged        int // imported, but resembling an existing entry
	Duplicates     int
	NearDuplicates int // skipped as near duplicates
	Unrecognized   int
	Unreadable     int
	Failed         int
}

// NewStats returns an empty tally.
func NewStats() Stats {
	return Stats{ByDialect: make(map[model.BankDialect]int)}
}

// Add counts one result. Dialects are counted for every detected message,
// including those whose amount could not be read.
func (s *Stats) Add(r BatchResult) {
	if s.ByDialect == nil {
		s.ByDialect = make(map[model.BankDialect]int)
	}
	s.Total++
	if r.Dialect != "" {
		s.ByDialect[r.Dialect]++
	}

	switch r.Outcome {
	case OutcomeImported:
		s.Imported++
		if !r.Suggestion.IsEmpty() {
			s.Categorized++
		}
		if r.DuplicateOf != nil {
			s.Flagged++
		}
	case OutcomeDuplicate:
		s.Duplicates++
	case OutcomeNearDuplicate:
		s.NearDuplicates++
	case OutcomeUnrecognized:
		s.Unrecognized++
	case OutcomeUnreadable:
		s.Unreadable++
	case OutcomeFailed:
		s.Failed++
	}
}

// GetDisplay returns a JSON representation of the stats.
func (s Stats) GetDisplay() string {
	if s.Total == 0 {
		return `{"message":"No messages to import"}`
	}

	byDialect := make(map[string]int, len(s.ByDialect))
	for d, n := range s.ByDialect {
		byDialect[string(d)] = n
	}

	type statsJSON struct {
		ByDialect      map[string]int `json:"by_dialect"`
		Total          int            `json:"total"`
		Imported       int            `json:"imported"`
		Categorized    int            `json:"categorized"`
		Flagged        int            `json:"flagged"`
		Duplicates     int            `json:"duplicates"`
		NearDuplicates int            `json:"near_duplicates"`
		Unrecognized   int            `json:"unrecognized"`
		Unreadable     int            `json:"unreadable"`
		Failed         int            `json:"failed"`
	}

	bytes, err := json.Marshal(statsJSON{
		ByDialect:      byDialect,
		Total:          s.Total,
		Imported:       s.Imported,
		Categorized:    s.Categorized,
		Flagged:        s.Flagged,
		Duplicates:     s.Duplicates,
		NearDuplicates: s.NearDuplicates,
		Unrecognized:   s.Unrecognized,
		Unreadable:     s.Unreadable,
		Failed:         s.Failed,
	})
	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal stats: %v"}`, err)
	}
	return string(bytes)
}
