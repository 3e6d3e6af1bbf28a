package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/scribedesk/internal/model"
)

// FileDrafter turns one audio file into a draft
type FileDrafter interface {
	ProcessFile(ctx context.Context, path string) (*model.DraftResult, error)
}

// DraftJob drafts one audio file
type DraftJob struct {
	Index   int
	Path    string
	Drafter FileDrafter
}

// Execute executes the draft job
func (j *DraftJob) Execute(ctx context.Context) Result {
	result, err := j.Drafter.ProcessFile(ctx, j.Path)
	return &DraftResult{
		Index:  j.Index,
		Path:   j.Path,
		Result: result,
		Error:  err,
	}
}

// DraftResult is the outcome for one file in a batch
type DraftResult struct {
	Index  int
	Path   string
	Result *model.DraftResult
	Error  error
}

// GetError returns the error from the draft result
func (r *DraftResult) GetError() error {
	return r.Error
}

// BatchProcessor drafts many audio files concurrently
type BatchProcessor struct {
	drafter     FileDrafter
	concurrency int

	// Progress, when set, is called once per finished file
	Progress func(*DraftResult)
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(drafter FileDrafter, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		drafter:     drafter,
		concurrency: concurrency,
	}
}

// ProcessFiles drafts every path and returns results in input order.
// A failed file is recorded in its result and never stops the batch.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*DraftResult {
	out := make([]*DraftResult, len(paths))
	if len(paths) == 0 {
		return out
	}

	pool := NewPool(ctx, b.concurrency)
	if b.Progress != nil {
		pool.OnResult(func(r Result) { b.Progress(r.(*DraftResult)) })
	}
	pool.Start()

	for i, path := range paths {
		if !pool.Submit(&DraftJob{Index: i, Path: path, Drafter: b.drafter}) {
			break
		}
	}

	for _, r := range pool.Wait() {
		dr := r.(*DraftResult)
		out[dr.Index] = dr
	}

	// Files never started because the context was cancelled
	for i, r := range out {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &DraftResult{Index: i, Path: paths[i], Error: fmt.Errorf("not processed: %w", err)}
		}
	}

	return out
}

// ProcessList reads audio paths from a list file and drafts them
func (b *BatchProcessor) ProcessList(ctx context.Context, listPath string) ([]*DraftResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read list: %w", err)
	}

	return b.ProcessFiles(ctx, paths), nil
}

// ReadPathsFromFile reads one path per line, skipping blanks and # comments and
// dropping duplicates. Relative paths are taken relative to the list file;
// http(s) URLs are kept as written.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !isURL(line) {
			if !filepath.IsAbs(line) {
				line = filepath.Join(base, line)
			}
			line = filepath.Clean(line)
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}

// Summary counts successes and failures in a batch
func Summary(results []*DraftResult) (succeeded, failed int) {
	for _, r := range results {
		if r.Error != nil {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
