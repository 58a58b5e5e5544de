package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"scanpress/internal/common"
	"scanpress/internal/compress"
	"scanpress/internal/enhance"
	"scanpress/internal/pdfio"
)

// ProgressUpdate is emitted after every processed page and on every
// status transition.
type ProgressUpdate struct {
	RunID      string `json:"run_id"`
	Status     Status `json:"status"`
	PagesDone  int    `json:"pages_done"`
	TotalPages int    `json:"total_pages"`
	Error      string `json:"error,omitempty"`
}

// ProgressFunc receives progress updates. It is called from the run
// goroutine and must not block for long.
type ProgressFunc func(ProgressUpdate)

// Config describes one compression run.
type Config struct {
	RunID       string
	InputPath   string
	OutputPath  string
	Enhancement enhance.Settings
	Compression compress.Settings
	Workers     int
	Logger      *slog.Logger
	OnProgress  ProgressFunc
}

// Result summarizes a finished run.
type Result struct {
	Status         Status
	TotalPages     int
	OriginalSize   int64
	CompressedSize int64
	Duration       time.Duration
	Err            error
}

// Run processes every page of one input document: rasterize, enhance,
// compress, then assemble the output PDF in original page order.
// Pages are fanned out to a bounded worker pool; assembly and the
// final write are serialized in the run goroutine. Page position in
// the output always matches the input regardless of completion order.
type Run struct {
	id          string
	inputPath   string
	outputPath  string
	chain       *enhance.Chain
	compressor  *compress.Compressor
	compression compress.Settings
	workers     int
	logger      *slog.Logger
	onProgress  ProgressFunc

	state     *runState
	cancelled atomic.Bool
	aborted   atomic.Bool
	done      chan struct{}
	result    Result
	started   time.Time
}

type pageResult struct {
	page *pdfio.EncodedPage
	err  error
}

// NewRun validates the input file and all settings. Every rejection
// here happens before the run exists, so bad input never reaches the
// Running state.
func NewRun(cfg Config) (*Run, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	chain, err := enhance.NewChain(cfg.Enhancement)
	if err != nil {
		return nil, fmt.Errorf("invalid enhancement settings: %w", err)
	}

	compressor, err := compress.New(cfg.Compression, cfg.Enhancement.Binarize, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("invalid compression settings: %w", err)
	}

	if cfg.OutputPath == "" {
		return nil, fmt.Errorf("no output path provided")
	}

	doc, err := pdfio.Open(cfg.InputPath)
	if err != nil {
		return nil, err
	}
	totalPages := doc.PageCount()
	doc.Close()

	if totalPages == 0 {
		return nil, fmt.Errorf("%w: document has no pages", pdfio.ErrInvalidPDF)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > common.MaxConcurrencyLimit {
		workers = common.MaxConcurrencyLimit
	}
	if workers > totalPages {
		workers = totalPages
	}

	return &Run{
		id:          cfg.RunID,
		inputPath:   cfg.InputPath,
		outputPath:  cfg.OutputPath,
		chain:       chain,
		compressor:  compressor,
		compression: cfg.Compression,
		workers:     workers,
		logger:      cfg.Logger,
		onProgress:  cfg.OnProgress,
		state:       newRunState(totalPages),
		done:        make(chan struct{}),
	}, nil
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.id
}

// State returns a snapshot of the current run state.
func (r *Run) State() StateSnapshot {
	return r.state.snapshot()
}

// Done is closed when the run reaches a terminal state.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Result is valid once Done is closed.
func (r *Run) Result() Result {
	return r.result
}

// Cancel requests cooperative cancellation. Workers observe the flag
// at page boundaries, so latency is bounded by one page's processing
// time. Cancelling a finished run has no effect.
func (r *Run) Cancel() {
	r.cancelled.Store(true)
}

// Start launches the run in a background goroutine.
func (r *Run) Start() {
	r.started = time.Now()
	go r.run()
}

func (r *Run) run() {
	defer close(r.done)

	totalPages := r.state.snapshot().TotalPages
	r.logger.Info("Compression run started",
		"run_id", r.id,
		"input", r.inputPath,
		"pages", totalPages,
		"workers", r.workers)

	r.state.setStatus(StatusRunning)
	r.emitProgress()

	workChan := make(chan int, totalPages)
	resultChan := make(chan pageResult, totalPages)
	for i := 0; i < totalPages; i++ {
		workChan <- i
	}
	close(workChan)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go r.pageWorker(workChan, resultChan, &wg)
	}
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	pages := make([]*pdfio.EncodedPage, totalPages)
	var firstErr error
	for res := range resultChan {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		pages[res.page.Index] = res.page
		r.state.incPagesDone()
		r.emitProgress()
	}

	switch {
	case r.cancelled.Load():
		// Partial output is discarded; nothing was written yet.
		r.logger.Info("Compression run cancelled", "run_id", r.id)
		r.state.setStatus(StatusCancelled)
		r.finish(StatusCancelled, pdfio.ErrCancelled)
		return

	case firstErr != nil:
		r.logger.Error("Compression run failed", "run_id", r.id, "error", firstErr)
		r.state.setFailed(firstErr)
		r.finish(StatusFailed, firstErr)
		return
	}

	writer := pdfio.NewWriter(r.outputPath, r.logger)
	for _, page := range pages {
		writer.Add(page)
	}

	r.logger.Info("Assembling output PDF",
		"run_id", r.id,
		"pages", writer.PageCount(),
		"output", r.outputPath)

	if err := writer.Write(); err != nil {
		r.logger.Error("Output assembly failed", "run_id", r.id, "error", err)
		r.state.setFailed(err)
		r.finish(StatusFailed, err)
		return
	}

	r.state.setStatus(StatusCompleted)
	r.finish(StatusCompleted, nil)
	r.logger.Info("Compression run completed",
		"run_id", r.id,
		"output", r.outputPath,
		"duration", r.result.Duration.Round(time.Millisecond))
}

// pageWorker drains the work channel. The cancellation flag is polled
// before each page, never mid-page.
func (r *Run) pageWorker(work <-chan int, results chan<- pageResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for pageIndex := range work {
		if r.cancelled.Load() || r.aborted.Load() {
			return
		}

		page, err := r.processPage(pageIndex)
		if err != nil {
			// One bad page fails the whole run; stop the other
			// workers at their next page boundary.
			r.aborted.Store(true)
		}
		results <- pageResult{page: page, err: err}
	}
}

// processPage runs one page through the full chain. Each worker opens
// its own document handle because the underlying decoder is not safe
// for concurrent page access.
func (r *Run) processPage(pageIndex int) (*pdfio.EncodedPage, error) {
	doc, err := pdfio.Open(r.inputPath)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", pageIndex, err)
	}
	defer doc.Close()

	raster, err := doc.Rasterize(pageIndex, r.compression.TargetDPI)
	if err != nil {
		return nil, err
	}

	raster.Pixels = r.chain.Apply(raster.Pixels)

	return r.compressor.Compress(raster)
}

func (r *Run) finish(status Status, err error) {
	result := Result{
		Status:     status,
		TotalPages: r.state.snapshot().TotalPages,
		Duration:   time.Since(r.started),
	}
	if status == StatusFailed {
		result.Err = err
	}

	if info, statErr := os.Stat(r.inputPath); statErr == nil {
		result.OriginalSize = info.Size()
	}
	if status == StatusCompleted {
		if info, statErr := os.Stat(r.outputPath); statErr == nil {
			result.CompressedSize = info.Size()
		}
	}

	r.result = result
	r.emitProgress()
}

func (r *Run) emitProgress() {
	if r.onProgress == nil {
		return
	}
	snap := r.state.snapshot()
	r.onProgress(ProgressUpdate{
		RunID:      r.id,
		Status:     snap.Status,
		PagesDone:  snap.PagesDone,
		TotalPages: snap.TotalPages,
		Error:      snap.LastError,
	})
}
