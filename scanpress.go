// Package scanpress is the processing engine behind a scanned-PDF
// compressor: it downsamples, re-encodes and visually enhances every
// page of an input document and assembles a new PDF. A desktop
// frontend drives it through the App facade; progress flows back over
// an event channel so the frontend never blocks on run internals.
package scanpress

import (
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"scanpress/internal/common"
	"scanpress/internal/config"
	"scanpress/internal/database"
	"scanpress/internal/pipeline"
)

//go:embed VERSION
var version string

const eventBufferSize = 256

// App is the engine facade the Presentation Layer binds to.
type App struct {
	config *config.Config
	db     *database.Database
	logger *slog.Logger

	mu                sync.Mutex
	runs              map[string]*pipeline.Run
	sessionRuns       int
	sessionBytesSaved int64

	events chan ProgressUpdate
}

// New creates an uninitialized App; call Startup before use.
func New() *App {
	return &App{
		logger: slog.Default(),
		runs:   make(map[string]*pipeline.Run),
		events: make(chan ProgressUpdate, eventBufferSize),
	}
}

// Startup initializes configuration and the run history database.
func (a *App) Startup() error {
	a.config = config.New(version)
	a.logger = a.config.Logger

	db, err := database.NewDatabase(a.config.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize history database: %w", err)
	}
	a.db = db

	a.logger.Info("Engine initialized",
		"version", a.config.Version,
		"database_path", a.config.DatabasePath)

	return nil
}

// Version returns the engine version string.
func (a *App) Version() string {
	if a.config == nil {
		return strings.TrimSpace(version)
	}
	return a.config.Version
}

// Events returns the progress stream. Updates are dropped rather than
// blocking a run when the consumer lags.
func (a *App) Events() <-chan ProgressUpdate {
	return a.events
}

// Compress validates the request and starts a background run over the
// input document. Input-file and settings errors are returned here,
// before any run starts; everything after that is reported through
// the event stream and Status.
func (a *App) Compress(req CompressionRequest) (string, error) {
	if req.InputPath == "" {
		return "", fmt.Errorf("no input file provided")
	}

	runID := common.GenerateUUID()
	run, err := pipeline.NewRun(pipeline.Config{
		RunID:       runID,
		InputPath:   req.InputPath,
		OutputPath:  req.OutputPath,
		Enhancement: req.Enhancement,
		Compression: req.Compression,
		Workers:     req.Workers,
		Logger:      a.logger,
		OnProgress:  a.publish,
	})
	if err != nil {
		a.logger.Error("Compression request rejected", "input", req.InputPath, "error", err)
		return "", err
	}

	a.mu.Lock()
	a.runs[runID] = run
	a.mu.Unlock()

	run.Start()
	go a.reap(run, req)

	return runID, nil
}

// Cancel requests cooperative cancellation of a run. Cancellation is
// observed at the next page boundary.
func (a *App) Cancel(runID string) error {
	run, err := a.findRun(runID)
	if err != nil {
		return err
	}
	run.Cancel()
	return nil
}

// Status returns a snapshot of a run's state.
func (a *App) Status(runID string) (RunStatus, error) {
	run, err := a.findRun(runID)
	if err != nil {
		return RunStatus{}, err
	}
	return run.State(), nil
}

// Release drops a finished run from the active set once the frontend
// has consumed its result.
func (a *App) Release(runID string) {
	a.mu.Lock()
	delete(a.runs, runID)
	a.mu.Unlock()
}

// Preview renders one page through the full enhance/compress chain.
func (a *App) Preview(req PreviewRequest) (*PreviewResult, error) {
	page, err := pipeline.PreviewPage(req.InputPath, req.PageIndex, req.Enhancement, req.Compression, a.logger)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{
		Data:     page.Data,
		Format:   page.Format,
		WidthPt:  page.WidthPt,
		HeightPt: page.HeightPt,
	}, nil
}

// Stats returns session counters plus all-time totals from the run
// history.
func (a *App) Stats() (*Stats, error) {
	if a.db == nil {
		return nil, fmt.Errorf("engine not initialized")
	}
	totals, err := a.db.Totals()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	stats := &Stats{
		SessionRuns:       a.sessionRuns,
		SessionBytesSaved: a.sessionBytesSaved,
		TotalRuns:         totals.RunsCompleted,
		TotalPages:        totals.PagesDone,
		TotalBytesSaved:   totals.BytesSaved,
	}
	a.mu.Unlock()

	return stats, nil
}

// History returns up to limit past runs, newest first.
func (a *App) History(limit int) ([]HistoryEntry, error) {
	if a.db == nil {
		return nil, fmt.Errorf("engine not initialized")
	}
	return a.db.Recent(limit)
}

func (a *App) findRun(runID string) (*pipeline.Run, error) {
	a.mu.Lock()
	run, ok := a.runs[runID]
	a.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown run: %s", runID)
	}
	return run, nil
}

// publish forwards a progress update to the event stream without ever
// blocking the run goroutine.
func (a *App) publish(update ProgressUpdate) {
	select {
	case a.events <- update:
	default:
		a.logger.Debug("Event channel full, progress update dropped", "run_id", update.RunID)
	}
}

// reap waits for a run to finish, records it in the history database
// and folds its result into the session statistics.
func (a *App) reap(run *pipeline.Run, req CompressionRequest) {
	<-run.Done()
	result := run.Result()

	record := &database.RunRecord{
		RunID:          run.ID(),
		InputPath:      req.InputPath,
		OutputPath:     req.OutputPath,
		PageCount:      result.TotalPages,
		OriginalSize:   result.OriginalSize,
		CompressedSize: result.CompressedSize,
		Status:         string(result.Status),
		DurationMS:     result.Duration.Milliseconds(),
	}
	if result.Err != nil {
		record.ErrorMessage = result.Err.Error()
	}
	if err := record.SetSettings(database.RunSettings{
		DPI:               req.Compression.TargetDPI,
		Quality:           req.Compression.JPEGQuality,
		Grayscale:         req.Enhancement.Grayscale,
		Contrast:          req.Enhancement.Contrast,
		ContrastFactor:    req.Enhancement.ContrastFactor,
		Brightness:        req.Enhancement.Brightness,
		BrightnessFactor:  req.Enhancement.BrightnessFactor,
		Sharpen:           req.Enhancement.Sharpen,
		Binarize:          req.Enhancement.Binarize,
		BinarizeThreshold: req.Enhancement.BinarizeThreshold,
		Denoise:           req.Enhancement.Denoise,
	}); err != nil {
		a.logger.Warn("Failed to serialize run settings", "run_id", run.ID(), "error", err)
	}

	if a.db != nil {
		if err := a.db.Record(record); err != nil {
			a.logger.Error("Failed to record run history", "run_id", run.ID(), "error", err)
		}
	}

	if result.Status == StatusCompleted {
		a.mu.Lock()
		a.sessionRuns++
		a.sessionBytesSaved += result.OriginalSize - result.CompressedSize
		a.mu.Unlock()
	}
}
