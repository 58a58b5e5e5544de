package scanpress

import (
	"scanpress/internal/compress"
	"scanpress/internal/database"
	"scanpress/internal/enhance"
	"scanpress/internal/pipeline"
)

// Aliases exposed to the Presentation Layer so it never imports the
// internal packages directly.
type (
	EnhancementSettings = enhance.Settings
	CompressionSettings = compress.Settings
	RunStatus           = pipeline.StateSnapshot
	ProgressUpdate      = pipeline.ProgressUpdate
	HistoryEntry        = database.RunRecord
)

// Run status values as the Presentation Layer sees them.
const (
	StatusPending   = pipeline.StatusPending
	StatusRunning   = pipeline.StatusRunning
	StatusCancelled = pipeline.StatusCancelled
	StatusCompleted = pipeline.StatusCompleted
	StatusFailed    = pipeline.StatusFailed
)

// DefaultEnhancementSettings returns the neutral enhancement surface.
func DefaultEnhancementSettings() EnhancementSettings {
	return enhance.DefaultSettings()
}

// DefaultCompressionSettings returns the standard scanned-document
// compression settings.
func DefaultCompressionSettings() CompressionSettings {
	return compress.DefaultSettings()
}

// CompressionRequest starts one run over one input document.
type CompressionRequest struct {
	InputPath   string              `json:"input_path"`
	OutputPath  string              `json:"output_path"`
	Enhancement EnhancementSettings `json:"enhancement"`
	Compression CompressionSettings `json:"compression"`
	Workers     int                 `json:"workers,omitempty"`
}

// PreviewRequest renders one page with the full processing chain.
type PreviewRequest struct {
	InputPath   string              `json:"input_path"`
	PageIndex   int                 `json:"page_index"`
	Enhancement EnhancementSettings `json:"enhancement"`
	Compression CompressionSettings `json:"compression"`
}

// PreviewResult carries the encoded preview image and the page
// geometry in PDF points.
type PreviewResult struct {
	Data     []byte  `json:"data"`
	Format   string  `json:"format"`
	WidthPt  float64 `json:"width_pt"`
	HeightPt float64 `json:"height_pt"`
}

// Stats combines session counters with all-time history totals.
type Stats struct {
	SessionRuns       int   `json:"session_runs"`
	SessionBytesSaved int64 `json:"session_bytes_saved"`
	TotalRuns         int64 `json:"total_runs"`
	TotalPages        int64 `json:"total_pages"`
	TotalBytesSaved   int64 `json:"total_bytes_saved"`
}
