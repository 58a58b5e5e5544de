package database

import (
	"encoding/json"
	"time"
)

// RunRecord is the persisted history entry for one compression run.
type RunRecord struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RunID            string    `gorm:"index" json:"run_id"`
	InputPath        string    `json:"input_path"`
	OutputPath       string    `json:"output_path"`
	PageCount        int       `json:"page_count"`
	OriginalSize     int64     `json:"original_size"`
	CompressedSize   int64     `json:"compressed_size"`
	CompressionRatio float64   `json:"compression_ratio"`
	Status           string    `json:"status"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	SettingsJSON     string    `gorm:"type:text" json:"settings_json"`
	DurationMS       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// RunSettings captures the full configuration surface of a run for the
// history view.
type RunSettings struct {
	DPI               int     `json:"dpi"`
	Quality           int     `json:"quality"`
	Grayscale         bool    `json:"grayscale"`
	Contrast          bool    `json:"enhance_contrast"`
	ContrastFactor    float64 `json:"contrast_factor"`
	Brightness        bool    `json:"enhance_brightness"`
	BrightnessFactor  float64 `json:"brightness_factor"`
	Sharpen           bool    `json:"sharpen"`
	Binarize          bool    `json:"binarize"`
	BinarizeThreshold int     `json:"binarize_threshold"`
	Denoise           bool    `json:"denoise"`
}

// SetSettings serializes the settings into the record's JSON column.
func (r *RunRecord) SetSettings(s RunSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.SettingsJSON = string(data)
	return nil
}

// GetSettings deserializes the record's settings column.
func (r *RunRecord) GetSettings() (RunSettings, error) {
	var s RunSettings
	if r.SettingsJSON == "" {
		return s, nil
	}
	err := json.Unmarshal([]byte(r.SettingsJSON), &s)
	return s, err
}

// Totals aggregates all-time statistics over the run history.
type Totals struct {
	RunsCompleted int64 `json:"runs_completed"`
	PagesDone     int64 `json:"pages_done"`
	BytesSaved    int64 `json:"bytes_saved"`
}
