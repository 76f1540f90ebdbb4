package pipeline

import (
	"time"

	"go.uber.org/zap"

	digest "github.com/lucasjlepore/polar-digest"
)

// FormatVersion is bumped whenever the bundle layout changes.
const FormatVersion = "polar-digest-bundle/v1"

// Source kinds recorded in the manifest.
const (
	SourceFIT          = "fit"
	SourceExerciseJSON = "exercise_json"
)

// Options configures one export run. Exactly one of FitPath and ExercisePath
// must be set.
type Options struct {
	FitPath      string
	ExercisePath string
	OutDir       string
	Format       string // parquet|csv
	Overwrite    bool
	CopySource   bool
	Summary      digest.Config
	Logger       *zap.Logger
}

// Result returns generated output paths.
type Result struct {
	OutputDir      string `json:"output_dir"`
	ManifestPath   string `json:"manifest_path"`
	SummaryPath    string `json:"summary_path"`
	SamplesPath    string `json:"samples_path"`
	SourceCopyPath string `json:"source_copy_path,omitempty"`
	SampleCount    int    `json:"sample_count"`
}

// Manifest describes one bundle.
type Manifest struct {
	FormatVersion   string        `json:"format_version"`
	RunID           string        `json:"run_id"`
	GeneratedAt     time.Time     `json:"generated_at"`
	SourceKind      string        `json:"source_kind"`
	SourceFile      string        `json:"source_file"`
	SourceFileName  string        `json:"source_file_name"`
	SourceSHA256    string        `json:"source_sha256"`
	SourceSizeBytes int64         `json:"source_size_bytes"`
	FileID          *FileIDInfo   `json:"file_id,omitempty"`
	ExerciseID      string        `json:"exercise_id,omitempty"`
	SummaryPath     string        `json:"summary_path"`
	SamplesPath     string        `json:"samples_path"`
	SamplesFormat   string        `json:"samples_format"`
	SampleCount     int           `json:"sample_count"`
	BaseIntervalS   float64       `json:"base_interval_s"`
	Channels        []ChannelInfo `json:"channels"`
}

// FileIDInfo is the FIT file_id message projection.
type FileIDInfo struct {
	Type         string `json:"type"`
	Manufacturer string `json:"manufacturer"`
	Product      string `json:"product"`
	TimeCreated  string `json:"time_created,omitempty"`
	SerialNumber uint32 `json:"serial_number,omitempty"`
}

// ChannelInfo lists one decoded channel of the source.
type ChannelInfo struct {
	Name            string  `json:"name"`
	Type            int     `json:"type"`
	IntervalSeconds float64 `json:"interval_s"`
	Slots           int     `json:"slots"`
	Present         int     `json:"present"`
	Column          string  `json:"column,omitempty"`
}

// SampleRow is one row of the decoded sample table. Values holds only the
// channels that were present at this row.
type SampleRow struct {
	Index    int
	ElapsedS float64
	Values   map[string]float64
}

func (r SampleRow) value(column string) *float64 {
	v, ok := r.Values[column]
	if !ok {
		return nil
	}
	return &v
}
