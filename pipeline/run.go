// Package pipeline writes an exercise export bundle: a manifest, the exercise
// summary and the decoded sample table as CSV or Parquet.
package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tormoder/fit"
	"go.uber.org/zap"

	digest "github.com/lucasjlepore/polar-digest"
	"github.com/lucasjlepore/polar-digest/fitsource"
)

// Run decodes one exercise source and writes the bundle into opts.OutDir.
func Run(opts Options) (*Result, error) {
	fitPath := strings.TrimSpace(opts.FitPath)
	jsonPath := strings.TrimSpace(opts.ExercisePath)
	switch {
	case fitPath == "" && jsonPath == "":
		return nil, fmt.Errorf("a FIT file or an exercise JSON file is required")
	case fitPath != "" && jsonPath != "":
		return nil, fmt.Errorf("FIT file and exercise JSON are mutually exclusive")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	kind, sourcePath := SourceFIT, fitPath
	if jsonPath != "" {
		kind, sourcePath = SourceExerciseJSON, jsonPath
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}
	sum := sha256.Sum256(data)

	ex, fileID, err := decodeSource(kind, sourcePath, data)
	if err != nil {
		return nil, err
	}

	decoded := digest.DecodeChannels(ex.Samples)
	for _, s := range decoded {
		if !s.Type.Known() {
			logger.Warn("unknown channel tag, summarized nowhere",
				zap.String("exercise_id", ex.ID),
				zap.Int("sample_type", int(s.Type)),
			)
		}
	}
	scale := opts.Summary.TemperatureScale
	if scale <= 0 {
		scale = digest.DefaultConfig().TemperatureScale
	}
	rows, base, channelInfos, err := BuildSampleTable(decoded, scale)
	if err != nil {
		return nil, fmt.Errorf("build sample table: %w", err)
	}

	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	summaryPath := filepath.Join(opts.OutDir, "summary.json")
	if err := writeJSON(summaryPath, digest.SummarizeExercise(ex, opts.Summary)); err != nil {
		return nil, fmt.Errorf("write summary.json: %w", err)
	}

	samplesPath := filepath.Join(opts.OutDir, "samples."+format)
	switch format {
	case "csv":
		err = writeSamplesCSV(samplesPath, rows)
	case "parquet":
		err = writeSamplesParquet(samplesPath, rows)
	}
	if err != nil {
		return nil, fmt.Errorf("write samples %s: %w", format, err)
	}

	manifest := Manifest{
		FormatVersion:   FormatVersion,
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		SourceKind:      kind,
		SourceFile:      sourcePath,
		SourceFileName:  filepath.Base(sourcePath),
		SourceSHA256:    hex.EncodeToString(sum[:]),
		SourceSizeBytes: int64(len(data)),
		FileID:          fileID,
		ExerciseID:      ex.ID,
		SummaryPath:     filepath.Base(summaryPath),
		SamplesPath:     filepath.Base(samplesPath),
		SamplesFormat:   format,
		SampleCount:     len(rows),
		BaseIntervalS:   base,
		Channels:        channelInfos,
	}
	manifestPath := filepath.Join(opts.OutDir, "manifest.json")
	if err := writeJSON(manifestPath, manifest); err != nil {
		return nil, fmt.Errorf("write manifest.json: %w", err)
	}

	sourceCopyPath := ""
	if opts.CopySource {
		ext := ".fit"
		if kind == SourceExerciseJSON {
			ext = ".json"
		}
		sourceCopyPath = filepath.Join(opts.OutDir, "source"+ext)
		if err := copyFile(sourcePath, sourceCopyPath); err != nil {
			return nil, fmt.Errorf("copy source file: %w", err)
		}
	}

	logger.Info("export bundle written",
		zap.String("run_id", manifest.RunID),
		zap.String("source_kind", kind),
		zap.String("exercise_id", ex.ID),
		zap.String("output_dir", opts.OutDir),
		zap.Int("sample_rows", len(rows)),
		zap.Int("channels", len(channelInfos)),
	)

	return &Result{
		OutputDir:      opts.OutDir,
		ManifestPath:   manifestPath,
		SummaryPath:    summaryPath,
		SamplesPath:    samplesPath,
		SourceCopyPath: sourceCopyPath,
		SampleCount:    len(rows),
	}, nil
}

func decodeSource(kind, path string, data []byte) (digest.Exercise, *FileIDInfo, error) {
	if kind == SourceExerciseJSON {
		var ex digest.Exercise
		if err := json.Unmarshal(data, &ex); err != nil {
			return digest.Exercise{}, nil, fmt.Errorf("parse exercise json: %w", err)
		}
		return ex, nil, nil
	}

	ex, err := fitsource.Decode(bytes.NewReader(data))
	if err != nil {
		return digest.Exercise{}, nil, err
	}
	ex.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ex, projectFileID(data), nil
}

func projectFileID(data []byte) *FileIDInfo {
	_, id, err := fit.DecodeHeaderAndFileID(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	info := &FileIDInfo{
		Type:         fmt.Sprint(id.Type),
		Manufacturer: fmt.Sprint(id.Manufacturer),
		Product:      fmt.Sprint(id.GetProduct()),
		SerialNumber: id.SerialNumber,
	}
	if !id.TimeCreated.IsZero() {
		info.TimeCreated = id.TimeCreated.UTC().Format(time.RFC3339)
	}
	return info
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
