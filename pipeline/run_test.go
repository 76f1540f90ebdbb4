package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	digest "github.com/lucasjlepore/polar-digest"
	"github.com/lucasjlepore/polar-digest/samples"
)

// writeTestFIT writes a seven second activity with no record at t+5.
func writeTestFIT(t *testing.T) string {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	require.NoError(t, err)
	file.FileId.Manufacturer = fit.ManufacturerDevelopment
	file.FileId.TimeCreated = time.Date(2026, 3, 1, 6, 59, 0, 0, time.UTC)

	activity, err := file.Activity()
	require.NoError(t, err)

	start := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	for _, sec := range []int{0, 1, 2, 3, 4, 6} {
		record := fit.NewRecordMsg()
		record.Timestamp = start.Add(time.Duration(sec) * time.Second)
		record.HeartRate = uint8(130 + sec)
		record.Power = 250
		record.Speed = 2500
		activity.Records = append(activity.Records, record)
	}

	var buf bytes.Buffer
	require.NoError(t, fit.Encode(&buf, file, binary.LittleEndian))
	path := filepath.Join(t.TempDir(), "tempo_ride.fit")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func readManifest(t *testing.T, path string) Manifest {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestRunFITToCSV(t *testing.T) {
	fitPath := writeTestFIT(t)
	outDir := filepath.Join(t.TempDir(), "out")

	res, err := Run(Options{
		FitPath:    fitPath,
		OutDir:     outDir,
		Format:     "csv",
		CopySource: true,
		Summary:    digest.DefaultConfig(),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, res.SampleCount)
	assert.Equal(t, filepath.Join(outDir, "samples.csv"), res.SamplesPath)
	assert.FileExists(t, res.SourceCopyPath)

	f, err := os.Open(res.SamplesPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 8)

	header := rows[0]
	require.Len(t, header, len(tableColumns)+2)
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{"index", "elapsed_s", "heart_rate_bpm", "speed_kmh", "power_w"} {
		require.Contains(t, col, name)
	}

	assert.Equal(t, "130", rows[1][col["heart_rate_bpm"]])
	assert.Equal(t, "9", rows[1][col["speed_kmh"]])
	assert.Equal(t, "250", rows[1][col["power_w"]])
	assert.Equal(t, "", rows[6][col["heart_rate_bpm"]], "missing record leaves an empty cell")
	assert.Equal(t, "6", rows[7][col["elapsed_s"]])
	assert.Equal(t, "136", rows[7][col["heart_rate_bpm"]])
	assert.Equal(t, "", rows[1][col["temperature_c"]])

	m := readManifest(t, res.ManifestPath)
	data, err := os.ReadFile(fitPath)
	require.NoError(t, err)
	sum := sha256.Sum256(data)
	assert.Equal(t, FormatVersion, m.FormatVersion)
	assert.Equal(t, SourceFIT, m.SourceKind)
	assert.Equal(t, hex.EncodeToString(sum[:]), m.SourceSHA256)
	assert.Equal(t, int64(len(data)), m.SourceSizeBytes)
	assert.Equal(t, "tempo_ride", m.ExerciseID)
	assert.Equal(t, "samples.csv", m.SamplesPath)
	assert.Equal(t, 1.0, m.BaseIntervalS)
	_, err = uuid.Parse(m.RunID)
	assert.NoError(t, err)
	require.NotNil(t, m.FileID)
	assert.Equal(t, "2026-03-01T06:59:00Z", m.FileID.TimeCreated)

	var summary digest.ExerciseSummary
	raw, err := os.ReadFile(res.SummaryPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, "tempo_ride", summary.ID)
	require.NotNil(t, summary.Power)
	assert.Equal(t, 250.0, summary.Power.AvgWatts)
	require.NotNil(t, summary.HeartRateSamples)
	assert.Equal(t, 6, summary.HeartRateSamples.Count)
}

func TestRunFITToParquet(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	res, err := Run(Options{FitPath: writeTestFIT(t), OutDir: outDir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "samples.parquet"), res.SamplesPath)
	assert.Empty(t, res.SourceCopyPath)

	fr, err := local.NewLocalFileReader(res.SamplesPath)
	require.NoError(t, err)
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(sampleParquetRow), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	require.Equal(t, 7, n)
	rows := make([]sampleParquetRow, n)
	require.NoError(t, pr.Read(&rows))

	assert.Equal(t, int64(0), rows[0].Index)
	assert.Equal(t, 130.0, rows[0].HeartRateBPM)
	assert.Equal(t, 9.0, rows[0].SpeedKmh)
	assert.True(t, math.IsNaN(rows[5].HeartRateBPM))
	assert.True(t, math.IsNaN(rows[0].TemperatureC))
	assert.Equal(t, 6.0, rows[6].ElapsedS)

	m := readManifest(t, res.ManifestPath)
	assert.Equal(t, "parquet", m.SamplesFormat)
	assert.Equal(t, 7, m.SampleCount)
}

func TestRunExerciseJSON(t *testing.T) {
	ex := digest.Exercise{
		ID:    "upstream-42",
		Sport: "RUNNING",
		Samples: []samples.RawChannel{
			{IntervalSeconds: 1, Type: samples.HeartRate, Values: "100,,110,112"},
			{IntervalSeconds: 2, Type: samples.Speed, Values: "10,12"},
			{IntervalSeconds: 1, Type: samples.Temperature, Values: "215"},
			{IntervalSeconds: 0, Type: samples.RRInterval, Values: "800,810"},
		},
	}
	data, err := json.Marshal(ex)
	require.NoError(t, err)
	src := filepath.Join(t.TempDir(), "exercise.json")
	require.NoError(t, os.WriteFile(src, data, 0o644))

	outDir := filepath.Join(t.TempDir(), "out")
	res, err := Run(Options{ExercisePath: src, OutDir: outDir, Format: "CSV", CopySource: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "source.json"), res.SourceCopyPath)
	assert.Equal(t, 4, res.SampleCount)

	m := readManifest(t, res.ManifestPath)
	assert.Equal(t, SourceExerciseJSON, m.SourceKind)
	assert.Equal(t, "upstream-42", m.ExerciseID)
	assert.Nil(t, m.FileID)
	require.Len(t, m.Channels, 4)
	assert.Equal(t, "speed_kmh", m.Channels[1].Column)
	assert.Equal(t, "rr_interval", m.Channels[3].Name)
	assert.Empty(t, m.Channels[3].Column)
	assert.Equal(t, 3, m.Channels[0].Present)
}

func TestBuildSampleTableAlignsIntervals(t *testing.T) {
	series := []samples.Series{
		{Type: samples.HeartRate, IntervalSeconds: 1, Readings: []samples.Reading{samples.At(100), samples.Absent(), samples.At(110), samples.At(112)}},
		{Type: samples.Speed, IntervalSeconds: 2, Readings: []samples.Reading{samples.At(10), samples.At(12)}},
		{Type: samples.Temperature, IntervalSeconds: 1, Readings: []samples.Reading{samples.At(215)}},
	}
	rows, base, infos, err := BuildSampleTable(series, 10)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, 1.0, base)
	require.Len(t, infos, 3)

	assert.Equal(t, map[string]float64{"heart_rate_bpm": 100, "speed_kmh": 10, "temperature_c": 21.5}, rows[0].Values)
	assert.Empty(t, rows[1].Values)
	assert.Equal(t, map[string]float64{"heart_rate_bpm": 110, "speed_kmh": 12}, rows[2].Values)
	assert.Equal(t, 3.0, rows[3].ElapsedS)
}

func TestBuildSampleTableWithoutGriddedChannels(t *testing.T) {
	rows, base, infos, err := BuildSampleTable([]samples.Series{
		{Type: samples.RRInterval, Readings: []samples.Reading{samples.At(800)}},
	}, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 1.0, base)
	require.Len(t, infos, 1)
	assert.Empty(t, infos[0].Column)
}

func TestRunRejectsNonEmptyOutputDir(t *testing.T) {
	fitPath := writeTestFIT(t)
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "keep.txt"), []byte("x"), 0o644))

	_, err := Run(Options{FitPath: fitPath, OutDir: outDir, Format: "csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not empty")

	_, err = Run(Options{FitPath: fitPath, OutDir: outDir, Format: "csv", Overwrite: true})
	assert.NoError(t, err)
}

// hourOfPower is an hour of 1 s power readings next to a single heart rate
// reading recorded at 1 ms, which would put 3.6 million rows on the grid.
func hourOfPower() []samples.RawChannel {
	return []samples.RawChannel{
		{IntervalSeconds: 0.001, Type: samples.HeartRate, Values: "60"},
		{IntervalSeconds: 1, Type: samples.Power, Values: strings.TrimSuffix(strings.Repeat("200,", 3600), ",")},
	}
}

func TestBuildSampleTableRejectsOversizedGrid(t *testing.T) {
	rows, _, infos, err := BuildSampleTable(digest.DecodeChannels(hourOfPower()), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "power")
	assert.Nil(t, rows)
	assert.Nil(t, infos)
}

func TestBuildSampleTableAtRowLimit(t *testing.T) {
	readings := make([]samples.Reading, MaxSampleRows)
	rows, _, _, err := BuildSampleTable([]samples.Series{
		{Type: samples.Power, IntervalSeconds: 1, Readings: readings},
	}, 10)
	require.NoError(t, err)
	assert.Len(t, rows, MaxSampleRows)

	_, _, _, err = BuildSampleTable([]samples.Series{
		{Type: samples.Power, IntervalSeconds: 1, Readings: append(readings, samples.At(1))},
	}, 10)
	assert.Error(t, err)
}

func TestRunOversizedGridWritesNothing(t *testing.T) {
	data, err := json.Marshal(digest.Exercise{ID: "tiny-rate", Samples: hourOfPower()})
	require.NoError(t, err)
	src := filepath.Join(t.TempDir(), "exercise.json")
	require.NoError(t, os.WriteFile(src, data, 0o644))

	outDir := filepath.Join(t.TempDir(), "out")
	_, err = Run(Options{ExercisePath: src, OutDir: outDir, Format: "csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build sample table")
	assert.NoDirExists(t, outDir)
}

func TestRunKeepsUnknownChannelsOffTheGrid(t *testing.T) {
	data, err := json.Marshal(digest.Exercise{ID: "odd", Samples: []samples.RawChannel{
		{IntervalSeconds: 1, Type: samples.HeartRate, Values: "100,101"},
		{IntervalSeconds: 1, Type: samples.ChannelType(42), Values: "1,2,3,4,5"},
	}})
	require.NoError(t, err)
	src := filepath.Join(t.TempDir(), "exercise.json")
	require.NoError(t, os.WriteFile(src, data, 0o644))

	res, err := Run(Options{ExercisePath: src, OutDir: filepath.Join(t.TempDir(), "out"), Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.SampleCount)

	m := readManifest(t, res.ManifestPath)
	require.Len(t, m.Channels, 2)
	assert.Equal(t, "channel_42", m.Channels[1].Name)
	assert.Empty(t, m.Channels[1].Column)
	assert.Equal(t, 5, m.Channels[1].Slots)
}

func TestRunValidatesOptions(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]Options{
		"no source":   {OutDir: dir},
		"two sources": {FitPath: "a.fit", ExercisePath: "a.json", OutDir: dir},
		"no out dir":  {FitPath: "a.fit"},
		"bad format":  {FitPath: "a.fit", OutDir: dir, Format: "xlsx"},
		"missing":     {FitPath: filepath.Join(dir, "missing.fit"), OutDir: dir},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Run(opts)
			assert.Error(t, err)
		})
	}
}
