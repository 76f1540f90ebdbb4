package pipeline

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/lucasjlepore/polar-digest/samples"
)

// MaxSampleRows caps the aligned grid at 48 h of 1 s rows so a channel with a
// tiny recording interval cannot allocate an unbounded table.
const MaxSampleRows = 48 * 3600

type tableColumn struct {
	Type samples.ChannelType
	Name string
}

// tableColumns is the fixed column layout of the sample table. RR intervals
// are beat-indexed rather than time-indexed and never become a column.
var tableColumns = []tableColumn{
	{samples.HeartRate, "heart_rate_bpm"},
	{samples.Speed, "speed_kmh"},
	{samples.Cadence, "cadence_rpm"},
	{samples.Altitude, "altitude_m"},
	{samples.Power, "power_w"},
	{samples.PedalingIndex, "pedaling_index_pct"},
	{samples.LRBalance, "lr_balance_pct"},
	{samples.AirPressure, "air_pressure_hpa"},
	{samples.RunningCadence, "running_cadence_spm"},
	{samples.Temperature, "temperature_c"},
	{samples.Distance, "distance_m"},
}

func columnFor(t samples.ChannelType) (string, bool) {
	for _, c := range tableColumns {
		if c.Type == t {
			return c.Name, true
		}
	}
	return "", false
}

// BuildSampleTable aligns every time-indexed channel onto one grid whose step
// is the smallest channel interval. Temperature is rescaled into degrees. It
// returns the rows, the grid step and per-channel metadata, or an error when
// the grid would exceed MaxSampleRows.
func BuildSampleTable(series []samples.Series, temperatureScale float64) ([]SampleRow, float64, []ChannelInfo, error) {
	if temperatureScale <= 0 {
		temperatureScale = 10
	}
	base := 0.0
	for _, s := range series {
		if _, ok := columnFor(s.Type); ok && s.IntervalSeconds > 0 && (base == 0 || s.IntervalSeconds < base) {
			base = s.IntervalSeconds
		}
	}
	if base == 0 {
		base = 1
	}

	slot := func(i int, interval float64) int {
		return int(math.Round(float64(i) * interval / base))
	}
	rowCount := 0
	infos := make([]ChannelInfo, 0, len(series))
	for _, s := range series {
		info := ChannelInfo{
			Name:            s.Type.String(),
			Type:            int(s.Type),
			IntervalSeconds: s.IntervalSeconds,
			Slots:           len(s.Readings),
			Present:         len(samples.FilterPresent(s.Readings)),
		}
		if col, ok := columnFor(s.Type); ok && s.IntervalSeconds > 0 {
			info.Column = col
			if len(s.Readings) > 0 {
				last := math.Round(float64(len(s.Readings)-1) * s.IntervalSeconds / base)
				if last >= MaxSampleRows {
					return nil, base, nil, fmt.Errorf("%s channel spans %.0f rows at a %gs step (limit %d)",
						s.Type, last+1, base, MaxSampleRows)
				}
				rowCount = max(rowCount, int(last)+1)
			}
		}
		infos = append(infos, info)
	}

	rows := make([]SampleRow, rowCount)
	for i := range rows {
		rows[i] = SampleRow{Index: i, ElapsedS: float64(i) * base, Values: map[string]float64{}}
	}
	for _, s := range series {
		col, ok := columnFor(s.Type)
		if !ok || s.IntervalSeconds <= 0 {
			continue
		}
		for i, r := range s.Readings {
			if !r.Present {
				continue
			}
			v := r.Value
			if s.Type == samples.Temperature {
				v /= temperatureScale
			}
			rows[slot(i, s.IntervalSeconds)].Values[col] = v
		}
	}
	return rows, base, infos, nil
}

func writeSamplesCSV(path string, rows []SampleRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"index", "elapsed_s"}
	for _, c := range tableColumns {
		header = append(header, c.Name)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{strconv.Itoa(r.Index), formatFloat(r.ElapsedS)}
		for _, c := range tableColumns {
			record = append(record, formatFloatPtr(r.value(c.Name)))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

type sampleParquetRow struct {
	Index          int64   `parquet:"name=index, type=INT64"`
	ElapsedS       float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	HeartRateBPM   float64 `parquet:"name=heart_rate_bpm, type=DOUBLE"`
	SpeedKmh       float64 `parquet:"name=speed_kmh, type=DOUBLE"`
	CadenceRPM     float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	AltitudeM      float64 `parquet:"name=altitude_m, type=DOUBLE"`
	PowerW         float64 `parquet:"name=power_w, type=DOUBLE"`
	PedalingIndex  float64 `parquet:"name=pedaling_index_pct, type=DOUBLE"`
	LRBalance      float64 `parquet:"name=lr_balance_pct, type=DOUBLE"`
	AirPressureHPA float64 `parquet:"name=air_pressure_hpa, type=DOUBLE"`
	RunningCadence float64 `parquet:"name=running_cadence_spm, type=DOUBLE"`
	TemperatureC   float64 `parquet:"name=temperature_c, type=DOUBLE"`
	DistanceM      float64 `parquet:"name=distance_m, type=DOUBLE"`
}

func toParquetRow(r SampleRow) sampleParquetRow {
	return sampleParquetRow{
		Index:          int64(r.Index),
		ElapsedS:       r.ElapsedS,
		HeartRateBPM:   valueOrNaN(r.value("heart_rate_bpm")),
		SpeedKmh:       valueOrNaN(r.value("speed_kmh")),
		CadenceRPM:     valueOrNaN(r.value("cadence_rpm")),
		AltitudeM:      valueOrNaN(r.value("altitude_m")),
		PowerW:         valueOrNaN(r.value("power_w")),
		PedalingIndex:  valueOrNaN(r.value("pedaling_index_pct")),
		LRBalance:      valueOrNaN(r.value("lr_balance_pct")),
		AirPressureHPA: valueOrNaN(r.value("air_pressure_hpa")),
		RunningCadence: valueOrNaN(r.value("running_cadence_spm")),
		TemperatureC:   valueOrNaN(r.value("temperature_c")),
		DistanceM:      valueOrNaN(r.value("distance_m")),
	}
}

func writeSamplesParquet(path string, rows []SampleRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(sampleParquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		if err := pw.Write(toParquetRow(r)); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
