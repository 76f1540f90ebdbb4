package accesslink

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	digest "github.com/lucasjlepore/polar-digest"
)

// DefaultBatchWidth bounds the number of concurrent per-day requests.
const DefaultBatchWidth = 5

const dateLayout = "2006-01-02"

// DaySource supplies one day of activity. ActivitySamples is the optional
// secondary fetch.
type DaySource interface {
	ActivityDay(ctx context.Context, date string) (digest.ActivityDay, error)
	ActivitySamples(ctx context.Context, date string) (*digest.ActivitySamples, error)
}

// Dates lists every calendar day from from to to inclusive.
func Dates(from, to time.Time) []string {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	var out []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(dateLayout))
	}
	return out
}

// FetchActivityRange fetches every day in [from, to] in strictly sequential
// batches of batchWidth parallel requests. A day whose primary fetch fails is
// dropped; a failed samples fetch leaves the day without samples. The result
// is ordered by date. Only cancellation of ctx is reported as an error.
func FetchActivityRange(ctx context.Context, src DaySource, from, to time.Time, batchWidth int, logger *zap.Logger) ([]digest.ActivityDay, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid range: %s is before %s", to.Format(dateLayout), from.Format(dateLayout))
	}
	if batchWidth <= 0 {
		batchWidth = DefaultBatchWidth
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dates := Dates(from, to)
	slots := make([]*digest.ActivityDay, len(dates))
	for start := 0; start < len(dates); start += batchWidth {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+batchWidth, len(dates))

		// each goroutine owns slots[i]; a failed day never cancels siblings,
		// only cancellation of ctx fails the batch.
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				slots[i] = fetchDay(ctx, src, dates[i], logger)
				return ctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	out := make([]digest.ActivityDay, 0, len(dates))
	for _, day := range slots {
		if day != nil {
			out = append(out, *day)
		}
	}
	logger.Debug("activity range fetched",
		zap.String("from", dates[0]),
		zap.String("to", dates[len(dates)-1]),
		zap.Int("requested_days", len(dates)),
		zap.Int("returned_days", len(out)),
	)
	return out, nil
}

func fetchDay(ctx context.Context, src DaySource, date string, logger *zap.Logger) *digest.ActivityDay {
	day, err := src.ActivityDay(ctx, date)
	if err != nil {
		logger.Debug("dropping activity day", zap.String("date", date), zap.Error(err))
		return nil
	}
	if day.Date == "" {
		day.Date = date
	}
	samples, err := src.ActivitySamples(ctx, date)
	if err != nil {
		logger.Debug("activity samples unavailable", zap.String("date", date), zap.Error(err))
		return &day
	}
	day.Samples = samples
	return &day
}
