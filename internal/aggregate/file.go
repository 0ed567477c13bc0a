package aggregate

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/jgoulah/bikestats/internal/logging"
	"github.com/jgoulah/bikestats/internal/tripparse"
)

// ctxCheckInterval is how many rows are read between context checks
const ctxCheckInterval = 4096

// Partial is the result of aggregating a single file
type Partial struct {
	Path   string
	Schema tripparse.Schema
	Days   Days
	Stats  FileStats
}

func newPartial(path string) *Partial {
	return &Partial{Path: path, Days: make(Days)}
}

// AggregateFile streams one CSV file and accumulates its trips by day.
// Bad rows are counted and skipped. A file without a recognizable header
// yields an empty partial and no error. Only I/O failures and context
// cancellation are returned as errors.
func AggregateFile(ctx context.Context, path string) (*Partial, error) {
	ll := logging.FromContext(ctx).With(slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var size uint64
	if info, err := f.Stat(); err == nil {
		size = uint64(info.Size())
	}
	ll.Debug("Processing file", slog.String("size", humanize.Bytes(size)))

	p, err := aggregateReader(ctx, f, path)
	if err != nil {
		return nil, err
	}

	if !p.Schema.Supported() {
		ll.Warn("Skipping file without a usable header")
		return p, nil
	}

	ll.Info("Finished file",
		slog.String("schema", p.Schema.String()),
		slog.String("total", humanize.Comma(p.Stats.TotalRecords)),
		slog.String("bad", humanize.Comma(p.Stats.BadRecords)),
		slog.Int64("maxDuration", p.Stats.MaxDuration),
		slog.Int64("minDuration", p.Stats.MinDuration))
	return p, nil
}

func aggregateReader(ctx context.Context, r io.Reader, path string) (*Partial, error) {
	p := newPartial(path)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return p, nil
	}
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	layout := tripparse.DetectSchema(header)
	p.Schema = layout.Schema
	if !layout.Supported() {
		return p, nil
	}

	for {
		if p.Stats.TotalRecords%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("aggregating %s: %w", path, err)
			}
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.As(err, &pe) {
				p.Stats.TotalRecords++
				p.Stats.BadRecords++
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		p.Stats.TotalRecords++
		trip, err := layout.Parse(row)
		if err != nil {
			p.Stats.BadRecords++
			continue
		}

		p.Days.GetOrCreate(trip.Date).Add(trip.Hour, trip.Duration)
		p.Stats.observe(trip.Date, trip.Duration)
	}

	return p, nil
}
