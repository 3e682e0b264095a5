// Package pipeline orchestrates receiving-directory scans: discover and
// classify candidate files, stream-validate their rows, publish accepted
// rows downstream, and archive processed files.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/xavier-xia-99/delphi-epidata/internal/domain"
	"github.com/xavier-xia-99/delphi-epidata/internal/importer"
	"github.com/xavier-xia-99/delphi-epidata/internal/observability"
)

// Discoverer lists and classifies every path under the receiving root.
type Discoverer interface {
	Discover(ctx context.Context) ([]importer.Classification, error)
}

// RowPublisher hands batches of validated rows to the downstream sink.
type RowPublisher interface {
	PublishBatch(ctx context.Context, rows []domain.SignalRow) error
}

// Archiver moves a processed file out of the receiving tree. ok selects
// the successful or failed bucket.
type Archiver interface {
	Archive(path string, ok bool) error
}

// Pipeline runs the scan loop. Scans fire on a fixed interval and on
// demand via the triggers channel (typically a filesystem watcher).
type Pipeline struct {
	discoverer Discoverer
	publisher  RowPublisher
	archiver   Archiver // nil disables archiving
	logger     *slog.Logger
	metrics    *observability.Metrics
	interval   time.Duration
	batchSize  int
	triggers   <-chan struct{}
	ready      atomic.Bool
}

// New creates a Pipeline. triggers may be nil for purely interval-driven
// scanning; archiver may be nil to leave processed files in place.
func New(d Discoverer, p RowPublisher, a Archiver, logger *slog.Logger, metrics *observability.Metrics,
	interval time.Duration, batchSize int, triggers <-chan struct{}) *Pipeline {
	return &Pipeline{
		discoverer: d,
		publisher:  p,
		archiver:   a,
		logger:     logger,
		metrics:    metrics,
		interval:   interval,
		batchSize:  batchSize,
		triggers:   triggers,
	}
}

// CheckReadiness returns nil once at least one scan has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no scan has completed yet")
	}
	return nil
}

// Run executes scans until the context is cancelled. The first scan runs
// immediately.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.interval, "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.runScan(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			p.runScan(ctx)
		case <-p.triggers:
			p.runScan(ctx)
		}
	}
}

// runScan performs one discover-validate-publish pass over the tree.
func (p *Pipeline) runScan(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	scanID := uuid.NewString()[:8]
	logger := p.logger.With("scan_id", scanID)
	start := time.Now()
	p.metrics.ScansTotal.Inc()

	files, err := p.discoverer.Discover(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("discovery failed", "error", err)
		}
		return
	}

	accepted := 0
	for _, c := range files {
		if ctx.Err() != nil {
			return
		}
		switch {
		case c.Accepted():
			accepted++
			p.metrics.FilesAccepted.Inc()
			p.processFile(ctx, logger, c)
		case c.Reason == importer.ReasonNotCandidate:
			p.metrics.FilesSkipped.WithLabelValues(string(c.Reason)).Inc()
			logger.Debug("skipping non-candidate path", "path", c.Path)
		default:
			p.metrics.FilesSkipped.WithLabelValues(string(c.Reason)).Inc()
			logger.Warn("rejecting path", "path", c.Path, "reason", c.Reason)
		}
	}

	p.metrics.ScanDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	if accepted > 0 {
		logger.Info("scan complete", "candidates", len(files), "accepted_files", accepted,
			"duration", time.Since(start))
	}
}

// processFile streams one accepted file: header check, row validation,
// batched publishing, then archiving. Row rejections are logged and
// counted; only infrastructure failures abort the file.
func (p *Pipeline) processFile(ctx context.Context, logger *slog.Logger, c importer.Classification) {
	d := c.Details
	logger = logger.With("path", c.Path, "source", d.Source, "signal", d.Signal,
		"geo_type", d.GeoType, "time_value", d.TimeValue)

	loader, err := importer.OpenCSV(c.Path, d.GeoType)
	if err != nil {
		p.metrics.FilesFailed.Inc()
		if errors.Is(err, importer.ErrInvalidHeader) {
			logger.Warn("file rejected", "error", err)
		} else {
			logger.Error("file unreadable", "error", err)
		}
		p.archive(logger, c.Path, false)
		return
	}
	defer loader.Close()

	var (
		batch        = make([]domain.SignalRow, 0, p.batchSize)
		acceptedRows int
		rejectedRows int
	)
	for {
		values, failedField, err := loader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.metrics.FilesFailed.Inc()
			logger.Error("read failed mid-file", "error", err)
			p.archive(logger, c.Path, false)
			return
		}
		if failedField != "" {
			rejectedRows++
			p.metrics.RowsRejected.WithLabelValues(failedField).Inc()
			logger.Warn("row rejected", "field", failedField)
			continue
		}

		acceptedRows++
		p.metrics.RowsAccepted.Inc()
		batch = append(batch, domain.NewSignalRow(*d, *values))
		if len(batch) == p.batchSize {
			if !p.publish(ctx, logger, batch) {
				p.archive(logger, c.Path, false)
				return
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 && !p.publish(ctx, logger, batch) {
		p.archive(logger, c.Path, false)
		return
	}

	logger.Info("file processed", "accepted_rows", acceptedRows, "rejected_rows", rejectedRows)
	p.archive(logger, c.Path, true)
}

func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, batch []domain.SignalRow) bool {
	if err := p.publisher.PublishBatch(ctx, batch); err != nil {
		p.metrics.FilesFailed.Inc()
		logger.Error("publish batch failed", "error", err, "batch_size", len(batch))
		return false
	}
	p.metrics.RowsPublished.Add(float64(len(batch)))
	return true
}

func (p *Pipeline) archive(logger *slog.Logger, path string, ok bool) {
	if p.archiver == nil {
		return
	}
	if err := p.archiver.Archive(path, ok); err != nil {
		logger.Error("archive failed", "error", err)
	}
}
