package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
)

// GallerySource loads the enrolled employees
type GallerySource interface {
	List(ctx context.Context) ([]domain.Employee, error)
}

// GalleryReporter periodically publishes the gallery gauges
type GalleryReporter struct {
	source    GallerySource
	metrics   *Metrics
	dimension int
	logger    *slog.Logger
	interval  time.Duration
	done      chan struct{}
}

// NewGalleryReporter creates a new gallery gauge worker
func NewGalleryReporter(source GallerySource, m *Metrics, dimension int, logger *slog.Logger, interval time.Duration) *GalleryReporter {
	if interval == 0 {
		interval = 1 * time.Minute
	}

	return &GalleryReporter{
		source:    source,
		metrics:   m,
		dimension: dimension,
		logger:    logger.With("component", "gallery_reporter"),
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start reports once and then on every tick until ctx ends or Stop is called
func (r *GalleryReporter) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("gallery reporter started", "interval", r.interval)
	r.Report(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("gallery reporter stopped")
			return
		case <-r.done:
			r.logger.Info("gallery reporter stopped")
			return
		case <-ticker.C:
			r.Report(ctx)
		}
	}
}

// Stop gracefully shuts down the reporter
func (r *GalleryReporter) Stop() {
	close(r.done)
}

// Report counts the gallery and the entries that need re-enrolment
func (r *GalleryReporter) Report(ctx context.Context) {
	gallery, err := r.source.List(ctx)
	if err != nil {
		r.logger.Error("failed to load gallery", "error", err)
		return
	}

	incompatible := 0
	for i := range gallery {
		if !gallery[i].HasEmbedding() || gallery[i].Face.Dimension() != r.dimension {
			incompatible++
		}
	}

	r.metrics.SetGallery(len(gallery), incompatible)
	if incompatible > 0 {
		r.logger.Warn("gallery has records that need re-enrolment",
			"total", len(gallery),
			"incompatible", incompatible,
			"dimension", r.dimension,
		)
	}
}
