package bootstrap

import (
	"catalog-bootstrapper/core/status"

	"go.uber.org/zap"
)

// areaReporter folds area progress into the status aggregator and the event stream.
type areaReporter struct {
	b    *Bootstrapper
	area status.Area
	log  *zap.Logger
}

func (b *Bootstrapper) reporter(area status.Area) *areaReporter {
	return &areaReporter{b: b, area: area, log: b.logger.With(zap.String("area", string(area)))}
}

func (r *areaReporter) Progress(progress float64, message string) {
	snap := r.b.status.SetProgress(r.area, progress)
	r.log.Debug("Area progress", zap.Float64("progress", progress), zap.String("message", message))

	r.b.events.publish(Event{Type: UpdateEvent(r.area), Area: r.area, Progress: &progress, Message: message})
	r.b.events.publish(Event{Type: EventStatusUpdate, Status: &snap})
}

func (r *areaReporter) Warn(message string, cause error) {
	w := status.Warning{Message: message}
	if cause != nil {
		w.Cause = cause.Error()
	}
	snap := r.b.status.AddWarning(r.area, w)
	r.log.Warn(message, zap.Error(cause))

	r.b.events.publish(Event{Type: UpdateEvent(r.area), Area: r.area, Message: message, Warning: &w})
	r.b.events.publish(Event{Type: EventStatusUpdate, Status: &snap})
}

// Message publishes an informational area update without touching the status.
func (r *areaReporter) Message(message string) {
	r.log.Debug(message)
	r.b.events.publish(Event{Type: UpdateEvent(r.area), Area: r.area, Message: message})
}
