package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/lineart-prep/pkg/models"
)

// PipelineEvent represents a job lifecycle event
type PipelineEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	JobID          string                 `json:"job_id"`
	Kind           models.JobKind         `json:"kind"`
	Ref            string                 `json:"ref"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of pipeline event
type EventType string

const (
	// JobStarted when a pipeline run begins
	JobStarted EventType = "job_started"
	// JobCompleted when a pipeline run wrote its output
	JobCompleted EventType = "job_completed"
	// JobFailed when a pipeline run fails at any step
	JobFailed EventType = "job_failed"
	// ImageLoaded when an input or background is read
	ImageLoaded EventType = "image_loaded"
	// ImageLoadFailed when reading an input or background fails
	ImageLoadFailed EventType = "image_load_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event PipelineEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event PipelineEvent)
}

// LoggingObserver logs pipeline events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles pipeline events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event PipelineEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"job_id":     event.JobID,
		"kind":       event.Kind,
		"ref":        event.Ref,
	}
	if event.ProcessingTime > 0 {
		fields["processing_time"] = event.ProcessingTime.String()
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case JobStarted:
		entry.Info("Line-art job started")
	case JobCompleted:
		entry.Info("Line-art job completed")
	case JobFailed:
		entry.Error("Line-art job failed")
	case ImageLoaded:
		entry.Debug("Image loaded")
	case ImageLoadFailed:
		entry.Warn("Image load failed")
	default:
		entry.Info("Pipeline event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from pipeline events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalJobs           int64
	successfulJobs      int64
	failedJobs          int64
	jobsByKind          map[models.JobKind]int64
	totalProcessingTime time.Duration
	imagesLoaded        int64
	imageLoadErrors     int64
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		jobsByKind: make(map[models.JobKind]int64),
	}
}

// OnEvent handles pipeline events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event PipelineEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case JobStarted:
		o.totalJobs++
		o.jobsByKind[event.Kind]++
	case JobCompleted:
		o.successfulJobs++
		o.totalProcessingTime += event.ProcessingTime
	case JobFailed:
		o.failedJobs++
	case ImageLoaded:
		o.imagesLoaded++
	case ImageLoadFailed:
		o.imageLoadErrors++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns a snapshot of the counters
func (o *MetricsObserver) GetMetrics() models.MetricsResponse {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avg := time.Duration(0)
	if o.successfulJobs > 0 {
		avg = o.totalProcessingTime / time.Duration(o.successfulJobs)
	}

	byKind := make(map[string]int64, len(o.jobsByKind))
	for k, v := range o.jobsByKind {
		byKind[string(k)] = v
	}

	return models.MetricsResponse{
		TotalJobs:       o.totalJobs,
		SuccessfulJobs:  o.successfulJobs,
		FailedJobs:      o.failedJobs,
		JobsByKind:      byKind,
		AvgDurationSec:  avg.Seconds(),
		ImagesLoaded:    o.imagesLoaded,
		ImageLoadErrors: o.imageLoadErrors,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers event to every observer in subscription order
// before returning. A panicking observer is logged and skipped.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event PipelineEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	for _, observer := range observers {
		notify(ctx, observer, event)
	}
}

func notify(ctx context.Context, obs Observer, event PipelineEvent) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("observer", obs.GetObserverName()).
				WithField("panic", r).
				Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
