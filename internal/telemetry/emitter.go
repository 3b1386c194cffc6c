package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/USA-RedDragon/ota-server/internal/metrics"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

// AsyncEmitter queues events and hands them to a sink from a fixed pool of
// workers. Events arriving while the queue is full are dropped.
type AsyncEmitter struct {
	sink       Sink
	queue      chan Event
	timeout    time.Duration
	metrics    *metrics.Metrics
	activeJobs *xsync.Counter
	now        func() time.Time

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewAsyncEmitter(sink Sink, queueDepth, workers uint, timeout time.Duration, metrics *metrics.Metrics) *AsyncEmitter {
	if queueDepth == 0 {
		queueDepth = 1
	}
	if workers == 0 {
		workers = 1
	}
	e := &AsyncEmitter{
		sink:       sink,
		queue:      make(chan Event, queueDepth),
		timeout:    timeout,
		metrics:    metrics,
		activeJobs: xsync.NewCounter(),
		now:        time.Now,
	}
	for range workers {
		e.wg.Add(1)
		go e.work()
	}
	return e
}

func (e *AsyncEmitter) Emit(event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		e.metrics.IncrementTelemetryDropped()
		return
	}
	select {
	case e.queue <- event:
		e.metrics.SetTelemetryQueueSize(float64(len(e.queue)))
	default:
		e.metrics.IncrementTelemetryDropped()
		slog.Warn("Telemetry queue full, dropping event", "kind", event.Kind, "app_id", event.AppID, "device_id", event.DeviceID)
	}
}

// Pending reports events queued or in flight.
func (e *AsyncEmitter) Pending() int64 {
	return int64(len(e.queue)) + e.activeJobs.Value()
}

// Close stops accepting events, drains the queue and closes the sink.
func (e *AsyncEmitter) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	e.wg.Wait()
	return e.sink.Close()
}

func (e *AsyncEmitter) work() {
	defer e.wg.Done()
	for event := range e.queue {
		e.activeJobs.Inc()
		e.metrics.SetTelemetryQueueSize(float64(len(e.queue)))
		if err := e.send(event); err != nil {
			e.metrics.IncrementTelemetryEvents(e.sink.Name(), "error")
			slog.Warn("Failed to send telemetry event", "sink", e.sink.Name(), "kind", event.Kind, "error", err)
		} else {
			e.metrics.IncrementTelemetryEvents(e.sink.Name(), "ok")
		}
		e.activeJobs.Dec()
	}
}

func (e *AsyncEmitter) send(event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("telemetry sink panicked: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	return e.sink.Send(ctx, event)
}
