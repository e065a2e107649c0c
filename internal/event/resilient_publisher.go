package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/osse101/StreamRealm_Go/internal/logger"
)

// Publisher is what services depend on to emit events after commit
type Publisher interface {
	PublishWithRetry(ctx context.Context, event Event)
}

type retryItem struct {
	event    Event
	attempts int
	lastErr  error
	due      time.Time
}

// ResilientPublisher publishes to a Bus and retries failures in the background
// with exponential backoff. Events that exhaust their retries go to a dead-letter file.
type ResilientPublisher struct {
	bus        Bus
	maxRetries int
	baseDelay  time.Duration
	deadLetter *DeadLetterWriter

	queue    chan retryItem
	shutdown chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewResilientPublisher creates a publisher and starts its retry worker
func NewResilientPublisher(bus Bus, maxRetries int, baseDelay time.Duration, deadLetterPath string) (*ResilientPublisher, error) {
	dlw, err := NewDeadLetterWriter(deadLetterPath)
	if err != nil {
		return nil, err
	}
	if maxRetries <= 0 {
		maxRetries = RetryMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = RetryInitialDelaySeconds * time.Second
	}

	rp := &ResilientPublisher{
		bus:        bus,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		deadLetter: dlw,
		queue:      make(chan retryItem, RetryQueueBufferSize),
		shutdown:   make(chan struct{}),
	}
	rp.wg.Add(1)
	go rp.worker()
	return rp, nil
}

// Publish satisfies Bus by publishing synchronously without retry
func (rp *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	return rp.bus.Publish(ctx, event)
}

// Subscribe delegates to the inner bus
func (rp *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	rp.bus.Subscribe(eventType, handler)
}

// PublishWithRetry publishes once and queues the event for retry on failure.
// It never blocks on the retry path.
func (rp *ResilientPublisher) PublishWithRetry(ctx context.Context, event Event) {
	err := rp.bus.Publish(ctx, event)
	if err == nil {
		return
	}

	logger.FromContext(ctx).Warn(LogMsgEventPublishFailed, "event_type", event.Type, "error", err)
	rp.enqueue(retryItem{event: event, attempts: 1, lastErr: err, due: time.Now().Add(CalculateRetryDelay(rp.baseDelay, 1))})
}

func (rp *ResilientPublisher) enqueue(item retryItem) {
	select {
	case <-rp.shutdown:
		rp.writeDeadLetter(item, LogMsgEventDroppedShutdown)
		return
	default:
	}

	select {
	case rp.queue <- item:
	default:
		rp.writeDeadLetter(item, LogMsgRetryQueueFull)
	}
}

func (rp *ResilientPublisher) worker() {
	defer rp.wg.Done()
	for {
		select {
		case <-rp.shutdown:
			return
		case item := <-rp.queue:
			if wait := time.Until(item.due); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-timer.C:
				case <-rp.shutdown:
					timer.Stop()
					rp.writeDeadLetter(item, LogMsgEventDroppedShutdown)
					return
				}
			}
			rp.attempt(item)
		}
	}
}

func (rp *ResilientPublisher) attempt(item retryItem) {
	ctx := context.Background()
	log := logger.FromContext(ctx)

	err := rp.bus.Publish(ctx, item.event)
	if err == nil {
		log.Info(LogMsgEventRetrySucceeded, "event_type", item.event.Type, "attempt", item.attempts+1)
		return
	}

	item.attempts++
	item.lastErr = err
	if item.attempts > rp.maxRetries {
		rp.writeDeadLetter(item, LogMsgEventRetryExhausted)
		return
	}

	log.Warn(LogMsgEventRetryFailed, "event_type", item.event.Type, "attempt", item.attempts, "error", err)
	item.due = time.Now().Add(CalculateRetryDelay(rp.baseDelay, item.attempts))
	rp.enqueue(item)
}

func (rp *ResilientPublisher) writeDeadLetter(item retryItem, reason string) {
	logger.Warn(reason, "event_type", item.event.Type, "attempts", item.attempts)
	if err := rp.deadLetter.Write(item.event, item.attempts, item.lastErr); err != nil {
		logger.Error(LogMsgDeadLetterWriteFailed, "error", err)
	}
}

// Shutdown stops the retry worker and dead-letters anything still queued
func (rp *ResilientPublisher) Shutdown(ctx context.Context) error {
	var err error
	rp.once.Do(func() {
		close(rp.shutdown)

		done := make(chan struct{})
		go func() {
			rp.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			logger.Warn(LogMsgShutdownTimeout)
			err = ctx.Err()
		}

		drained := 0
		for {
			select {
			case item := <-rp.queue:
				rp.writeDeadLetter(item, LogMsgEventDroppedShutdown)
				drained++
				continue
			default:
			}
			break
		}
		if drained > 0 {
			logger.Info(LogMsgQueueDrainedShutdown, "count", drained)
		}
		err = errors.Join(err, rp.deadLetter.Close())
	})
	return err
}
