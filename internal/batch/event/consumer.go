package event

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/handwriteio/batchview/internal/batch/entity"
)

type Handler interface {
	Handle(ctx context.Context, event entity.FetchEvent) error
}

type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
}

// AuditConsumer drains the bus and hands every fetch event to the handler,
// deduplicating by event id and retrying transient handler failures.
type AuditConsumer struct {
	bus         *Bus
	handler     Handler
	workers     int
	maxRetries  int
	baseBackoff time.Duration
	seen        sync.Map
	wg          sync.WaitGroup
}

func NewAuditConsumer(bus *Bus, handler Handler, cfg ConsumerConfig) *AuditConsumer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 4
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}

	return &AuditConsumer{
		bus:         bus,
		handler:     handler,
		workers:     workers,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
	}
}

func (c *AuditConsumer) Start() {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
}

func (c *AuditConsumer) Stop(ctx context.Context) error {
	if c.bus != nil {
		c.bus.Close()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *AuditConsumer) worker() {
	defer c.wg.Done()

	for event := range c.bus.Subscribe() {
		c.processEvent(event)
	}
}

func (c *AuditConsumer) processEvent(event entity.FetchEvent) {
	if c.handler == nil {
		return
	}

	if event.EventID != "" {
		if _, loaded := c.seen.LoadOrStore(event.EventID, struct{}{}); loaded {
			slog.Info("skip duplicate fetch event", "event_id", event.EventID, "batch_id", event.BatchID)
			return
		}
	}

	backoff := c.baseBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := c.handler.Handle(context.Background(), event)
		if err == nil {
			return
		}

		if attempt == c.maxRetries {
			slog.Error("failed to audit fetch event after retries", "event_id", event.EventID, "batch_id", event.BatchID, "error", err)
			return
		}

		if !sleepBackoff(backoff) {
			return
		}
		backoff *= 2
	}
}

func sleepBackoff(d time.Duration) bool {
	if d <= 0 {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	<-timer.C
	return true
}

// LogAuditor writes each fetch event to the structured log.
type LogAuditor struct{}

func (LogAuditor) Handle(ctx context.Context, event entity.FetchEvent) error {
	if event.EventID == "" {
		return errors.New("missing event id")
	}

	switch event.Phase {
	case entity.FetchStarted:
		slog.Info("chunk fetch started", "event_id", event.EventID, "batch_id", event.BatchID, "seq", event.Seq)
	case entity.FetchSettled:
		if event.Err != "" {
			slog.Warn("chunk fetch failed", "event_id", event.EventID, "batch_id", event.BatchID, "seq", event.Seq, "elapsed_ms", event.ElapsedMS, "error", event.Err)
			return nil
		}
		slog.Info("chunk fetch settled", "event_id", event.EventID, "batch_id", event.BatchID, "seq", event.Seq, "records", event.Records, "elapsed_ms", event.ElapsedMS)
	}

	return nil
}
