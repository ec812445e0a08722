package results

import (
	"context"
	"time"

	"github.com/handwriteio/batchview/internal/batch/entity"
)

// Notifier receives fetch lifecycle events emitted by NextChunk.
type Notifier interface {
	Publish(ctx context.Context, event entity.FetchEvent) error
}

// NextChunk pulls the next page of rows from the importer process.
//
// It waits for the importer handle to resolve, then requests one page from
// the connection. An empty page means end of stream and yields (nil, nil).
// A non-empty page yields a page-scoped view over that page's records and
// metadata fragment; the page view answers the row projections for its page
// and can fetch the following page, but whole-batch aggregates stay
// unavailable on it.
//
// Failures from the handle or the connection are returned as-is: no retry,
// no partial page. Calls must be serialized by the caller; the underlying
// connection answers one request at a time.
func (r *Results) NextChunk(ctx context.Context) (*Results, error) {
	if !r.meta.Chunked {
		return nil, modeViolation("NextChunk", "read rows directly with ValidData, AllData, or RawOutput")
	}

	*r.fetches++
	seq := *r.fetches
	start := time.Now()

	r.notify(ctx, entity.FetchEvent{
		BatchID: r.meta.ID,
		Seq:     seq,
		Phase:   entity.FetchStarted,
	})

	conn, err := r.handle.Resolve(ctx)
	if err != nil {
		r.notifySettled(ctx, seq, 0, start, err)
		return nil, err
	}

	page, err := conn.NextPage(ctx)
	if err != nil {
		r.notifySettled(ctx, seq, 0, start, err)
		return nil, err
	}

	r.notifySettled(ctx, seq, len(page.Records), start, nil)

	if len(page.Records) == 0 {
		return nil, nil
	}

	meta := page.Meta
	// A fragment always stays chunk-compatible, even when the importer
	// omitted the flag on it.
	meta.Chunked = true

	next := &Results{
		records:  page.Records,
		meta:     meta,
		handle:   r.handle,
		pageView: true,
		notifier: r.notifier,
		fetches:  r.fetches,
	}

	return next, nil
}

func (r *Results) notify(ctx context.Context, event entity.FetchEvent) {
	if r.notifier == nil {
		return
	}
	// Best effort: a full or closed bus never fails a fetch.
	_ = r.notifier.Publish(ctx, event)
}

func (r *Results) notifySettled(ctx context.Context, seq, records int, start time.Time, err error) {
	event := entity.FetchEvent{
		BatchID:   r.meta.ID,
		Seq:       seq,
		Phase:     entity.FetchSettled,
		Records:   records,
		ElapsedMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		event.Err = err.Error()
	}
	r.notify(ctx, event)
}
