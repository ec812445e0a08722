package store

import (
	"context"
	"errors"
	"testing"

	"github.com/handwriteio/batchview/internal/batch/entity"
	"github.com/handwriteio/batchview/internal/batch/importer"
	"github.com/handwriteio/batchview/internal/batch/results"
	"github.com/handwriteio/batchview/internal/pkg/pkgerror"
)

func pagedHandle(pages ...importer.Page) importer.Handle {
	served := 0
	return importer.HandleFunc(func(context.Context) (importer.Connection, error) {
		return importer.ConnectionFunc(func(context.Context) (importer.Page, error) {
			if served >= len(pages) {
				return importer.Page{}, nil
			}
			page := pages[served]
			served++
			return page, nil
		}), nil
	})
}

func TestInMemoryStore_CreateBatch_Duplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewInMemoryStore()
	view := results.New(nil, entity.BatchMeta{ID: "batch-1"}, nil)

	if err := store.CreateBatch(ctx, view); err != nil {
		t.Fatalf("CreateBatch() err = %v", err)
	}

	err := store.CreateBatch(ctx, view)
	if err == nil {
		t.Fatal("CreateBatch() expected error, got nil")
	}

	var perr *pkgerror.Error
	if !errors.As(err, &perr) {
		t.Fatalf("CreateBatch() expected pkgerror.Error, got %T", err)
	}

	if perr.Code() != pkgerror.CodeConflict {
		t.Fatalf("CreateBatch() error code = %v, want %v", perr.Code(), pkgerror.CodeConflict)
	}
}

func TestInMemoryStore_GetBatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewInMemoryStore()
	view := results.New(nil, entity.BatchMeta{ID: "batch-2"}, nil)

	if err := store.CreateBatch(ctx, view); err != nil {
		t.Fatalf("CreateBatch() err = %v", err)
	}

	got, err := store.GetBatch(ctx, "batch-2")
	if err != nil {
		t.Fatalf("GetBatch() err = %v", err)
	}
	if got != view {
		t.Fatal("GetBatch() returned a different view")
	}
}

func TestInMemoryStore_FetchNext_AdvancesAndSticks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewInMemoryStore()

	handle := pagedHandle(
		importer.Page{
			Records: []entity.Record{{Sequence: 1, Data: map[string]any{"n": 1}, Valid: true}},
			Meta:    entity.BatchMeta{ID: "batch-3", Chunked: true},
		},
		importer.Page{
			Records: []entity.Record{{Sequence: 2, Data: map[string]any{"n": 2}, Valid: true}},
			Meta:    entity.BatchMeta{ID: "batch-3", Chunked: true},
		},
	)
	view := results.New(nil, entity.BatchMeta{ID: "batch-3", Chunked: true}, handle)

	if err := store.CreateBatch(ctx, view); err != nil {
		t.Fatalf("CreateBatch() err = %v", err)
	}

	first, err := store.FetchNext(ctx, "batch-3")
	if err != nil {
		t.Fatalf("FetchNext() err = %v", err)
	}
	if first == nil {
		t.Fatal("FetchNext() = nil before end of stream")
	}
	raw, err := first.RawOutput()
	if err != nil {
		t.Fatalf("page RawOutput() err = %v", err)
	}
	if raw[0].Sequence != 1 {
		t.Fatalf("first page sequence = %d, want 1", raw[0].Sequence)
	}

	second, err := store.FetchNext(ctx, "batch-3")
	if err != nil {
		t.Fatalf("second FetchNext() err = %v", err)
	}
	if second == nil {
		t.Fatal("second FetchNext() = nil before end of stream")
	}

	end, err := store.FetchNext(ctx, "batch-3")
	if err != nil {
		t.Fatalf("final FetchNext() err = %v", err)
	}
	if end != nil {
		t.Fatalf("final FetchNext() = %v, want nil at end of stream", end)
	}

	// End of stream sticks: the importer is never asked again.
	again, err := store.FetchNext(ctx, "batch-3")
	if err != nil {
		t.Fatalf("FetchNext() after end err = %v", err)
	}
	if again != nil {
		t.Fatalf("FetchNext() after end = %v, want nil", again)
	}
}

func TestInMemoryStore_FetchNext_SurfacesFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewInMemoryStore()

	wantErr := errors.New("importer crashed")
	handle := importer.HandleFunc(func(context.Context) (importer.Connection, error) {
		return nil, wantErr
	})
	view := results.New(nil, entity.BatchMeta{ID: "batch-4", Chunked: true}, handle)

	if err := store.CreateBatch(ctx, view); err != nil {
		t.Fatalf("CreateBatch() err = %v", err)
	}

	if _, err := store.FetchNext(ctx, "batch-4"); !errors.Is(err, wantErr) {
		t.Fatalf("FetchNext() err = %v, want %v", err, wantErr)
	}

	// A failed fetch does not end the stream.
	if _, err := store.FetchNext(ctx, "batch-4"); !errors.Is(err, wantErr) {
		t.Fatalf("retry FetchNext() err = %v, want %v", err, wantErr)
	}
}

func TestInMemoryStore_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewInMemoryStore()

	t.Run("GetBatch", func(t *testing.T) {
		_, err := store.GetBatch(ctx, "missing")
		if !errors.Is(err, pkgerror.ErrNotFound) {
			t.Fatalf("GetBatch() err = %v, want ErrNotFound", err)
		}
	})

	t.Run("FetchNext", func(t *testing.T) {
		_, err := store.FetchNext(ctx, "missing")
		if !errors.Is(err, pkgerror.ErrNotFound) {
			t.Fatalf("FetchNext() err = %v, want ErrNotFound", err)
		}
	})
}
