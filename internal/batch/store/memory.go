// Package store keeps registered batch views in memory.
package store

import (
	"context"
	"sync"

	"github.com/handwriteio/batchview/internal/batch/results"
	"github.com/handwriteio/batchview/internal/pkg/pkgerror"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	batches map[string]*batchRecord
}

// batchRecord tracks one registered batch. The mutex serializes chunk
// fetches for the batch: the importer connection answers one request at a
// time, so concurrent FetchNext calls queue up here. cursor points at the
// view that fetches the following page; done sticks once the stream ended
// so later calls never touch the importer again.
type batchRecord struct {
	mu     sync.Mutex
	view   *results.Results
	cursor *results.Results
	done   bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		batches: make(map[string]*batchRecord),
	}
}

func (s *InMemoryStore) CreateBatch(ctx context.Context, view *results.Results) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.batches[view.BatchID()]; exists {
		return pkgerror.NewBusiness("batch already registered", pkgerror.CodeConflict)
	}

	s.batches[view.BatchID()] = &batchRecord{
		view:   view,
		cursor: view,
	}

	return nil
}

func (s *InMemoryStore) GetBatch(ctx context.Context, batchID string) (*results.Results, error) {
	rec, err := s.get(batchID)
	if err != nil {
		return nil, err
	}

	return rec.view, nil
}

// FetchNext pulls the next page for the batch and advances the cursor. It
// returns (nil, nil) at end of stream, and keeps returning that once the
// stream ended.
func (s *InMemoryStore) FetchNext(ctx context.Context, batchID string) (*results.Results, error) {
	rec, err := s.get(batchID)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.done {
		return nil, nil
	}

	page, err := rec.cursor.NextChunk(ctx)
	if err != nil {
		return nil, err
	}

	if page == nil {
		rec.done = true
		return nil, nil
	}

	rec.cursor = page
	return page, nil
}

func (s *InMemoryStore) get(batchID string) (*batchRecord, error) {
	s.mu.RLock()
	rec, ok := s.batches[batchID]
	s.mu.RUnlock()
	if !ok {
		return nil, pkgerror.ErrNotFound
	}

	return rec, nil
}
