package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/handwriteio/batchview/internal/batch/entity"
	"github.com/handwriteio/batchview/internal/batch/importer"
	"github.com/handwriteio/batchview/internal/batch/results"
	"github.com/handwriteio/batchview/internal/pkg/pkgerror"
	"github.com/handwriteio/batchview/internal/pkg/pkguid"
)

type Store interface {
	CreateBatch(ctx context.Context, view *results.Results) error
	GetBatch(ctx context.Context, batchID string) (*results.Results, error)
	FetchNext(ctx context.Context, batchID string) (*results.Results, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.FetchEvent) error
}

type Runner interface {
	Go(ctx context.Context, f func(ctx context.Context) error)
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Store   Store
	Events  EventPublisher
	Runner  Runner
	Clock   Clock
	ID      pkguid.StringID
	Seq     pkguid.NumberID
	Dialer  importer.Dialer
	RootCtx context.Context
}

type Usecase struct {
	store   Store
	events  EventPublisher
	runner  Runner
	clock   Clock
	id      pkguid.StringID
	seq     pkguid.NumberID
	dialer  importer.Dialer
	rootCtx context.Context
}

func New(dep Dependency) *Usecase {
	root := dep.RootCtx
	if root == nil {
		root = context.Background()
	}

	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	return &Usecase{
		store:   dep.Store,
		events:  dep.Events,
		runner:  dep.Runner,
		clock:   clock,
		id:      dep.ID,
		seq:     dep.Seq,
		dialer:  dep.Dialer,
		rootCtx: root,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Register snapshots a finished import into the store and returns the
// assigned batch identifier. For a chunked batch the importer endpoint is
// required; the handle gets warmed in the background so the first NextChunk
// does not pay for the dial.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	if u.store == nil || u.id == nil {
		return RegisterResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	meta := in.Meta
	if meta.ID == "" {
		meta.ID = u.id.Generate()
	}
	if meta.CreatedAt == nil {
		now := u.clock.Now().UTC()
		meta.CreatedAt = &now
	}

	records := make([]entity.Record, len(in.Records))
	copy(records, in.Records)
	if u.seq != nil {
		for i := range records {
			if records[i].Sequence == 0 {
				records[i].Sequence = u.seq.Generate()
			}
		}
	}

	var handle importer.Handle
	if meta.Chunked {
		if in.Endpoint == "" {
			return RegisterResult{}, pkgerror.NewInvalidInput(errors.New("importer_endpoint is required for a chunked batch"))
		}
		if u.dialer == nil {
			return RegisterResult{}, pkgerror.NewServer(errors.New("missing dialer"))
		}
		handle = u.dialer.Handle(in.Endpoint)
	}

	var opts []results.Option
	if u.events != nil {
		opts = append(opts, results.WithNotifier(&fetchNotifier{id: u.id, events: u.events}))
	}

	view := results.New(records, meta, handle, opts...)
	if err := u.store.CreateBatch(ctx, view); err != nil {
		return RegisterResult{}, normalizeErr(err)
	}

	if handle != nil && u.runner != nil {
		u.runner.Go(u.rootCtx, func(ctx context.Context) error {
			warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if _, err := handle.Resolve(warmCtx); err != nil {
				slog.WarnContext(ctx, "importer warm-up failed", "batch_id", meta.ID, "error", err)
			}
			return nil
		})
	}

	return RegisterResult{BatchID: meta.ID, Chunked: meta.Chunked}, nil
}

func (u *Usecase) Meta(ctx context.Context, batchID string) (MetaResult, error) {
	view, err := u.getBatch(ctx, batchID)
	if err != nil {
		return MetaResult{}, err
	}

	return newMetaResult(view), nil
}

// Rows reads one row projection of the batch. Pagination slices the
// projection after filtering; page and pageSize default to the whole
// projection when zero.
func (u *Usecase) Rows(ctx context.Context, batchID string, kind entity.ViewKind, page, pageSize int) (RowsResult, error) {
	if page < 0 || pageSize < 0 {
		return RowsResult{}, pkgerror.NewInvalidInput(errors.New("invalid pagination"))
	}

	view, err := u.getBatch(ctx, batchID)
	if err != nil {
		return RowsResult{}, err
	}

	rows, err := projectRows(view, kind)
	if err != nil {
		return RowsResult{}, normalizeErr(err)
	}

	total := len(rows)
	if page > 0 && pageSize > 0 {
		start := (page - 1) * pageSize
		if start > total {
			start = total
		}
		end := start + pageSize
		if end > total {
			end = total
		}
		rows = rows[start:end]
	}

	return RowsResult{
		BatchID:  batchID,
		View:     kind,
		Rows:     rows,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

func (u *Usecase) Stats(ctx context.Context, batchID string) (StatsResult, error) {
	view, err := u.getBatch(ctx, batchID)
	if err != nil {
		return StatsResult{}, err
	}

	stats, err := view.Stats()
	if err != nil {
		return StatsResult{}, normalizeErr(err)
	}

	return StatsResult{
		BatchID:        batchID,
		TotalRows:      stats.TotalRows,
		AcceptedRows:   stats.AcceptedRows,
		DeletedRows:    stats.DeletedRows,
		SkippedRows:    stats.SkippedRows,
		AcceptanceRate: stats.AcceptanceRate(),
	}, nil
}

// NextChunk fetches the next page of a chunked batch. Done flips to true at
// end of stream and stays true on later calls.
func (u *Usecase) NextChunk(ctx context.Context, batchID string) (ChunkResult, error) {
	page, err := u.store.FetchNext(ctx, batchID)
	if err != nil {
		return ChunkResult{}, mapStoreErr(err)
	}

	if page == nil {
		return ChunkResult{BatchID: batchID, Done: true}, nil
	}

	records, err := page.RawOutput()
	if err != nil {
		return ChunkResult{}, normalizeErr(err)
	}

	return ChunkResult{
		BatchID: batchID,
		Records: records,
	}, nil
}

func (u *Usecase) getBatch(ctx context.Context, batchID string) (*results.Results, error) {
	if batchID == "" {
		return nil, pkgerror.NewInvalidInput(errors.New("batch_id is required"))
	}

	view, err := u.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	return view, nil
}

func projectRows(view *results.Results, kind entity.ViewKind) ([]map[string]any, error) {
	switch kind {
	case entity.ViewRaw:
		records, err := view.RawOutput()
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			rows = append(rows, rec.Data)
		}
		return rows, nil
	case entity.ViewValid, "":
		return view.ValidData()
	case entity.ViewDeleted:
		return view.DeletedData()
	case entity.ViewAll:
		return view.AllData()
	default:
		return nil, pkgerror.NewInvalidInput(errors.New("unknown view kind"))
	}
}

// fetchNotifier stamps every fetch event with a fresh event identifier
// before handing it to the bus.
type fetchNotifier struct {
	id     pkguid.StringID
	events EventPublisher
}

func (n *fetchNotifier) Publish(ctx context.Context, event entity.FetchEvent) error {
	event.EventID = n.id.Generate()
	return n.events.Publish(ctx, event)
}

func mapStoreErr(err error) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewBusiness("batch not found", pkgerror.CodeNotFound)
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
