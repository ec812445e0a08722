package inbound

import (
	"context"

	"github.com/handwriteio/batchview/internal/batch/entity"
	"github.com/handwriteio/batchview/internal/batch/usecase"
	"github.com/handwriteio/batchview/internal/pkg/pkgrouter"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (usecase.RegisterResult, error)
	Meta(ctx context.Context, batchID string) (usecase.MetaResult, error)
	Rows(ctx context.Context, batchID string, kind entity.ViewKind, page, pageSize int) (usecase.RowsResult, error)
	Stats(ctx context.Context, batchID string) (usecase.StatsResult, error)
	NextChunk(ctx context.Context, batchID string) (usecase.ChunkResult, error)
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/batches", end.Register)

	r.GET("/batches/:batch_id", end.Meta)
	r.GET("/batches/:batch_id/rows", end.Rows) // ?view=&page=&page_size=
	r.GET("/batches/:batch_id/stats", end.Stats)

	r.POST("/batches/:batch_id/chunks", end.NextChunk)
}
