package usecase

import (
	"time"

	"github.com/handwriteio/batchview/internal/batch/entity"
	"github.com/handwriteio/batchview/internal/batch/results"
)

type RegisterInput struct {
	Records []entity.Record
	Meta    entity.BatchMeta
	// Endpoint is the importer's websocket address. Required when the
	// batch is chunked, ignored otherwise.
	Endpoint string
}

type RegisterResult struct {
	BatchID string
	Chunked bool
}

type MetaResult struct {
	BatchID        string
	Chunked        bool
	Filename       string
	Managed        bool
	Manual         *bool
	Config         map[string]any
	ParsingConfig  map[string]any
	SkippedRows    *int64
	HeadersRaw     []string
	HeadersMatched []string
	EndUser        *entity.EndUser
	OriginalFile   *entity.FileRef
	CSVFile        *entity.FileRef
	CustomColumns  []entity.CustomColumn
	FailureReason  string
	CreatedAt      *time.Time
	SubmittedAt    *time.Time
	FailedAt       *time.Time
}

func newMetaResult(view *results.Results) MetaResult {
	return MetaResult{
		BatchID:        view.BatchID(),
		Chunked:        view.Chunked(),
		Filename:       view.Filename(),
		Managed:        view.Managed(),
		Manual:         view.Manual(),
		Config:         view.Config(),
		ParsingConfig:  view.ParsingConfig(),
		SkippedRows:    view.SkippedRows(),
		HeadersRaw:     view.HeadersRaw(),
		HeadersMatched: view.HeadersMatched(),
		EndUser:        view.EndUser(),
		OriginalFile:   view.OriginalFile(),
		CSVFile:        view.CSVFile(),
		CustomColumns:  view.CustomColumns(),
		FailureReason:  view.FailureReason(),
		CreatedAt:      view.CreatedAt(),
		SubmittedAt:    view.SubmittedAt(),
		FailedAt:       view.FailedAt(),
	}
}

type RowsResult struct {
	BatchID  string
	View     entity.ViewKind
	Rows     []map[string]any
	Page     int
	PageSize int
	Total    int
}

type StatsResult struct {
	BatchID        string
	TotalRows      int64
	AcceptedRows   int64
	DeletedRows    int64
	SkippedRows    int64
	AcceptanceRate float64
}

type ChunkResult struct {
	BatchID string
	Records []entity.Record
	Done    bool
}
