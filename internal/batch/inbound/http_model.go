package inbound

import (
	"net/http"
	"time"

	"github.com/handwriteio/batchview/internal/batch/entity"
	"github.com/handwriteio/batchview/internal/batch/usecase"
)

type RegisterRequest struct {
	Records          []entity.Record  `json:"records"`
	Meta             entity.BatchMeta `json:"meta"`
	ImporterEndpoint string           `json:"importer_endpoint,omitempty"`
}

type RegisterResponse struct {
	BatchID string `json:"batch_id"`
	Chunked bool   `json:"chunked"`
}

func (RegisterResponse) StatusCode() int {
	return http.StatusCreated
}

func (RegisterResponse) Message() string {
	return "batch registered"
}

type MetaResponse struct {
	BatchID        string                `json:"batch_id"`
	Chunked        bool                  `json:"chunked"`
	Filename       string                `json:"filename,omitempty"`
	Managed        bool                  `json:"managed"`
	Manual         *bool                 `json:"manual,omitempty"`
	Config         map[string]any        `json:"config,omitempty"`
	ParsingConfig  map[string]any        `json:"parsing_config,omitempty"`
	SkippedRows    *int64                `json:"skipped_rows,omitempty"`
	HeadersRaw     []string              `json:"headers_raw,omitempty"`
	HeadersMatched []string              `json:"headers_matched,omitempty"`
	EndUser        *entity.EndUser       `json:"end_user,omitempty"`
	OriginalFile   *entity.FileRef       `json:"original_file,omitempty"`
	CSVFile        *entity.FileRef       `json:"csv_file,omitempty"`
	CustomColumns  []entity.CustomColumn `json:"custom_columns,omitempty"`
	FailureReason  string                `json:"failure_reason,omitempty"`
	CreatedAt      *time.Time            `json:"created_at,omitempty"`
	SubmittedAt    *time.Time            `json:"submitted_at,omitempty"`
	FailedAt       *time.Time            `json:"failed_at,omitempty"`
}

func toMetaResponse(result usecase.MetaResult) MetaResponse {
	return MetaResponse{
		BatchID:        result.BatchID,
		Chunked:        result.Chunked,
		Filename:       result.Filename,
		Managed:        result.Managed,
		Manual:         result.Manual,
		Config:         result.Config,
		ParsingConfig:  result.ParsingConfig,
		SkippedRows:    result.SkippedRows,
		HeadersRaw:     result.HeadersRaw,
		HeadersMatched: result.HeadersMatched,
		EndUser:        result.EndUser,
		OriginalFile:   result.OriginalFile,
		CSVFile:        result.CSVFile,
		CustomColumns:  result.CustomColumns,
		FailureReason:  result.FailureReason,
		CreatedAt:      result.CreatedAt,
		SubmittedAt:    result.SubmittedAt,
		FailedAt:       result.FailedAt,
	}
}

type RowsResponse struct {
	BatchID  string           `json:"batch_id"`
	View     entity.ViewKind  `json:"view"`
	Rows     []map[string]any `json:"rows"`
	page     int
	pageSize int
	total    int
}

func (r RowsResponse) Meta() map[string]any {
	meta := map[string]any{
		"total": r.total,
	}
	if r.page > 0 {
		meta["page"] = r.page
		meta["page_size"] = r.pageSize
	}
	return meta
}

type StatsResponse struct {
	BatchID        string  `json:"batch_id"`
	TotalRows      int64   `json:"total_rows"`
	AcceptedRows   int64   `json:"accepted_rows"`
	DeletedRows    int64   `json:"deleted_rows"`
	SkippedRows    int64   `json:"skipped_rows"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}

type ChunkResponse struct {
	BatchID string          `json:"batch_id"`
	Records []entity.Record `json:"records"`
	Done    bool            `json:"done"`
}
