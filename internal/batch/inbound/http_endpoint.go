package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/handwriteio/batchview/internal/batch/entity"
	"github.com/handwriteio/batchview/internal/batch/usecase"
	"github.com/handwriteio/batchview/internal/pkg/pkgerror"
	"github.com/handwriteio/batchview/internal/pkg/pkgrouter"
)

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Register(ctx context.Context, r *http.Request) (any, error) {
	if r.Body == nil {
		return nil, pkgerror.NewInvalidInput(errors.New("empty request body"))
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, pkgerror.NewInvalidFormat()
	}

	result, err := h.uc.Register(ctx, usecase.RegisterInput{
		Records:  req.Records,
		Meta:     req.Meta,
		Endpoint: req.ImporterEndpoint,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{BatchID: result.BatchID, Chunked: result.Chunked}, nil
}

func (h *HTTPEndpoint) Meta(ctx context.Context, r *http.Request) (any, error) {
	batchID, err := pathBatchID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Meta(ctx, batchID)
	if err != nil {
		return nil, err
	}

	return toMetaResponse(result), nil
}

func (h *HTTPEndpoint) Rows(ctx context.Context, r *http.Request) (any, error) {
	batchID, err := pathBatchID(ctx)
	if err != nil {
		return nil, err
	}

	query := r.URL.Query()
	kind, err := parseViewKind(query.Get("view"))
	if err != nil {
		return nil, err
	}

	page, pageSize, err := parsePagination(query.Get("page"), query.Get("page_size"))
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Rows(ctx, batchID, kind, page, pageSize)
	if err != nil {
		return nil, err
	}

	return RowsResponse{
		BatchID:  result.BatchID,
		View:     result.View,
		Rows:     result.Rows,
		page:     result.Page,
		pageSize: result.PageSize,
		total:    result.Total,
	}, nil
}

func (h *HTTPEndpoint) Stats(ctx context.Context, r *http.Request) (any, error) {
	batchID, err := pathBatchID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Stats(ctx, batchID)
	if err != nil {
		return nil, err
	}

	return StatsResponse{
		BatchID:        result.BatchID,
		TotalRows:      result.TotalRows,
		AcceptedRows:   result.AcceptedRows,
		DeletedRows:    result.DeletedRows,
		SkippedRows:    result.SkippedRows,
		AcceptanceRate: result.AcceptanceRate,
	}, nil
}

func (h *HTTPEndpoint) NextChunk(ctx context.Context, r *http.Request) (any, error) {
	batchID, err := pathBatchID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.NextChunk(ctx, batchID)
	if err != nil {
		return nil, err
	}

	records := result.Records
	if records == nil {
		records = []entity.Record{}
	}

	return ChunkResponse{
		BatchID: result.BatchID,
		Records: records,
		Done:    result.Done,
	}, nil
}

func pathBatchID(ctx context.Context) (string, error) {
	batchID := strings.TrimSpace(pkgrouter.GetParam(ctx, "batch_id"))
	if batchID == "" {
		return "", pkgerror.NewInvalidInput(errors.New("batch_id is required"))
	}
	return batchID, nil
}

func parseViewKind(raw string) (entity.ViewKind, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", string(entity.ViewValid):
		return entity.ViewValid, nil
	case string(entity.ViewRaw):
		return entity.ViewRaw, nil
	case string(entity.ViewDeleted):
		return entity.ViewDeleted, nil
	case string(entity.ViewAll):
		return entity.ViewAll, nil
	default:
		return "", pkgerror.NewInvalidInput(errors.New("invalid view filter"))
	}
}

func parsePagination(pageRaw, sizeRaw string) (int, int, error) {
	page := 0
	pageSize := 0

	if pageRaw != "" {
		value, err := strconv.Atoi(pageRaw)
		if err != nil || value < 1 {
			return 0, 0, pkgerror.NewInvalidInput(errors.New("invalid page"))
		}
		page = value
	}

	if sizeRaw != "" {
		value, err := strconv.Atoi(sizeRaw)
		if err != nil || value < 1 {
			return 0, 0, pkgerror.NewInvalidInput(errors.New("invalid page_size"))
		}
		if value > 1000 {
			value = 1000
		}
		pageSize = value
	}

	// Page without size (or the reverse) gets the default size.
	if page > 0 && pageSize == 0 {
		pageSize = 100
	}
	if pageSize > 0 && page == 0 {
		page = 1
	}

	return page, pageSize, nil
}
