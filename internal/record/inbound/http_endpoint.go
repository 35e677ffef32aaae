package inbound

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/shandysiswandi/gorecord/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gorecord/internal/record/entity"
	"github.com/shandysiswandi/gorecord/internal/record/usecase"
)

const (
	defaultMaxUpload = 10 << 20
	// multipartOverhead leaves room for boundaries and part headers.
	multipartOverhead = 64 << 10
)

var errDataNotList = errors.New("data must be a non-empty list of records")

type HTTPEndpoint struct {
	uc        uc
	maxUpload int64
}

func (h *HTTPEndpoint) ListRecords(ctx context.Context, _ *http.Request) (any, error) {
	records, err := h.uc.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []entity.Record{}
	}

	return RecordsResponse{Records: records}, nil
}

func (h *HTTPEndpoint) ListFieldNames(ctx context.Context, _ *http.Request) (any, error) {
	fields, err := h.uc.ListFieldNames(ctx)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = []string{}
	}

	return FieldsResponse{Fields: fields}, nil
}

func (h *HTTPEndpoint) AddBatch(ctx context.Context, r *http.Request) (any, error) {
	items, err := decodeBatch(r)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.AddBatch(ctx, items)
	if err != nil {
		return nil, err
	}

	return toAddBatchResponse(result), nil
}

func (h *HTTPEndpoint) Upload(ctx context.Context, r *http.Request) (any, error) {
	part, err := extractMultipartFile(r)
	if err != nil {
		if isTooLarge(err) {
			return nil, h.errTooLarge()
		}
		return nil, err
	}
	defer func() { _ = part.Close() }()

	filename := filepath.Base(part.FileName())
	if filename == "" || filename == "." {
		return nil, pkgerror.NewInvalidInput(errors.New("file name is required"))
	}

	data, err := io.ReadAll(io.LimitReader(part, h.maxUpload+1))
	if err != nil {
		if isTooLarge(err) {
			return nil, h.errTooLarge()
		}
		return nil, pkgerror.NewInvalidFormat()
	}
	if int64(len(data)) > h.maxUpload {
		return nil, h.errTooLarge()
	}

	result, err := h.uc.Import(ctx, filename, data)
	if err != nil {
		return nil, err
	}

	return UploadResponse{
		AddBatchResponse: toAddBatchResponse(result.AddBatchResult),
		Filename:         result.Filename,
	}, nil
}

func (h *HTTPEndpoint) DeleteRecord(ctx context.Context, _ *http.Request) (any, error) {
	result, err := h.uc.DeleteRecord(ctx, pkgrouter.GetParam(ctx, "id"))
	if err != nil {
		return nil, err
	}

	return DeleteRecordResponse{RemainingCount: result.RemainingCount}, nil
}

func (h *HTTPEndpoint) ListBatches(ctx context.Context, _ *http.Request) (any, error) {
	batches, err := h.uc.ListBatches(ctx)
	if err != nil {
		return nil, err
	}

	out := make(BatchList, 0, len(batches))
	for _, b := range batches {
		out = append(out, Batch{
			BatchID:     b.BatchID,
			UploadDate:  b.UploadDate,
			RecordCount: b.RecordCount,
		})
	}

	return out, nil
}

func (h *HTTPEndpoint) LastBatch(ctx context.Context, _ *http.Request) (any, error) {
	result, err := h.uc.LastBatch(ctx)
	if err != nil {
		return nil, err
	}

	resp := LastBatchResponse{}
	if result.BatchID != "" {
		id := result.BatchID
		resp.LastBatchID = &id
	}

	return resp, nil
}

func (h *HTTPEndpoint) DeleteBatch(ctx context.Context, _ *http.Request) (any, error) {
	result, err := h.uc.DeleteBatch(ctx, pkgrouter.GetParam(ctx, "batchId"))
	if err != nil {
		return nil, err
	}

	return DeleteBatchResponse{
		DeletedCount:   result.DeletedCount,
		RemainingCount: result.RemainingCount,
	}, nil
}

func (h *HTTPEndpoint) Aliases(ctx context.Context, _ *http.Request) (any, error) {
	aliases, err := h.uc.Aliases(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]AliasResponse, 0, len(aliases))
	for _, a := range aliases {
		out = append(out, AliasResponse(a))
	}

	return AliasesResponse{Aliases: out}, nil
}

func (h *HTTPEndpoint) LearnAlias(ctx context.Context, r *http.Request) (any, error) {
	var req AliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, pkgerror.NewInvalidFormat()
	}

	alias, err := h.uc.LearnAlias(ctx, usecase.Alias{Header: req.Header, Field: req.Field})
	if err != nil {
		return nil, err
	}

	return AliasResponse(alias), nil
}

// decodeBatch reads {"data": [...]}. A body that is not JSON is a format
// error; a missing or non-list data member is invalid input.
func decodeBatch(r *http.Request) ([]entity.Record, error) {
	if r.Body == nil {
		return nil, pkgerror.NewInvalidFormat()
	}

	var req AddBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, pkgerror.NewInvalidFormat()
	}

	raw := bytes.TrimSpace(req.Data)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, pkgerror.NewInvalidInput(errDataNotList)
	}

	var items []entity.Record
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, pkgerror.NewInvalidInput(err)
	}
	if len(items) == 0 {
		return nil, pkgerror.NewInvalidInput(errDataNotList)
	}

	return items, nil
}

func (h *HTTPEndpoint) errTooLarge() error {
	return pkgerror.NewInvalidInput(fmt.Errorf("file exceeds %d bytes", h.maxUpload))
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func toAddBatchResponse(result usecase.AddBatchResult) AddBatchResponse {
	return AddBatchResponse{
		RecordCount:  result.RecordCount,
		BatchID:      result.BatchID,
		TotalRecords: result.TotalRecords,
	}
}

func extractMultipartFile(r *http.Request) (*multipart.Part, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, pkgerror.NewInvalidFormat()
	}

	for {
		part, err := reader.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, pkgerror.NewInvalidInput(errors.New("file part is required"))
			}
			if isTooLarge(err) {
				return nil, err
			}
			return nil, pkgerror.NewInvalidFormat()
		}

		if part.FormName() == "file" {
			return part, nil
		}
		_ = part.Close()
	}
}
