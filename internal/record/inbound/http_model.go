package inbound

import (
	"encoding/json"
	"net/http"

	"github.com/shandysiswandi/gorecord/internal/record/entity"
)

type AddBatchRequest struct {
	Data json.RawMessage `json:"data"`
}

type AliasRequest struct {
	Header string `json:"header"`
	Field  string `json:"field"`
}

type RecordsResponse struct {
	Records []entity.Record `json:"records"`
}

func (r RecordsResponse) Meta() map[string]any {
	return map[string]any{"total": len(r.Records)}
}

type FieldsResponse struct {
	Fields []string `json:"fields"`
}

type AddBatchResponse struct {
	RecordCount  int    `json:"recordCount"`
	BatchID      string `json:"batchId"`
	TotalRecords int    `json:"totalRecords"`
}

func (AddBatchResponse) StatusCode() int {
	return http.StatusCreated
}

func (AddBatchResponse) Message() string {
	return "batch added"
}

type UploadResponse struct {
	AddBatchResponse
	Filename string `json:"filename"`
}

func (UploadResponse) Message() string {
	return "file imported"
}

type DeleteRecordResponse struct {
	RemainingCount int `json:"remainingCount"`
}

func (DeleteRecordResponse) Message() string {
	return "record deleted"
}

type DeleteBatchResponse struct {
	DeletedCount   int `json:"deletedCount"`
	RemainingCount int `json:"remainingCount"`
}

func (DeleteBatchResponse) Message() string {
	return "batch deleted"
}

type Batch struct {
	BatchID     string `json:"batchId"`
	UploadDate  string `json:"uploadDate"`
	RecordCount int    `json:"recordCount"`
}

// BatchList is sorted newest first.
type BatchList []Batch

func (b BatchList) Meta() map[string]any {
	return map[string]any{"total": len(b)}
}

// LastBatchResponse encodes a missing pointer as null.
type LastBatchResponse struct {
	LastBatchID *string `json:"lastBatchId"`
}

type AliasResponse struct {
	Header string `json:"header"`
	Field  string `json:"field"`
}

type AliasesResponse struct {
	Aliases []AliasResponse `json:"aliases"`
}
