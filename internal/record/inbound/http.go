package inbound

import (
	"context"

	"github.com/shandysiswandi/gorecord/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gorecord/internal/record/entity"
	"github.com/shandysiswandi/gorecord/internal/record/usecase"
)

type uc interface {
	AddBatch(ctx context.Context, items []entity.Record) (usecase.AddBatchResult, error)
	Import(ctx context.Context, filename string, data []byte) (usecase.ImportResult, error)
	DeleteRecord(ctx context.Context, recordID string) (usecase.DeleteRecordResult, error)
	DeleteBatch(ctx context.Context, batchID string) (usecase.DeleteBatchResult, error)
	ListRecords(ctx context.Context) ([]entity.Record, error)
	ListFieldNames(ctx context.Context) ([]string, error)
	ListBatches(ctx context.Context) ([]entity.Batch, error)
	LastBatch(ctx context.Context) (usecase.LastBatchResult, error)
	Aliases(ctx context.Context) ([]usecase.Alias, error)
	LearnAlias(ctx context.Context, alias usecase.Alias) (usecase.Alias, error)
}

// RegisterHTTPEndpoint mounts the record routes. maxUpload caps spreadsheet
// uploads in bytes; zero or less falls back to defaultMaxUpload.
func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, maxUpload int64) {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	end := &HTTPEndpoint{uc: uc, maxUpload: maxUpload}

	r.GET("/records", end.ListRecords)
	r.GET("/records/fields", end.ListFieldNames)
	r.POST("/records", end.AddBatch)
	r.POST("/records/upload", end.Upload, pkgrouter.MaxBodyBytes(maxUpload+multipartOverhead))
	r.DELETE("/records/:id", end.DeleteRecord)

	r.GET("/batches", end.ListBatches)
	r.GET("/batches/last", end.LastBatch)
	r.DELETE("/batches/:batchId", end.DeleteBatch)

	r.GET("/aliases", end.Aliases)
	r.PUT("/aliases", end.LearnAlias)
}
