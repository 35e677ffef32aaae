package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/gorecord/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkglock"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkgmetrics"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkguid"
	"github.com/shandysiswandi/gorecord/internal/record/event"
	"github.com/shandysiswandi/gorecord/internal/record/inbound"
	"github.com/shandysiswandi/gorecord/internal/record/ingest"
	"github.com/shandysiswandi/gorecord/internal/record/store"
	"github.com/shandysiswandi/gorecord/internal/record/usecase"
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Metrics   *pkgmetrics.Registry
	Context   context.Context
	ID        pkguid.StringID
	EventID   pkguid.NumberID
}

func New(dep Dependency) (func(context.Context) error, error) {
	records, lastBatch, err := newStores(dep.Config)
	if err != nil {
		return nil, err
	}

	aliases, err := ingest.NewAliasTable(dep.Config.GetString("ingest.aliases_path"))
	if err != nil {
		return nil, fmt.Errorf("load alias table: %w", err)
	}

	bus := event.NewBus(int(dep.Config.GetInt("events.buffer")))
	consumer := event.NewAuditConsumer(bus, event.NewAuditor(dep.Metrics), event.ConsumerConfig{
		Workers: int(dep.Config.GetInt("events.workers")),
	})
	consumer.Start()

	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}

	uc := usecase.New(usecase.Dependency{
		Records:   records,
		LastBatch: lastBatch,
		Importer:  ingest.NewParser(aliases),
		Aliases:   aliases,
		Events:    bus,
		Runner:    dep.Goroutine,
		ID:        dep.ID,
		EventID:   dep.EventID,
		RootCtx:   dep.Context,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Config.GetInt("ingest.max_upload_bytes"))

	return consumer.Stop, nil
}

// newStores picks the storage driver. "memory" keeps everything in process and
// is meant for local runs; anything else uses the two JSON files.
func newStores(cfg pkgconfig.Config) (usecase.RecordStore, usecase.LastBatchStore, error) {
	if cfg.GetString("storage.driver") == "memory" {
		slog.Warn("record module uses in-memory storage, data is lost on restart")
		mem := store.NewInMemoryStore()
		return mem.Records(), mem.LastBatch(), nil
	}

	recordsPath := cfg.GetString("storage.records_path")
	lastBatchPath := cfg.GetString("storage.last_batch_path")
	if recordsPath == "" || lastBatchPath == "" {
		return nil, nil, errors.New("storage.records_path and storage.last_batch_path are required")
	}

	if err := store.Bootstrap(recordsPath, lastBatchPath); err != nil {
		return nil, nil, fmt.Errorf("bootstrap storage: %w", err)
	}

	opts := []pkglock.Option{pkglock.WithTimeout(cfg.GetDuration("storage.lock_timeout"))}
	if dir := cfg.GetString("storage.lock_dir"); dir != "" {
		opts = append(opts, pkglock.WithFileLock(dir))
	}
	locks := pkglock.NewManager(opts...)

	return store.NewRecordFile(recordsPath, locks), store.NewLastBatchFile(lastBatchPath, locks), nil
}
