package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/gorecord/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkglock"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkguid"
	"github.com/shandysiswandi/gorecord/internal/record/entity"
)

// RecordStore owns the persisted record collection.
type RecordStore interface {
	Load(ctx context.Context) ([]entity.Record, error)
	Update(ctx context.Context, fn func(records []entity.Record) ([]entity.Record, error)) error
}

// LastBatchStore owns the persisted last-batch pointer ("" means null).
type LastBatchStore interface {
	Load(ctx context.Context) (string, error)
	Replace(ctx context.Context, batchID string) error
	Update(ctx context.Context, fn func(current string) (next string, changed bool)) error
}

// Importer turns an uploaded spreadsheet into normalized records.
type Importer interface {
	Parse(ctx context.Context, filename string, data []byte) ([]entity.Record, error)
}

// AliasBook resolves spreadsheet headers to field names and learns new ones.
type AliasBook interface {
	List() map[string]string
	Learn(header, field string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.MutationEvent) error
}

type Runner interface {
	Go(ctx context.Context, name string, f func(ctx context.Context) error)
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Records   RecordStore
	LastBatch LastBatchStore
	Importer  Importer
	Aliases   AliasBook
	Events    EventPublisher
	Runner    Runner
	Clock     Clock
	ID        pkguid.StringID
	EventID   pkguid.NumberID
	RootCtx   context.Context
}

type Usecase struct {
	records   RecordStore
	lastBatch LastBatchStore
	importer  Importer
	aliases   AliasBook
	events    EventPublisher
	runner    Runner
	clock     Clock
	id        pkguid.StringID
	eventID   pkguid.NumberID
	rootCtx   context.Context
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
		records:   dep.Records,
		lastBatch: dep.LastBatch,
		importer:  dep.Importer,
		aliases:   dep.Aliases,
		events:    dep.Events,
		runner:    dep.Runner,
		clock:     clock,
		id:        dep.ID,
		eventID:   dep.EventID,
		rootCtx:   root,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// AddBatch stores items as one new batch. Reserved fields are always assigned
// here; caller values for id, batchId and uploadDate are discarded.
func (u *Usecase) AddBatch(ctx context.Context, items []entity.Record) (AddBatchResult, error) {
	if u.records == nil || u.lastBatch == nil || u.id == nil {
		return AddBatchResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	if len(items) == 0 {
		return AddBatchResult{}, pkgerror.NewInvalidInput(errors.New("data must be a non-empty list of records"))
	}

	batchID := u.id.Generate()
	uploadDate := entity.FormatTime(u.clock.Now())

	fresh := make([]entity.Record, 0, len(items))
	for _, item := range items {
		rec := entity.NewRecord()
		rec.Set(entity.FieldID, entity.String(u.id.Generate()))
		rec.Set(entity.FieldBatchID, entity.String(batchID))
		rec.Set(entity.FieldUploadDate, entity.String(uploadDate))
		for _, key := range item.Keys() {
			if entity.IsReserved(key) {
				continue
			}
			val, _ := item.Get(key)
			rec.Set(key, val)
		}
		fresh = append(fresh, rec)
	}

	total := 0
	err := u.records.Update(ctx, func(records []entity.Record) ([]entity.Record, error) {
		records = append(records, fresh...)
		total = len(records)
		return records, nil
	})
	if err != nil {
		return AddBatchResult{}, mapStoreErr(err, "")
	}

	// The collection is already committed; a pointer failure is reported but not undone.
	if err := u.lastBatch.Replace(ctx, batchID); err != nil {
		slog.ErrorContext(ctx, "batch stored but last batch pointer not updated", "batch_id", batchID, "error", err)
		return AddBatchResult{}, mapStoreErr(err, "")
	}

	slog.InfoContext(ctx, "batch added", "batch_id", batchID, "record_count", len(fresh), "total_records", total)
	u.publish(entity.MutationEvent{
		Kind:      entity.EventBatchAdded,
		BatchID:   batchID,
		Count:     len(fresh),
		Remaining: total,
	})

	return AddBatchResult{
		RecordCount:  len(fresh),
		BatchID:      batchID,
		TotalRecords: total,
	}, nil
}

// DeleteRecord removes a single record. The last-batch pointer is left as is.
func (u *Usecase) DeleteRecord(ctx context.Context, recordID string) (DeleteRecordResult, error) {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return DeleteRecordResult{}, pkgerror.NewInvalidInput(errors.New("record id is required"))
	}

	remaining := 0
	batchID := ""
	err := u.records.Update(ctx, func(records []entity.Record) ([]entity.Record, error) {
		kept := make([]entity.Record, 0, len(records))
		for _, rec := range records {
			if rec.ID() == recordID {
				batchID = rec.BatchID()
				continue
			}
			kept = append(kept, rec)
		}
		if len(kept) == len(records) {
			return nil, pkgerror.ErrNotFound
		}
		remaining = len(kept)
		return kept, nil
	})
	if err != nil {
		return DeleteRecordResult{}, mapStoreErr(err, "record not found")
	}

	slog.InfoContext(ctx, "record deleted", "record_id", recordID, "remaining_count", remaining)
	u.publish(entity.MutationEvent{
		Kind:      entity.EventRecordDeleted,
		BatchID:   batchID,
		RecordID:  recordID,
		Count:     1,
		Remaining: remaining,
	})

	return DeleteRecordResult{RecordID: recordID, RemainingCount: remaining}, nil
}

// DeleteBatch removes every record of batchID and, when the last-batch
// pointer referenced it, moves the pointer to the newest remaining batch.
func (u *Usecase) DeleteBatch(ctx context.Context, batchID string) (DeleteBatchResult, error) {
	batchID = strings.TrimSpace(batchID)
	if batchID == "" {
		return DeleteBatchResult{}, pkgerror.NewInvalidInput(errors.New("batch id is required"))
	}

	var kept []entity.Record
	deleted := 0
	err := u.records.Update(ctx, func(records []entity.Record) ([]entity.Record, error) {
		kept = make([]entity.Record, 0, len(records))
		for _, rec := range records {
			if rec.BatchID() == batchID {
				continue
			}
			kept = append(kept, rec)
		}
		deleted = len(records) - len(kept)
		if deleted == 0 {
			return nil, pkgerror.ErrNotFound
		}
		return kept, nil
	})
	if err != nil {
		return DeleteBatchResult{}, mapStoreErr(err, "batch not found")
	}

	err = u.lastBatch.Update(ctx, func(current string) (string, bool) {
		if current != batchID {
			return current, false
		}
		if len(kept) == 0 {
			return "", true
		}
		return FindNewestBatchID(kept), true
	})
	if err != nil {
		slog.ErrorContext(ctx, "batch deleted but last batch pointer not recomputed", "batch_id", batchID, "error", err)
		return DeleteBatchResult{}, mapStoreErr(err, "")
	}

	slog.InfoContext(ctx, "batch deleted", "batch_id", batchID, "deleted_count", deleted, "remaining_count", len(kept))
	u.publish(entity.MutationEvent{
		Kind:      entity.EventBatchDeleted,
		BatchID:   batchID,
		Count:     deleted,
		Remaining: len(kept),
	})

	return DeleteBatchResult{
		BatchID:        batchID,
		DeletedCount:   deleted,
		RemainingCount: len(kept),
	}, nil
}

// ListRecords returns the whole collection in insertion order.
func (u *Usecase) ListRecords(ctx context.Context) ([]entity.Record, error) {
	records, err := u.records.Load(ctx)
	if err != nil {
		return nil, mapStoreErr(err, "")
	}
	return records, nil
}

// ListFieldNames returns every field name in first-seen order, without id and batchId.
func (u *Usecase) ListFieldNames(ctx context.Context) ([]string, error) {
	records, err := u.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, rec := range records {
		for _, key := range rec.Keys() {
			if key == entity.FieldID || key == entity.FieldBatchID {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, key)
		}
	}

	return names, nil
}

func (u *Usecase) ListBatches(ctx context.Context) ([]entity.Batch, error) {
	records, err := u.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	return DeriveBatches(records, u.clock.Now()), nil
}

func (u *Usecase) LastBatch(ctx context.Context) (LastBatchResult, error) {
	batchID, err := u.lastBatch.Load(ctx)
	if err != nil {
		return LastBatchResult{}, mapStoreErr(err, "")
	}
	return LastBatchResult{BatchID: batchID}, nil
}

// Import parses an uploaded spreadsheet and stores its rows as one batch.
func (u *Usecase) Import(ctx context.Context, filename string, data []byte) (ImportResult, error) {
	if u.importer == nil {
		return ImportResult{}, pkgerror.NewServer(errors.New("missing importer"))
	}

	items, err := u.importer.Parse(ctx, filename, data)
	if err != nil {
		return ImportResult{}, normalizeErr(err)
	}

	result, err := u.AddBatch(ctx, items)
	if err != nil {
		return ImportResult{}, err
	}

	return ImportResult{AddBatchResult: result, Filename: filename}, nil
}

// Aliases returns the learned header aliases sorted by header.
func (u *Usecase) Aliases(ctx context.Context) ([]Alias, error) {
	if u.aliases == nil {
		return []Alias{}, nil
	}

	table := u.aliases.List()
	out := make([]Alias, 0, len(table))
	for header, field := range table {
		out = append(out, Alias{Header: header, Field: field})
	}
	sortAliases(out)

	return out, nil
}

func (u *Usecase) LearnAlias(ctx context.Context, alias Alias) (Alias, error) {
	if u.aliases == nil {
		return Alias{}, pkgerror.NewServer(errors.New("missing alias book"))
	}

	alias.Header = strings.TrimSpace(alias.Header)
	alias.Field = strings.TrimSpace(alias.Field)
	if alias.Header == "" || alias.Field == "" {
		return Alias{}, pkgerror.NewInvalidInput(errors.New("header and field are required"))
	}
	if entity.IsReserved(alias.Field) {
		return Alias{}, pkgerror.NewInvalidInput(errors.New("field is reserved"))
	}

	if err := u.aliases.Learn(alias.Header, alias.Field); err != nil {
		return Alias{}, normalizeErr(err)
	}

	slog.InfoContext(ctx, "alias learned", "header", alias.Header, "field", alias.Field)
	return alias, nil
}

func (u *Usecase) publish(event entity.MutationEvent) {
	if u.events == nil || u.runner == nil {
		return
	}

	event.At = u.clock.Now().Unix()
	event.EventID = u.nextEventID()

	u.runner.Go(u.rootCtx, "publish "+string(event.Kind), func(ctx context.Context) error {
		if err := u.events.Publish(ctx, event); err != nil {
			slog.WarnContext(ctx, "failed to publish event", "event_id", event.EventID, "kind", event.Kind, "error", err)
		}
		return nil
	})
}

func (u *Usecase) nextEventID() string {
	if u.eventID != nil {
		return strconv.FormatInt(u.eventID.Generate(), 10)
	}
	if u.id != nil {
		return u.id.Generate()
	}
	return ""
}

func mapStoreErr(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, pkgerror.ErrNotFound) && notFoundMsg != "":
		return pkgerror.NewBusiness(notFoundMsg, pkgerror.CodeNotFound)
	case errors.Is(err, pkglock.ErrBusy):
		return pkgerror.NewBusy(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return pkgerror.NewBusiness("request canceled", pkgerror.CodeTimeout)
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
