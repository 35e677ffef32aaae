package inbound

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/gorecord/internal/pkg/pkglock"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkguid"
	"github.com/shandysiswandi/gorecord/internal/record/event"
	"github.com/shandysiswandi/gorecord/internal/record/ingest"
	"github.com/shandysiswandi/gorecord/internal/record/store"
	"github.com/shandysiswandi/gorecord/internal/record/usecase"
)

type envelope[T any] struct {
	Message string         `json:"message"`
	Data    T              `json:"data"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func newTestRouter(t *testing.T) (*pkgrouter.Router, *pkgroutine.Manager) {
	t.Helper()

	dir := t.TempDir()
	recordsPath := filepath.Join(dir, "records.json")
	lastBatchPath := filepath.Join(dir, "last_batch.json")
	if err := store.Bootstrap(recordsPath, lastBatchPath); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	locks := pkglock.NewManager(pkglock.WithTimeout(2 * time.Second))
	aliases, err := ingest.NewAliasTable(filepath.Join(dir, "aliases.yaml"))
	if err != nil {
		t.Fatalf("alias table: %v", err)
	}

	runner := pkgroutine.NewManager(10)
	uc := usecase.New(usecase.Dependency{
		Records:   store.NewRecordFile(recordsPath, locks),
		LastBatch: store.NewLastBatchFile(lastBatchPath, locks),
		Importer:  ingest.NewParser(aliases),
		Aliases:   aliases,
		Events:    event.NewBus(64),
		Runner:    runner,
		ID:        pkguid.NewUUID(),
		RootCtx:   context.Background(),
	})

	router := pkgrouter.NewRouter(pkguid.NewUUID())
	RegisterHTTPEndpoint(router, uc, 1<<20)

	return router, runner
}

func serve(t *testing.T, router http.Handler, method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var env envelope[T]
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return env.Data
}

func TestRecordLifecycle(t *testing.T) {
	router, runner := newTestRouter(t)

	rec := serve(t, router, http.MethodPost, "/records", "application/json",
		strings.NewReader(`{"data":[{"ad":"Konferans"},{"ad":"Seminer","id":"spoofed"}]}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("add batch status: %d body=%s", rec.Code, rec.Body.String())
	}
	added := decode[AddBatchResponse](t, rec)
	if added.RecordCount != 2 || added.TotalRecords != 2 || added.BatchID == "" {
		t.Fatalf("unexpected add batch result: %+v", added)
	}

	rec = serve(t, router, http.MethodGet, "/records", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list records status: %d", rec.Code)
	}
	records := decode[struct {
		Records []map[string]any `json:"records"`
	}](t, rec).Records
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, r := range records {
		if r["id"] == "spoofed" || r["id"] == "" {
			t.Fatalf("record id not assigned by store: %v", r["id"])
		}
		if r["batchId"] != added.BatchID {
			t.Fatalf("unexpected batch id %v", r["batchId"])
		}
	}

	rec = serve(t, router, http.MethodGet, "/records/fields", "", nil)
	fields := decode[FieldsResponse](t, rec).Fields
	if strings.Join(fields, ",") != "uploadDate,ad" {
		t.Fatalf("unexpected fields: %v", fields)
	}

	rec = serve(t, router, http.MethodGet, "/batches", "", nil)
	batches := decode[[]Batch](t, rec)
	if len(batches) != 1 || batches[0].RecordCount != 2 || batches[0].BatchID != added.BatchID {
		t.Fatalf("unexpected batches: %+v", batches)
	}

	imported := uploadCSV(t, router, "Ad,Şehir\nPanel,İzmir\n")
	if imported.RecordCount != 1 || imported.TotalRecords != 3 {
		t.Fatalf("unexpected import result: %+v", imported)
	}

	rec = serve(t, router, http.MethodGet, "/batches/last", "", nil)
	last := decode[LastBatchResponse](t, rec)
	if last.LastBatchID == nil || *last.LastBatchID != imported.BatchID {
		t.Fatalf("expected last batch %s, got %v", imported.BatchID, last.LastBatchID)
	}

	rec = serve(t, router, http.MethodDelete, "/batches/"+added.BatchID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete batch status: %d", rec.Code)
	}
	deleted := decode[DeleteBatchResponse](t, rec)
	if deleted.DeletedCount != 2 || deleted.RemainingCount != 1 {
		t.Fatalf("unexpected delete batch result: %+v", deleted)
	}

	rec = serve(t, router, http.MethodDelete, "/records/missing", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing record, got %d", rec.Code)
	}

	rec = serve(t, router, http.MethodDelete, "/batches/"+imported.BatchID, "", nil)
	deleted = decode[DeleteBatchResponse](t, rec)
	if deleted.DeletedCount != 1 || deleted.RemainingCount != 0 {
		t.Fatalf("unexpected delete batch result: %+v", deleted)
	}

	rec = serve(t, router, http.MethodGet, "/batches/last", "", nil)
	if !strings.Contains(rec.Body.String(), `"lastBatchId":null`) {
		t.Fatalf("expected null last batch, got %s", rec.Body.String())
	}

	if err := runner.Wait(); err != nil {
		t.Fatalf("runner wait: %v", err)
	}
}

func TestAddBatchRejectsBadBodies(t *testing.T) {
	router, _ := newTestRouter(t)

	cases := []struct {
		name string
		body string
		code int
	}{
		{name: "not json", body: `{"data":`, code: http.StatusBadRequest},
		{name: "missing data", body: `{}`, code: http.StatusUnprocessableEntity},
		{name: "data object", body: `{"data":{"ad":"x"}}`, code: http.StatusUnprocessableEntity},
		{name: "empty list", body: `{"data":[]}`, code: http.StatusUnprocessableEntity},
		{name: "nested value", body: `{"data":[{"ad":{"x":1}}]}`, code: http.StatusUnprocessableEntity},
		{name: "non object item", body: `{"data":["x"]}`, code: http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, router, http.MethodPost, "/records", "application/json", strings.NewReader(tc.body))
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d body=%s", tc.code, rec.Code, rec.Body.String())
			}
		})
	}

	rec := serve(t, router, http.MethodGet, "/records", "", nil)
	if got := decode[RecordsResponse](t, rec).Records; len(got) != 0 {
		t.Fatalf("expected no records after rejected bodies, got %d", len(got))
	}
}

func TestAliasesLearnedAndApplied(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := serve(t, router, http.MethodPut, "/aliases", "application/json",
		strings.NewReader(`{"header":"Etkinlik Adı","field":"ad"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("learn alias status: %d body=%s", rec.Code, rec.Body.String())
	}

	rec = serve(t, router, http.MethodPut, "/aliases", "application/json",
		strings.NewReader(`{"header":"Kimlik","field":"id"}`))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected reserved field rejection, got %d", rec.Code)
	}

	rec = serve(t, router, http.MethodGet, "/aliases", "", nil)
	aliases := decode[AliasesResponse](t, rec).Aliases
	if len(aliases) != 1 || aliases[0].Field != "ad" {
		t.Fatalf("unexpected aliases: %+v", aliases)
	}

	uploadCSV(t, router, "ETKİNLİK ADI\nKonferans\n")

	rec = serve(t, router, http.MethodGet, "/records/fields", "", nil)
	fields := decode[FieldsResponse](t, rec).Fields
	if strings.Join(fields, ",") != "uploadDate,ad" {
		t.Fatalf("alias not applied, fields: %v", fields)
	}
}

func TestUploadRejectsUnknownExtension(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "notes.txt", "a,b\n1,2\n")
	rec := serve(t, router, http.MethodPost, "/records/upload", contentType, body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	return body, writer.FormDataContentType()
}

func uploadCSV(t *testing.T, router http.Handler, content string) AddBatchResponse {
	t.Helper()

	body, contentType := multipartBody(t, "events.csv", content)
	rec := serve(t, router, http.MethodPost, "/records/upload", contentType, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected upload status: %d body=%s", rec.Code, rec.Body.String())
	}

	resp := decode[UploadResponse](t, rec)
	if resp.Filename != "events.csv" {
		t.Fatalf("unexpected filename %q", resp.Filename)
	}
	return resp.AddBatchResponse
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "big.csv", "ad\n"+strings.Repeat("x", 2<<20)+"\n")
	rec := serve(t, router, http.MethodPost, "/records/upload", contentType, body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rec.Code, rec.Body.String())
	}
}
