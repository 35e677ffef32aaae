package entity

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestRecordJSONKeepsOrderAndKinds(t *testing.T) {
	input := `{"ad":"Konferans","katilimci":120,"oran":0.75,"not":null,"aktif":true}`

	var rec Record
	if err := json.Unmarshal([]byte(input), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := rec.Keys(); !reflect.DeepEqual(got, []string{"ad", "katilimci", "oran", "not", "aktif"}) {
		t.Fatalf("unexpected key order: %v", got)
	}
	if v, _ := rec.Get("katilimci"); v.Kind() != KindNumber || v.Text() != "120" {
		t.Fatalf("unexpected number value: %+v", v)
	}
	if v, _ := rec.Get("not"); !v.IsNull() {
		t.Fatalf("expected null, got %+v", v)
	}
	if v, _ := rec.Get("aktif"); v.Kind() != KindString || v.Text() != "true" {
		t.Fatalf("expected bool kept as text, got %+v", v)
	}

	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"ad":"Konferans","katilimci":120,"oran":0.75,"not":null,"aktif":"true"}`
	if string(out) != want {
		t.Fatalf("unexpected json:\n got %s\nwant %s", out, want)
	}
}

func TestRecordRejectsNestedValues(t *testing.T) {
	for _, input := range []string{
		`{"a":{"b":1}}`,
		`{"a":[1,2]}`,
		`[1,2]`,
		`"text"`,
	} {
		var rec Record
		if err := json.Unmarshal([]byte(input), &rec); err == nil {
			t.Fatalf("expected error for %s", input)
		}
	}

	var rec Record
	err := json.Unmarshal([]byte(`{"a":{"b":1}}`), &rec)
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("expected ErrUnsupportedValue, got %v", err)
	}
}

func TestDecodeStoredRecordsDegradesPerField(t *testing.T) {
	data := []byte(`[
		{"id":"1","ad":"x","n":2},
		{"id":"2","meta":{"k": [1, true]},"ok":true},
		null,
		{"id":"3"}
	]`)

	records, degraded, err := DecodeStoredRecords(data)
	if err != nil {
		t.Fatalf("DecodeStoredRecords() err = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if got := records[1].Text("meta"); got != `{"k":[1,true]}` {
		t.Fatalf("meta = %q, want compact json text", got)
	}
	if got := records[1].Text("ok"); got != "true" {
		t.Fatalf("ok = %q, want true", got)
	}
	if !reflect.DeepEqual(records[1].Keys(), []string{"id", "meta", "ok"}) {
		t.Fatalf("unexpected key order %v", records[1].Keys())
	}

	if len(degraded) != 2 {
		t.Fatalf("expected 2 degraded entries, got %+v", degraded)
	}
	if degraded[0].Index != 1 || degraded[0].Field != "meta" {
		t.Fatalf("unexpected field entry %+v", degraded[0])
	}
	if degraded[1].Index != 2 || degraded[1].Field != "" || degraded[1].Err == nil {
		t.Fatalf("unexpected skipped entry %+v", degraded[1])
	}

	if _, _, err := DecodeStoredRecords([]byte(`{"id":"1"}`)); err == nil {
		t.Fatalf("expected error for a non-array document")
	}
}

func TestRecordDuplicateKeyKeepsFirstPosition(t *testing.T) {
	var rec Record
	if err := json.Unmarshal([]byte(`{"a":"1","b":"2","a":"3"}`), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := rec.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected keys: %v", got)
	}
	if got := rec.Text("a"); got != "3" {
		t.Fatalf("expected last value, got %q", got)
	}
}

func TestRecordSetDeleteClone(t *testing.T) {
	rec := NewRecord()
	rec.Set(FieldID, String("r-1"))
	rec.Set(FieldBatchID, String("b-1"))
	rec.Set("ad", String("Seminer"))

	clone := rec.Clone()
	clone.Set("ad", String("changed"))
	clone.Delete(FieldBatchID)

	if rec.Text("ad") != "Seminer" || rec.BatchID() != "b-1" {
		t.Fatalf("clone mutated original: %v", rec.Keys())
	}
	if !reflect.DeepEqual(clone.Keys(), []string{FieldID, "ad"}) {
		t.Fatalf("unexpected clone keys: %v", clone.Keys())
	}
	if rec.Equal(clone) {
		t.Fatal("expected records to differ")
	}
	if !rec.Equal(rec.Clone()) {
		t.Fatal("expected clone to equal original")
	}
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 0, 123_000_000, time.FixedZone("TRT", 3*60*60))
	if got := FormatTime(ts); got != "2024-03-01T06:30:00.123Z" {
		t.Fatalf("unexpected format: %s", got)
	}
}

func TestIsReserved(t *testing.T) {
	for _, k := range []string{FieldID, FieldBatchID, FieldUploadDate} {
		if !IsReserved(k) {
			t.Fatalf("expected %s reserved", k)
		}
	}
	if IsReserved("ad") {
		t.Fatal("ad must not be reserved")
	}
}
