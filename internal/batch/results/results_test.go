package results

import (
	"reflect"
	"testing"
	"time"

	"github.com/handwriteio/batchview/internal/batch/entity"
)

func sampleRecords() []entity.Record {
	// 5 records: 3 kept and valid, 1 valid but deleted, 1 invalid and deleted.
	return []entity.Record{
		{Sequence: 1, Data: map[string]any{"name": "ana"}, Valid: true},
		{Sequence: 2, Data: map[string]any{"name": "bob"}, Valid: true},
		{Sequence: 3, Data: map[string]any{"name": "cyn"}, Valid: true, Deleted: true},
		{Sequence: 4, Data: map[string]any{"name": "dee"}, Valid: false, Deleted: true},
		{Sequence: 5, Data: map[string]any{"name": "eli"}, Valid: true},
	}
}

func TestDerivedViews(t *testing.T) {
	t.Parallel()

	view := New(sampleRecords(), entity.BatchMeta{ID: "batch-1"}, nil)

	raw, err := view.RawOutput()
	if err != nil {
		t.Fatalf("RawOutput() err = %v", err)
	}
	if len(raw) != 5 {
		t.Fatalf("RawOutput() len = %d, want 5", len(raw))
	}

	valid, err := view.ValidData()
	if err != nil {
		t.Fatalf("ValidData() err = %v", err)
	}
	if len(valid) != 3 {
		t.Fatalf("ValidData() len = %d, want 3", len(valid))
	}
	wantOrder := []string{"ana", "bob", "eli"}
	for i, row := range valid {
		if row["name"] != wantOrder[i] {
			t.Fatalf("ValidData()[%d] = %v, want %q", i, row["name"], wantOrder[i])
		}
	}

	deleted, err := view.DeletedData()
	if err != nil {
		t.Fatalf("DeletedData() err = %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("DeletedData() len = %d, want 2", len(deleted))
	}

	all, err := view.AllData()
	if err != nil {
		t.Fatalf("AllData() err = %v", err)
	}
	if len(all) != len(sampleRecords()) {
		t.Fatalf("AllData() len = %d, want %d", len(all), len(sampleRecords()))
	}
}

func TestDataAliasLaw(t *testing.T) {
	t.Parallel()

	view := New(sampleRecords(), entity.BatchMeta{ID: "batch-1"}, nil)

	valid, err := view.ValidData()
	if err != nil {
		t.Fatalf("ValidData() err = %v", err)
	}
	data, err := view.Data()
	if err != nil {
		t.Fatalf("Data() err = %v", err)
	}
	if !reflect.DeepEqual(valid, data) {
		t.Fatalf("Data() = %v, want %v", data, valid)
	}
}

func TestValidAndDeletedDisjoint(t *testing.T) {
	t.Parallel()

	view := New(sampleRecords(), entity.BatchMeta{}, nil)

	valid, _ := view.ValidData()
	deleted, _ := view.DeletedData()

	for _, v := range valid {
		for _, d := range deleted {
			if reflect.DeepEqual(v, d) {
				t.Fatalf("row %v present in both ValidData and DeletedData", v)
			}
		}
	}
}

func TestChunkedModeGuardsWholeBatchViews(t *testing.T) {
	t.Parallel()

	view := New(sampleRecords(), entity.BatchMeta{ID: "batch-1", Chunked: true}, nil)

	if _, err := view.RawOutput(); !IsModeViolation(err) {
		t.Fatalf("RawOutput() err = %v, want mode violation", err)
	}
	if _, err := view.ValidData(); !IsModeViolation(err) {
		t.Fatalf("ValidData() err = %v, want mode violation", err)
	}
	if _, err := view.Data(); !IsModeViolation(err) {
		t.Fatalf("Data() err = %v, want mode violation", err)
	}
	if _, err := view.DeletedData(); !IsModeViolation(err) {
		t.Fatalf("DeletedData() err = %v, want mode violation", err)
	}
	if _, err := view.AllData(); !IsModeViolation(err) {
		t.Fatalf("AllData() err = %v, want mode violation", err)
	}
	if _, err := view.Stats(); !IsModeViolation(err) {
		t.Fatalf("Stats() err = %v, want mode violation", err)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	skipped := int64(2)
	view := New(nil, entity.BatchMeta{
		Counts:      entity.RowCounts{Total: 10, Accepted: 8, Deleted: 1},
		SkippedRows: &skipped,
	}, nil)

	stats, err := view.Stats()
	if err != nil {
		t.Fatalf("Stats() err = %v", err)
	}
	if stats.TotalRows != 10 || stats.AcceptedRows != 8 || stats.DeletedRows != 1 || stats.SkippedRows != 2 {
		t.Fatalf("Stats() = %+v", stats)
	}
	if got := stats.AcceptanceRate(); got != 0.8 {
		t.Fatalf("AcceptanceRate() = %v, want 0.8", got)
	}

	empty := Stats{}
	if got := empty.AcceptanceRate(); got != 0 {
		t.Fatalf("AcceptanceRate() on empty = %v, want 0", got)
	}
}

func TestCSVFileFallback(t *testing.T) {
	t.Parallel()

	csvOriginal := &entity.FileRef{ID: "f1", Filename: "people.csv", Filetype: "csv"}
	xlsOriginal := &entity.FileRef{ID: "f2", Filename: "people.xls", Filetype: "xls"}
	converted := &entity.FileRef{ID: "f3", Filename: "people.csv", Filetype: "csv"}

	t.Run("original already csv", func(t *testing.T) {
		view := New(nil, entity.BatchMeta{OriginalFile: csvOriginal, ConvertedFile: converted}, nil)
		if got := view.CSVFile(); got != csvOriginal {
			t.Fatalf("CSVFile() = %+v, want original", got)
		}
	})

	t.Run("converted file present", func(t *testing.T) {
		view := New(nil, entity.BatchMeta{OriginalFile: xlsOriginal, ConvertedFile: converted}, nil)
		if got := view.CSVFile(); got != converted {
			t.Fatalf("CSVFile() = %+v, want converted", got)
		}
	})

	t.Run("no converted file", func(t *testing.T) {
		view := New(nil, entity.BatchMeta{OriginalFile: xlsOriginal}, nil)
		if got := view.CSVFile(); got != nil {
			t.Fatalf("CSVFile() = %+v, want nil", got)
		}
	})
}

func TestMetadataPassthroughDefaults(t *testing.T) {
	t.Parallel()

	view := New(nil, entity.BatchMeta{ID: "batch-9"}, nil)

	if view.Managed() {
		t.Fatal("Managed() = true for unset flag, want false")
	}
	if view.Manual() != nil {
		t.Fatalf("Manual() = %v for unset flag, want nil", view.Manual())
	}
	if view.SkippedRows() != nil {
		t.Fatal("SkippedRows() expected nil when unset")
	}
	if view.HeadersRaw() != nil || view.HeadersMatched() != nil {
		t.Fatal("header snapshots expected nil when unset")
	}
	if view.EndUser() != nil {
		t.Fatal("EndUser() expected nil when unset")
	}
	if view.CreatedAt() != nil || view.SubmittedAt() != nil || view.FailedAt() != nil {
		t.Fatal("timestamps expected nil when unset")
	}
}

func TestMetadataPassthroughValues(t *testing.T) {
	t.Parallel()

	managed := true
	manual := true
	now := time.Now()
	meta := entity.BatchMeta{
		ID:             "batch-2",
		Filename:       "people.xls",
		Managed:        &managed,
		Manual:         &manual,
		Config:         map[string]any{"type": "people"},
		ParsingConfig:  map[string]any{"delimiter": ";"},
		HeadersRaw:     []string{"Full Name"},
		HeadersMatched: []string{"name"},
		EndUser:        &entity.EndUser{ID: "u-1", Email: "ana@example.com"},
		CustomColumns:  []entity.CustomColumn{{Key: "nickname"}},
		SubmittedAt:    &now,
		FailureReason:  "quota exceeded",
	}

	// Passthroughs never depend on the delivery mode.
	meta.Chunked = true
	view := New(nil, meta, nil)

	if got := view.BatchID(); got != "batch-2" {
		t.Fatalf("BatchID() = %q", got)
	}
	if got := view.Filename(); got != "people.xls" {
		t.Fatalf("Filename() = %q", got)
	}
	if !view.Managed() {
		t.Fatal("Managed() = false, want true")
	}
	if view.Manual() == nil || !*view.Manual() {
		t.Fatalf("Manual() = %v, want true", view.Manual())
	}
	if got := view.Config()["type"]; got != "people" {
		t.Fatalf("Config() type = %v", got)
	}
	if got := view.ParsingConfig()["delimiter"]; got != ";" {
		t.Fatalf("ParsingConfig() delimiter = %v", got)
	}
	if got := view.EndUser(); got == nil || got.Email != "ana@example.com" {
		t.Fatalf("EndUser() = %+v", got)
	}
	if got := view.CustomColumns(); len(got) != 1 || got[0].Key != "nickname" {
		t.Fatalf("CustomColumns() = %+v", got)
	}
	if got := view.SubmittedAt(); got == nil || !got.Equal(now) {
		t.Fatalf("SubmittedAt() = %v", got)
	}
	if got := view.FailureReason(); got != "quota exceeded" {
		t.Fatalf("FailureReason() = %q", got)
	}
}
