// Package results exposes the outcome of one import batch as a read-only
// view: filtered row projections, metadata passthroughs, and incremental
// page fetching for batches delivered in chunks.
//
// A batch is readable in exactly one of two modes. When the metadata marks
// it chunked, only NextChunk is permitted and the whole-batch projections
// fail; otherwise the projections are available and NextChunk fails. The
// guard is centralized in one place and produces a business error carrying
// pkgerror.CodeNotAllowed so callers can branch on the error kind.
package results

import (
	"errors"
	"fmt"
	"time"

	"github.com/handwriteio/batchview/internal/batch/entity"
	"github.com/handwriteio/batchview/internal/batch/importer"
	"github.com/handwriteio/batchview/internal/pkg/pkgerror"
)

// Results is the single entry point for reading one batch's outcome.
//
// It owns its record slice and metadata snapshot exclusively; neither is
// mutated after construction. The importer handle is a shared, non-owning
// reference used only to fetch further pages.
type Results struct {
	records []entity.Record
	meta    entity.BatchMeta
	handle  importer.Handle

	// pageView marks a view produced by NextChunk: its projections cover
	// that page only and whole-batch aggregates stay unavailable.
	pageView bool

	notifier Notifier
	fetches  *int
}

// Option configures optional collaborators of a view.
type Option func(*Results)

// WithNotifier subscribes n to fetch lifecycle events. The view itself
// never logs fetches.
func WithNotifier(n Notifier) Option {
	return func(r *Results) {
		r.notifier = n
	}
}

// New wraps an already-populated record collection and metadata snapshot.
//
// No validation happens here; the import pipeline guarantees the snapshot
// is internally consistent (in particular that the chunked flag matches
// whether records holds a full batch or a first page).
func New(records []entity.Record, meta entity.BatchMeta, handle importer.Handle, opts ...Option) *Results {
	fetches := 0
	r := &Results{
		records: records,
		meta:    meta,
		handle:  handle,
		fetches: &fetches,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// modeViolation is the tagged error for an operation that does not apply to
// the batch's delivery mode. The message names the offending operation and
// the working alternative so the correct API stays discoverable.
func modeViolation(op, instead string) error {
	return pkgerror.NewBusiness(
		fmt.Sprintf("%s is not available in this delivery mode; %s", op, instead),
		pkgerror.CodeNotAllowed,
	)
}

// IsModeViolation reports whether err marks a mode-exclusivity violation.
func IsModeViolation(err error) bool {
	var gerr *pkgerror.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.Code() == pkgerror.CodeNotAllowed
}

// guardWholeBatch rejects whole-batch reads on a chunked batch. Page views
// returned by NextChunk pass: they carry their complete page.
func (r *Results) guardWholeBatch(op string) error {
	if r.meta.Chunked && !r.pageView {
		return modeViolation(op, "fetch rows page by page with NextChunk")
	}
	return nil
}

// RawOutput returns the full record collection, unfiltered.
func (r *Results) RawOutput() ([]entity.Record, error) {
	if err := r.guardWholeBatch("RawOutput"); err != nil {
		return nil, err
	}
	return r.records, nil
}

// ValidData returns the data of records that passed validation and were not
// deleted, in original order. Deleted rows are excluded regardless of their
// validity flag.
func (r *Results) ValidData() ([]map[string]any, error) {
	if err := r.guardWholeBatch("ValidData"); err != nil {
		return nil, err
	}

	rows := make([]map[string]any, 0, len(r.records))
	for _, rec := range r.records {
		if rec.Valid && !rec.Deleted {
			rows = append(rows, rec.Data)
		}
	}
	return rows, nil
}

// Data is an exact alias of ValidData.
func (r *Results) Data() ([]map[string]any, error) {
	if err := r.guardWholeBatch("Data"); err != nil {
		return nil, err
	}
	return r.ValidData()
}

// DeletedData returns the data of records the end user removed before
// submission.
func (r *Results) DeletedData() ([]map[string]any, error) {
	if err := r.guardWholeBatch("DeletedData"); err != nil {
		return nil, err
	}

	rows := make([]map[string]any, 0)
	for _, rec := range r.records {
		if rec.Deleted {
			rows = append(rows, rec.Data)
		}
	}
	return rows, nil
}

// AllData returns every record's data, including deleted and invalid rows.
func (r *Results) AllData() ([]map[string]any, error) {
	if err := r.guardWholeBatch("AllData"); err != nil {
		return nil, err
	}

	rows := make([]map[string]any, 0, len(r.records))
	for _, rec := range r.records {
		rows = append(rows, rec.Data)
	}
	return rows, nil
}

// Stats returns the whole-batch aggregate counts. Chunked batches never
// expose it, not even on page views: the metadata only covers one page.
func (r *Results) Stats() (Stats, error) {
	if r.meta.Chunked {
		return Stats{}, modeViolation("Stats", "aggregate pages fetched with NextChunk instead")
	}
	return newStats(r.meta), nil
}

// BatchID returns the globally unique batch identifier.
func (r *Results) BatchID() string {
	return r.meta.ID
}

// Chunked reports whether the batch delivers its rows page by page.
func (r *Results) Chunked() bool {
	return r.meta.Chunked
}

// EndUser returns the importing end user, or nil when the importer did not
// report one.
func (r *Results) EndUser() *entity.EndUser {
	return r.meta.EndUser
}

// OriginalFile returns the file reference as uploaded, if any.
func (r *Results) OriginalFile() *entity.FileRef {
	return r.meta.OriginalFile
}

// CSVFile returns the reference of the batch's CSV form: the original file
// when it already is CSV, otherwise the converted file when present,
// otherwise nil.
func (r *Results) CSVFile() *entity.FileRef {
	if r.meta.OriginalFile != nil && r.meta.OriginalFile.Filetype == entity.FiletypeCSV {
		return r.meta.OriginalFile
	}
	if r.meta.ConvertedFile != nil {
		return r.meta.ConvertedFile
	}
	return nil
}

// Filename returns the uploaded file's name.
func (r *Results) Filename() string {
	return r.meta.Filename
}

// Managed reports whether the batch ran against a managed template. Unset
// means false.
func (r *Results) Managed() bool {
	return r.meta.Managed != nil && *r.meta.Managed
}

// Manual preserves the importer's three-valued flag: nil means the importer
// never set it.
func (r *Results) Manual() *bool {
	return r.meta.Manual
}

// Config returns the resolved import configuration as an opaque map.
func (r *Results) Config() map[string]any {
	return r.meta.Config
}

// ParsingConfig returns the raw parser configuration as an opaque map.
func (r *Results) ParsingConfig() map[string]any {
	return r.meta.ParsingConfig
}

// SkippedRows returns the skipped-row count, or nil when unset.
func (r *Results) SkippedRows() *int64 {
	return r.meta.SkippedRows
}

// HeadersRaw returns the header snapshot before column matching, or nil
// when unset.
func (r *Results) HeadersRaw() []string {
	return r.meta.HeadersRaw
}

// HeadersMatched returns the header snapshot after column matching, or nil
// when unset.
func (r *Results) HeadersMatched() []string {
	return r.meta.HeadersMatched
}

// CustomColumns returns the columns the end user added on top of the
// template.
func (r *Results) CustomColumns() []entity.CustomColumn {
	return r.meta.CustomColumns
}

// FailureReason returns the reason the batch failed, empty otherwise.
func (r *Results) FailureReason() string {
	return r.meta.FailureReason
}

// CreatedAt returns when the batch was created, or nil when unset.
func (r *Results) CreatedAt() *time.Time {
	return r.meta.CreatedAt
}

// SubmittedAt returns when the batch was submitted, or nil when unset.
func (r *Results) SubmittedAt() *time.Time {
	return r.meta.SubmittedAt
}

// FailedAt returns when the batch failed, or nil when unset.
func (r *Results) FailedAt() *time.Time {
	return r.meta.FailedAt
}
