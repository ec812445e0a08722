package entity

import "time"

// BatchMeta is the read-only snapshot of one import batch.
//
// Optional scalar fields are pointers; nil means the importer never set them.
// When Chunked is true the snapshot describes only the first delivered page
// and Counts is not authoritative for the whole batch.
type BatchMeta struct {
	ID            string         `json:"id"`
	Chunked       bool           `json:"chunked"`
	Filename      string         `json:"filename"`
	Managed       *bool          `json:"managed,omitempty"`
	Manual        *bool          `json:"manual,omitempty"`
	Config        map[string]any `json:"config,omitempty"`
	ParsingConfig map[string]any `json:"parsing_config,omitempty"`
	SkippedRows   *int64         `json:"skipped_rows,omitempty"`

	// Header snapshots before and after column matching.
	HeadersRaw     []string `json:"headers_raw,omitempty"`
	HeadersMatched []string `json:"headers_matched,omitempty"`

	EndUser       *EndUser       `json:"end_user,omitempty"`
	OriginalFile  *FileRef       `json:"original_file,omitempty"`
	ConvertedFile *FileRef       `json:"csv_file,omitempty"`
	CustomColumns []CustomColumn `json:"custom_columns,omitempty"`

	Counts RowCounts `json:"counts"`

	CreatedAt     *time.Time `json:"created_at,omitempty"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	FailedAt      *time.Time `json:"failed_at,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
}

// EndUser identifies the person who ran the import in the embedded importer.
type EndUser struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	Company   string `json:"company,omitempty"`
}

// FileRef points at a file the importer stored on behalf of the batch.
type FileRef struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Filetype string `json:"filetype"`
	URL      string `json:"url,omitempty"`
}

// CustomColumn describes a column the end user added on top of the template.
type CustomColumn struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
}

// RowCounts aggregates whole-batch row tallies.
type RowCounts struct {
	Total    int64 `json:"total"`
	Accepted int64 `json:"accepted"`
	Deleted  int64 `json:"deleted"`
}
