package entity

// Record is one imported row as handed over by the import pipeline.
//
// Valid and Deleted are independent flags: a row the end user removed can
// still carry validation failures. Records are immutable once a results view
// owns them.
type Record struct {
	Sequence int64          `json:"sequence"`
	Data     map[string]any `json:"data"`
	Valid    bool           `json:"valid"`
	Deleted  bool           `json:"deleted"`
}
