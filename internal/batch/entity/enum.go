package entity

// FiletypeCSV is the converted format the importer normalizes uploads into.
const FiletypeCSV = "csv"

// ViewKind selects one of the derived row projections of a batch.
type ViewKind string

const (
	ViewRaw     ViewKind = "RAW"
	ViewValid   ViewKind = "VALID"
	ViewDeleted ViewKind = "DELETED"
	ViewAll     ViewKind = "ALL"
)

// FetchPhase marks where in its lifecycle a chunk fetch event was emitted.
type FetchPhase string

const (
	FetchStarted FetchPhase = "STARTED"
	FetchSettled FetchPhase = "SETTLED"
)
