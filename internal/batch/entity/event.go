package entity

// FetchEvent describes one chunk fetch against the importer process.
//
// Two events are emitted per fetch: one at FetchStarted and one at
// FetchSettled. Settled events carry the outcome; Err is empty on success
// and Records is zero at end of stream.
type FetchEvent struct {
	EventID   string
	BatchID   string
	Seq       int
	Phase     FetchPhase
	Records   int
	Err       string
	ElapsedMS int64
}
