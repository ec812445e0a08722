// Package importer defines the capability handle through which a results
// view pulls additional pages of rows from the external importer process.
//
// The package owns only the contract: a Handle resolves to a live
// Connection, and a Connection answers one next-page request at a time.
// Spawning the importer process and its lifecycle belong to the caller.
package importer

import (
	"context"

	"github.com/handwriteio/batchview/internal/batch/entity"
)

// Page is one delivery from the importer process: an ordered slice of
// records plus the metadata fragment scoped to that page. An empty Records
// slice signals end of stream.
type Page struct {
	Records []entity.Record
	Meta    entity.BatchMeta
}

// Connection is a live link to the importer process.
//
// NextPage blocks until the next page arrives or the link fails. The
// connection supports one in-flight request at a time; callers issue the
// next request only after the previous one returned.
type Connection interface {
	NextPage(ctx context.Context) (Page, error)
}

// Handle resolves to a ready Connection.
//
// Resolve may block until the importer process finished bootstrapping. It
// must be safe to call repeatedly; implementations typically memoize the
// connection after the first successful resolve.
type Handle interface {
	Resolve(ctx context.Context) (Connection, error)
}

// Dialer builds a Handle for an importer endpoint.
type Dialer interface {
	Handle(endpoint string) Handle
}

// HandleFunc adapts a plain function to the Handle interface.
type HandleFunc func(ctx context.Context) (Connection, error)

func (f HandleFunc) Resolve(ctx context.Context) (Connection, error) {
	return f(ctx)
}

// ConnectionFunc adapts a plain function to the Connection interface.
type ConnectionFunc func(ctx context.Context) (Page, error)

func (f ConnectionFunc) NextPage(ctx context.Context) (Page, error) {
	return f(ctx)
}
