// Package batch wires the import-results module: in-memory batch store,
// websocket importer dialer, fetch audit pipeline, and HTTP endpoints.
package batch

import (
	"context"
	"time"

	"github.com/handwriteio/batchview/internal/batch/event"
	"github.com/handwriteio/batchview/internal/batch/importer"
	"github.com/handwriteio/batchview/internal/batch/inbound"
	"github.com/handwriteio/batchview/internal/batch/store"
	"github.com/handwriteio/batchview/internal/batch/usecase"
	"github.com/handwriteio/batchview/internal/pkg/pkgconfig"
	"github.com/handwriteio/batchview/internal/pkg/pkgrouter"
	"github.com/handwriteio/batchview/internal/pkg/pkgroutine"
	"github.com/handwriteio/batchview/internal/pkg/pkguid"
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	ID        pkguid.StringID
	Seq       pkguid.NumberID
}

func New(dep Dependency) (func(context.Context) error, error) {
	storage := store.NewInMemoryStore()

	bus := event.NewBus(busBuffer(dep.Config))
	consumer := event.NewAuditConsumer(bus, event.LogAuditor{}, event.ConsumerConfig{
		Workers:     auditWorkers(dep.Config),
		MaxRetries:  3,
		BaseBackoff: 200 * time.Millisecond,
	})
	consumer.Start()

	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}
	if dep.Seq == nil {
		seq, err := pkguid.NewSnowflake()
		if err != nil {
			return nil, err
		}
		dep.Seq = seq
	}

	uc := usecase.New(usecase.Dependency{
		Store:   storage,
		Events:  bus,
		Runner:  dep.Goroutine,
		Clock:   nil,
		ID:      dep.ID,
		Seq:     dep.Seq,
		Dialer:  importer.WSDialer{HandshakeTimeout: handshakeTimeout(dep.Config)},
		RootCtx: dep.Context,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return consumer.Stop, nil
}

func busBuffer(cfg pkgconfig.Config) int {
	if cfg != nil {
		if n := cfg.GetInt("modules.batch.audit.buffer"); n > 0 {
			return int(n)
		}
	}
	return 512
}

func auditWorkers(cfg pkgconfig.Config) int {
	if cfg != nil {
		if n := cfg.GetInt("modules.batch.audit.workers"); n > 0 {
			return int(n)
		}
	}
	return 4
}

func handshakeTimeout(cfg pkgconfig.Config) time.Duration {
	if cfg != nil {
		if d := cfg.GetDuration("modules.batch.importer.handshake_timeout"); d > 0 {
			return d
		}
	}
	return 0 // dialer default
}
