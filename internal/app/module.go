package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/handwriteio/batchview/internal/batch"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.batch.enabled") {
		closer, err := batch.New(batch.Dependency{
			Config:    a.config,
			Router:    a.router,
			Goroutine: a.goroutine,
			Context:   a.ctx,
			ID:        a.uuid,
		})
		if err != nil {
			slog.Error("failed to init module batch", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			if a.closerFn == nil {
				a.closerFn = map[string]func(context.Context) error{}
			}
			a.closerFn["Batch"] = closer
		}
	}
}
