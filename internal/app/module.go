package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gorecord/internal/record"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.record.enabled") {
		closer, err := record.New(record.Dependency{
			Config:    a.config,
			Router:    a.router,
			Goroutine: a.goroutine,
			Metrics:   a.metrics,
			Context:   a.ctx,
			ID:        a.uuid,
			EventID:   a.snowflake,
		})
		if err != nil {
			slog.Error("failed to init module record", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			a.addCloser("Record", closer)
		}
	}
}
