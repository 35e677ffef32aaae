package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/gorecord/internal/app"
)

const shutdownTimeout = 15 * time.Second

func main() {
	application := app.New()
	<-application.Start()

	// The deadline starts at the signal, not at boot.
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	application.Stop(ctx)
}
