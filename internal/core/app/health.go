package app

import (
	"context"
	"fmt"
	"time"

	"semresolve/internal/shared/observability"
)

// Health reports "degraded" when the last run was incomplete and "up"
// otherwise, including before the first run.
func (a *App) Health(_ context.Context) observability.Health {
	status := observability.Health{Status: "up"}
	res, ok := a.LastResult()
	if !ok {
		return status
	}
	status.LastRun = fmt.Sprintf("%s (%d files, %s)", res.RunID, res.Files, res.Duration.Round(time.Millisecond))
	if res.Incomplete {
		status.Status = "degraded"
	}
	return status
}
