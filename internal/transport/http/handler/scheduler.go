package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hisworks-api/internal/domain"
)

type runner interface {
	Run(ctx context.Context, now time.Time) (*domain.RunResult, error)
}

// SchedulerHandler exposes one scheduler invocation over HTTP for external cron callers.
type SchedulerHandler struct {
	runner runner
	now    func() time.Time
}

func NewSchedulerHandler(runner runner) *SchedulerHandler {
	return &SchedulerHandler{runner: runner, now: time.Now}
}

// Run returns 200 with the run summary, or 502 with the partial summary when the run failed.
func (h *SchedulerHandler) Run(w http.ResponseWriter, r *http.Request) {
	res, err := h.runner.Run(r.Context(), h.now().UTC())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, RunEnvelope{Result: res, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, RunEnvelope{Result: res})
}
