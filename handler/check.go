package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

// readinessTimeout bounds a single readiness check. The store status checks
// retry until their context is done.
const readinessTimeout = 2 * time.Second

// CheckHandler answers readiness probes by asking the store for its status.
type CheckHandler struct {
	statusCheck func(ctx context.Context) error
	log         *otelzap.SugaredLogger
	timeout     time.Duration
}

func NewCheckHandler(statusCheck func(ctx context.Context) error, log *otelzap.SugaredLogger) *CheckHandler {
	return &CheckHandler{
		statusCheck: statusCheck,
		log:         log,
		timeout:     readinessTimeout,
	}
}

// Readiness handles GET /readiness.
func (ch CheckHandler) Readiness(rw http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), ch.timeout)
	defer cancel()

	if err := ch.statusCheck(ctx); err != nil {
		ch.log.ErrorwContext(ctx, "Readiness", "error", err.Error())
		respondErr(ctx, rw, http.StatusInternalServerError, "not ready")
		return
	}

	respondOk(ctx, rw, http.StatusOK, "ready")
}
