package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	leads "github.com/phbpx/leads-api"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

const (
	notFoundMessage    = "Lead not found"
	decodeErrorMessage = "JSON decode error"
	internalMessage    = "Internal server error"
)

// LeadService is the behavior the handler needs from the lead service.
type LeadService interface {
	Create(ctx context.Context, nl leads.NewLead) (leads.Lead, error)
	List(ctx context.Context, page, perPage int) ([]leads.Lead, error)
	GetByID(ctx context.Context, id string) (leads.Lead, error)
}

type LeadHandler struct {
	service LeadService
	log     *otelzap.SugaredLogger
}

func NewLeadHandler(service LeadService, log *otelzap.SugaredLogger) *LeadHandler {
	return &LeadHandler{
		service: service,
		log:     log,
	}
}

// Create handles POST /leads/.
func (lh LeadHandler) Create(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var nl leads.NewLead
	if err := decode(rw, r, &nl); err != nil {
		lh.log.InfowContext(ctx, "Create", "error", err.Error())
		respondErr(ctx, rw, http.StatusUnprocessableEntity, decodeErrorMessage)
		return
	}

	// Reject malformed input before the service reaches out to anything.
	if err := nl.Validate(); err != nil {
		lh.fail(ctx, rw, "Create", err)
		return
	}

	lead, err := lh.service.Create(ctx, nl)
	if err != nil {
		lh.fail(ctx, rw, "Create", err)
		return
	}

	respondOk(ctx, rw, http.StatusCreated, lead)
}

// List handles GET /leads/?page=&per_page=.
func (lh LeadHandler) List(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := queryInt(r, "page", leads.DefaultPage)
	if err != nil {
		lh.fail(ctx, rw, "List", err)
		return
	}
	perPage, err := queryInt(r, "per_page", leads.DefaultPerPage)
	if err != nil {
		lh.fail(ctx, rw, "List", err)
		return
	}

	result, err := lh.service.List(ctx, page, perPage)
	if err != nil {
		lh.fail(ctx, rw, "List", err)
		return
	}

	respondOk(ctx, rw, http.StatusOK, result)
}

// GetByID handles GET /leads/{id}.
func (lh LeadHandler) GetByID(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lead, err := lh.service.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		lh.fail(ctx, rw, "GetByID", err)
		return
	}

	respondOk(ctx, rw, http.StatusOK, lead)
}

// fail maps service errors onto status codes. Unexpected errors are logged
// and answered with a generic message.
func (lh LeadHandler) fail(ctx context.Context, rw http.ResponseWriter, op string, err error) {
	var verr *leads.ValidationError
	var cerr *leads.ConflictError

	switch {
	case errors.As(err, &verr):
		lh.log.InfowContext(ctx, op, "field", verr.Field, "error", verr.Message)
		respondErr(ctx, rw, http.StatusUnprocessableEntity, verr.Message)
	case errors.As(err, &cerr):
		lh.log.InfowContext(ctx, op, "error", cerr.Message)
		respondErr(ctx, rw, http.StatusConflict, cerr.Message)
	case errors.Is(err, leads.ErrLeadNotFound):
		respondErr(ctx, rw, http.StatusNotFound, notFoundMessage)
	default:
		lh.log.ErrorwContext(ctx, op, "error", err.Error())
		respondErr(ctx, rw, http.StatusInternalServerError, internalMessage)
	}
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &leads.ValidationError{Field: name, Message: name + " must be a valid integer"}
	}
	if v < 1 {
		return 0, &leads.ValidationError{Field: name, Message: name + " must be greater than or equal to 1"}
	}
	return v, nil
}
