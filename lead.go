package leads

import (
	"context"
	"errors"
)

var (
	ErrDuplicatedLead = errors.New("email already in use")
	ErrLeadNotFound   = errors.New("lead not found")
	ErrNotReady       = errors.New("lead store not initialized")
)

// ConflictMessage is the message surfaced to clients on a duplicated email.
const ConflictMessage = "Lead with this email already exists"

// ConflictError is returned by the service when a lead with the same email
// already exists. It unwraps to ErrDuplicatedLead.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Unwrap() error {
	return ErrDuplicatedLead
}

// Lead is a prospective customer. ID is assigned by the store on insert and
// BirthDate is nil when enrichment did not produce a value.
type Lead struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	BirthDate *string `json:"birth_date,omitempty"`
}

// NewLead is what a client submits to create a lead.
type NewLead struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Repository is the persistence boundary for leads.
type Repository interface {
	Insert(ctx context.Context, lead Lead) (Lead, error)
	FindByID(ctx context.Context, id string) (Lead, error)
	List(ctx context.Context, page, perPage int) ([]Lead, error)
}

// BirthDateFetcher looks up a birth date from a third party. It must not fail:
// a nil result means no value could be obtained.
type BirthDateFetcher interface {
	BirthDate(ctx context.Context) *string
}
