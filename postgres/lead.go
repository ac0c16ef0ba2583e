package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	leads "github.com/phbpx/leads-api"
)

// lib/pq errorCodeNames
// https://github.com/lib/pq/blob/master/error.go#L178
const uniqueViolation = "23505"

type leadRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	BirthDate *string   `db:"birth_date"`
	CreatedAt time.Time `db:"created_at"`
}

func (r leadRow) toLead() leads.Lead {
	return leads.Lead{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		BirthDate: r.BirthDate,
	}
}

type LeadRepository struct {
	db *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{
		db: db,
	}
}

func (lr LeadRepository) Insert(ctx context.Context, lead leads.Lead) (leads.Lead, error) {
	row := leadRow{
		ID:        uuid.NewString(),
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		BirthDate: lead.BirthDate,
		CreatedAt: time.Now().UTC(),
	}

	query := `
	INSERT INTO leads (
		id, name, email, phone, birth_date, created_at
	) VALUES (
		:id, :name, :email, :phone, :birth_date, :created_at
	)`

	if _, err := lr.db.NamedExecContext(ctx, query, row); err != nil {
		var pqerr *pq.Error
		if errors.As(err, &pqerr) && pqerr.Code == uniqueViolation {
			return leads.Lead{}, leads.ErrDuplicatedLead
		}
		return leads.Lead{}, fmt.Errorf("insert lead: %w", err)
	}

	return row.toLead(), nil
}

func (lr LeadRepository) FindByID(ctx context.Context, id string) (leads.Lead, error) {
	// uuid.Parse also takes the urn and braced forms, which postgres rejects.
	parsed, err := uuid.Parse(id)
	if err != nil {
		return leads.Lead{}, leads.ErrLeadNotFound
	}

	query := `
	SELECT
		id,
		name,
		email,
		phone,
		birth_date,
		created_at
	FROM leads
	WHERE id = $1`

	var row leadRow
	if err := lr.db.GetContext(ctx, &row, query, parsed.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return leads.Lead{}, leads.ErrLeadNotFound
		}
		return leads.Lead{}, fmt.Errorf("select lead: %w", err)
	}

	return row.toLead(), nil
}

func (lr LeadRepository) List(ctx context.Context, page, perPage int) ([]leads.Lead, error) {
	query := `
	SELECT
		id,
		name,
		email,
		phone,
		birth_date,
		created_at
	FROM leads
	ORDER BY created_at, id
	LIMIT $1
	OFFSET $2`

	var rows []leadRow
	if err := lr.db.SelectContext(ctx, &rows, query, perPage, (page-1)*perPage); err != nil {
		return nil, fmt.Errorf("select leads: %w", err)
	}

	result := make([]leads.Lead, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toLead())
	}
	return result, nil
}
