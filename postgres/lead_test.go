package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	leads "github.com/phbpx/leads-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leadColumns = []string{"id", "name", "email", "phone", "birth_date", "created_at"}

// createMockObjects builds a mock database handle wrapped by sqlx and a mock
// object for defining our expected SQL calls.
func createMockObjects(t *testing.T) (*LeadRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewLeadRepository(sqlx.NewDb(db, "postgres")), mock
}

// TestInsert expects a single insert with a generated id and returns the lead
// carrying that id.
func TestInsert(t *testing.T) {
	repo, mock := createMockObjects(t)

	mock.ExpectExec("INSERT INTO leads").
		WithArgs(sqlmock.AnyArg(), "Erika Mustermann", "erika@example.com", "+4908154711", "1969-03-02", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	birthDate := "1969-03-02"
	lead, err := repo.Insert(context.Background(), leads.Lead{
		Name:      "Erika Mustermann",
		Email:     "erika@example.com",
		Phone:     "+4908154711",
		BirthDate: &birthDate,
	})
	require.NoError(t, err)

	_, parseErr := uuid.Parse(lead.ID)
	assert.NoError(t, parseErr)
	assert.Equal(t, "Erika Mustermann", lead.Name)
	assert.Equal(t, "1969-03-02", *lead.BirthDate)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestInsertDuplicate expects a unique violation to become
// leads.ErrDuplicatedLead.
func TestInsertDuplicate(t *testing.T) {
	repo, mock := createMockObjects(t)

	mock.ExpectExec("INSERT INTO leads").
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "leads_email_unique"})

	_, err := repo.Insert(context.Background(), leads.Lead{Name: "A", Email: "a@example.com", Phone: "+5511911111111"})
	assert.ErrorIs(t, err, leads.ErrDuplicatedLead)
}

// TestInsertFailure expects other errors to be wrapped and returned.
func TestInsertFailure(t *testing.T) {
	repo, mock := createMockObjects(t)

	dbErr := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO leads").WillReturnError(dbErr)

	_, err := repo.Insert(context.Background(), leads.Lead{Name: "A", Email: "a@example.com", Phone: "+5511911111111"})
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, leads.ErrDuplicatedLead)
}

// TestFindByID expects the row with the given id.
func TestFindByID(t *testing.T) {
	repo, mock := createMockObjects(t)

	id := uuid.NewString()
	rows := mock.NewRows(leadColumns).
		AddRow(id, "Erika Mustermann", "erika@example.com", "+4908154711", nil, time.Now())
	mock.ExpectQuery("SELECT (.+) FROM leads WHERE id").
		WithArgs(id).
		WillReturnRows(rows)

	lead, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, lead.ID)
	assert.Equal(t, "erika@example.com", lead.Email)
	assert.Nil(t, lead.BirthDate)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestFindByIDNotFound expects leads.ErrLeadNotFound for an unknown id.
func TestFindByIDNotFound(t *testing.T) {
	repo, mock := createMockObjects(t)

	id := uuid.NewString()
	mock.ExpectQuery("SELECT (.+) FROM leads WHERE id").
		WithArgs(id).
		WillReturnRows(mock.NewRows(leadColumns))

	_, err := repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, leads.ErrLeadNotFound)
}

// TestFindByIDInvalid expects a malformed id to be reported as not found
// without reaching out to the database.
func TestFindByIDInvalid(t *testing.T) {
	repo, mock := createMockObjects(t)

	_, err := repo.FindByID(context.Background(), "INVALID")
	assert.ErrorIs(t, err, leads.ErrLeadNotFound)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestFindByIDCanonicalForm expects the urn and braced forms of a uuid to be
// queried in the canonical form postgres accepts.
func TestFindByIDCanonicalForm(t *testing.T) {
	const id = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

	for _, input := range []string{"urn:uuid:" + id, "{" + id + "}", "6BA7B810-9DAD-11D1-80B4-00C04FD430C8"} {
		repo, mock := createMockObjects(t)

		rows := mock.NewRows(leadColumns).
			AddRow(id, "Erika Mustermann", "erika@example.com", "+4908154711", nil, time.Now())
		mock.ExpectQuery("SELECT (.+) FROM leads WHERE id").
			WithArgs(id).
			WillReturnRows(rows)

		lead, err := repo.FindByID(context.Background(), input)
		require.NoError(t, err, input)
		assert.Equal(t, id, lead.ID)

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("there were unfulfilled expectations for %s: %s", input, err)
		}
	}
}

// TestList expects limit and offset to be derived from page and perPage.
func TestList(t *testing.T) {
	repo, mock := createMockObjects(t)

	rows := mock.NewRows(leadColumns).
		AddRow(uuid.NewString(), "Aaron", "aaron@example.com", "+420111", "1970-01-01", time.Now()).
		AddRow(uuid.NewString(), "Berta", "berta@example.com", "+420222", nil, time.Now())
	mock.ExpectQuery("SELECT (.+) FROM leads ORDER BY created_at, id").
		WithArgs(10, 20).
		WillReturnRows(rows)

	result, err := repo.List(context.Background(), 3, 10)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "Aaron", result[0].Name)
	assert.Equal(t, "1970-01-01", *result[0].BirthDate)
	assert.Nil(t, result[1].BirthDate)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestListEmpty expects an empty, non-nil slice.
func TestListEmpty(t *testing.T) {
	repo, mock := createMockObjects(t)

	mock.ExpectQuery("SELECT (.+) FROM leads").
		WithArgs(50, 0).
		WillReturnRows(mock.NewRows(leadColumns))

	result, err := repo.List(context.Background(), 1, 50)
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}
