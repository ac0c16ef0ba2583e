package mongodb

import (
	"context"
	"errors"
	"fmt"

	leads "github.com/phbpx/leads-api"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// leadDocument is the stored shape of a lead. BirthDate is left out of the
// document entirely when unknown.
type leadDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Phone     string        `bson:"phone"`
	BirthDate *string       `bson:"birth_date,omitempty"`
}

func (d leadDocument) toLead() leads.Lead {
	return leads.Lead{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		BirthDate: d.BirthDate,
	}
}

type LeadRepository struct {
	coll *mongo.Collection
}

func NewLeadRepository(db *mongo.Database) *LeadRepository {
	return &LeadRepository{
		coll: db.Collection(LeadCollection),
	}
}

// Insert stores lead and returns it with the id assigned by the store. The
// unique email index turns a second insert of the same email into
// leads.ErrDuplicatedLead.
func (lr LeadRepository) Insert(ctx context.Context, lead leads.Lead) (leads.Lead, error) {
	doc := leadDocument{
		ID:        bson.NewObjectID(),
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		BirthDate: lead.BirthDate,
	}

	if _, err := lr.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return leads.Lead{}, leads.ErrDuplicatedLead
		}
		return leads.Lead{}, fmt.Errorf("insert lead: %w", err)
	}

	return doc.toLead(), nil
}

func (lr LeadRepository) FindByID(ctx context.Context, id string) (leads.Lead, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return leads.Lead{}, leads.ErrLeadNotFound
	}

	var doc leadDocument
	err = lr.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return leads.Lead{}, leads.ErrLeadNotFound
		}
		return leads.Lead{}, fmt.Errorf("find lead: %w", err)
	}

	return doc.toLead(), nil
}

// List returns the page-th window of perPage leads ordered by _id, which
// follows insertion order for driver-generated ids.
func (lr LeadRepository) List(ctx context.Context, page, perPage int) ([]leads.Lead, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := lr.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find leads: %w", err)
	}

	var docs []leadDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode leads: %w", err)
	}

	result := make([]leads.Lead, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.toLead())
	}
	return result, nil
}
