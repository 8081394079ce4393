package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
)

const collectionAddresses = "addresses"

// AddressRepository implements ports.AddressRepository using MongoDB. Every
// query filters on account_id so an address is only visible to its owner.
type AddressRepository struct {
	col *mongo.Collection
}

func NewAddressRepository(db *mongo.Database) *AddressRepository {
	return &AddressRepository{col: db.Collection(collectionAddresses)}
}

type mongoAddress struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	AccountID    string             `bson:"account_id"`
	FullName     string             `bson:"full_name"`
	Phone        string             `bson:"phone"`
	AddressLine  string             `bson:"address_line"`
	AddressLine2 string             `bson:"address_line2,omitempty"`
	TownCity     string             `bson:"town_city"`
	Postcode     string             `bson:"postcode"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func fromAddress(a *domain.Address) mongoAddress {
	return mongoAddress{
		AccountID:    a.AccountID,
		FullName:     a.FullName,
		Phone:        a.Phone,
		AddressLine:  a.AddressLine,
		AddressLine2: a.AddressLine2,
		TownCity:     a.TownCity,
		Postcode:     a.Postcode,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (m *mongoAddress) toDomain() *domain.Address {
	return &domain.Address{
		ID:           m.ID.Hex(),
		AccountID:    m.AccountID,
		FullName:     m.FullName,
		Phone:        m.Phone,
		AddressLine:  m.AddressLine,
		AddressLine2: m.AddressLine2,
		TownCity:     m.TownCity,
		Postcode:     m.Postcode,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

// ownedFilter matches one address of one account.
func ownedFilter(accountID, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAddressNotFound
	}
	return bson.M{"_id": oid, "account_id": accountID}, nil
}

func (r *AddressRepository) Create(ctx context.Context, a *domain.Address) (*domain.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := fromAddress(a)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert address: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *AddressRepository) Update(ctx context.Context, a *domain.Address) (*domain.Address, error) {
	filter, err := ownedFilter(a.AccountID, a.ID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := fromAddress(a)
	var out mongoAddress
	err = r.col.FindOneAndUpdate(ctx, filter,
		bson.M{"$set": bson.M{
			"full_name":     doc.FullName,
			"phone":         doc.Phone,
			"address_line":  doc.AddressLine,
			"address_line2": doc.AddressLine2,
			"town_city":     doc.TownCity,
			"postcode":      doc.Postcode,
			"updated_at":    doc.UpdatedAt,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, fmt.Errorf("update address: %w", err)
	}
	return out.toDomain(), nil
}

func (r *AddressRepository) FindByID(ctx context.Context, accountID, id string) (*domain.Address, error) {
	filter, err := ownedFilter(accountID, id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoAddress
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, fmt.Errorf("find address: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByAccount returns the account's addresses, oldest first.
func (r *AddressRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"account_id": accountID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find addresses: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoAddress
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode addresses: %w", err)
	}
	out := make([]*domain.Address, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *AddressRepository) Delete(ctx context.Context, accountID, id string) error {
	filter, err := ownedFilter(accountID, id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAddressNotFound
	}
	return nil
}

// EnsureIndexes creates the owner index used by every address query.
func (r *AddressRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return err
}
