package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// profileProjection keeps the password hash and the embedded cart and
// wishlist out of every profile read.
var profileProjection = bson.M{"password": 0, "cart": 0, "wishlist": 0}

type profileRepository struct {
	collection *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) ProfileRepository {
	return &profileRepository{
		collection: db.Collection(UsersCollection),
	}
}

func (p *profileRepository) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error) {
	var profile domain.Profile

	opts := options.FindOne().SetProjection(profileProjection)
	err := p.collection.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return withAddresses(&profile), nil
}

// UpdateProfile never creates a user; accounts come from the auth service.
func (p *profileRepository) UpdateProfile(ctx context.Context, userID primitive.ObjectID, upd domain.ProfileUpdate) (*domain.Profile, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Gender != nil {
		set["gender"] = *upd.Gender
	}
	if upd.DOB != nil {
		set["dob"] = upd.DOB.UTC()
	}
	if upd.Addresses != nil {
		set["addresses"] = upd.Addresses
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(profileProjection)

	var profile domain.Profile
	err := p.collection.FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{"$set": set}, opts).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return withAddresses(&profile), nil
}

func withAddresses(p *domain.Profile) *domain.Profile {
	if p.Addresses == nil {
		p.Addresses = []domain.Address{}
	}
	return p
}
