package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/ideahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already taken")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID retrieves a user by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail retrieves a user by email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByUsername retrieves a user by username, case-insensitively.
func (s *Store) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"username_ci": text.Fold(username)}).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// UpsertOAuth finds the account for an OAuth sign-in by email, creating it
// on first sign-in. New accounts start un-onboarded.
func (s *Store) UpsertOAuth(ctx context.Context, email, name, profile, provider string) (models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if err != ErrNotFound {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u = models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Provider:  provider,
		Profile:   profile,
		Onboarded: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Onboard completes onboarding: sets the username and skills and flips the
// onboarded flag. A taken username surfaces as ErrDuplicateUsername, via
// the uniqueness check and, under races, the unique index.
func (s *Store) Onboard(ctx context.Context, id primitive.ObjectID, username string, skills []models.Skill) (models.User, error) {
	usernameCI := text.Fold(username)

	n, err := s.c.CountDocuments(ctx, bson.M{"username_ci": usernameCI, "_id": bson.M{"$ne": id}}, options.Count().SetLimit(1))
	if err != nil {
		return models.User{}, err
	}
	if n > 0 {
		return models.User{}, ErrDuplicateUsername
	}

	update := bson.M{"$set": bson.M{
		"username":    username,
		"username_ci": usernameCI,
		"skills":      skills,
		"onboarded":   true,
		"updated_at":  time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u models.User
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, ErrNotFound
		}
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return u, nil
}

// SetRefreshToken stores the bcrypt hash and expiry of the user's current
// refresh token, replacing any previous one (single active token per user).
func (s *Store) SetRefreshToken(ctx context.Context, id primitive.ObjectID, hash string, expiresAt time.Time) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"refresh_token_hash":       hash,
		"refresh_token_expires_at": expiresAt,
		"updated_at":               time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearRefreshToken revokes the user's refresh token (logout).
func (s *Store) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$unset": bson.M{"refresh_token_hash": "", "refresh_token_expires_at": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// Summaries returns the public projection for each of the given user ids.
// Missing ids are simply absent from the map.
func (s *Store) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Summary, error) {
	out := make(map[primitive.ObjectID]models.Summary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.M{
		"_id":      1,
		"name":     1,
		"username": 1,
		"profile":  1,
	})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var sum models.Summary
		if err := cur.Decode(&sum); err != nil {
			return nil, err
		}
		out[sum.ID] = sum
	}
	return out, cur.Err()
}

// EnsureIndexes creates indexes for the users collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// One account per identity-provider subject
		{
			Keys:    bson.D{{Key: "firebase_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("idx_user_firebase_id"),
		},
		// Usernames are unique once onboarded; sparse because accounts
		// created at sign-in have none yet
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("idx_user_username_ci"),
		},
		// OAuth sign-in lookup
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_user_email"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
