package ideastore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/ideahub/internal/app/system/paging"
	"github.com/dalemusser/ideahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound      = errors.New("idea not found")
	ErrDuplicateSlug = errors.New("an idea with this slug already exists")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("ideas")}
}

// Create inserts a new idea. The caller provides a slug already checked for
// uniqueness; the unique index is the last line of defense against a
// concurrent create winning the same slug.
func (s *Store) Create(ctx context.Context, idea models.Idea) (models.Idea, error) {
	now := time.Now().UTC()
	idea.ID = primitive.NewObjectID()
	if idea.Status == "" {
		idea.Status = models.StatusDraft
	}
	idea.CreatedAt = now
	idea.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, idea); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Idea{}, ErrDuplicateSlug
		}
		return models.Idea{}, err
	}
	return idea, nil
}

// GetBySlug retrieves an idea by its slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Idea, error) {
	var idea models.Idea
	err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&idea)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Idea{}, ErrNotFound
		}
		return models.Idea{}, err
	}
	return idea, nil
}

// SlugExists reports whether slug is already taken. Used as the probe for
// slug generation.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Replace persists the whole aggregate after an in-memory mutation. The
// requests and team_members arrays are owned by the document, so the full
// replace is the single-document atomic write the design relies on.
func (s *Store) Replace(ctx context.Context, idea models.Idea) error {
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": idea.ID}, idea)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete permanently removes an idea. Embedded requests and memberships
// vanish with the document; nothing outside the aggregate references them.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindPage returns one feed page: up to limit+1 ideas in
// (created_at DESC, _id DESC) order, optionally after the cursor position.
// The caller trims the look-ahead row via paging.Trim.
func (s *Store) FindPage(ctx context.Context, cursor *paging.Cursor, limit int) ([]models.Idea, error) {
	filter := bson.M{}
	if cursor != nil {
		filter = cursor.Window()
	}

	cur, err := s.c.Find(ctx, filter, paging.FindOptions(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ideas []models.Idea
	if err := cur.All(ctx, &ideas); err != nil {
		return nil, err
	}
	return ideas, nil
}

// Search returns ideas whose title or technology names contain q,
// case-insensitively. The query string is regex-escaped so user input
// cannot inject operators.
func (s *Store) Search(ctx context.Context, q string) ([]models.Idea, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	filter := bson.M{
		"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"technologies.name": pattern},
		},
	}
	return s.find(ctx, filter)
}

// FindByOwner returns all ideas owned by ownerID, newest first.
func (s *Store) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Idea, error) {
	return s.find(ctx, bson.M{"owner": ownerID})
}

// FindByParticipant returns ideas where userID is the owner or a team
// member, newest first.
func (s *Store) FindByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.Idea, error) {
	return s.find(ctx, bson.M{
		"$or": bson.A{
			bson.M{"owner": userID},
			bson.M{"team_members.user_id": userID},
		},
	})
}

// CountByOwner returns the number of ideas owned by ownerID.
func (s *Store) CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"owner": ownerID})
}

// CountByParticipant returns the number of ideas where userID is owner or
// team member.
func (s *Store) CountByParticipant(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"$or": bson.A{
			bson.M{"owner": userID},
			bson.M{"team_members.user_id": userID},
		},
	})
}

// CountPendingRequests returns the number of join requests waiting on
// ownerID across all of their ideas.
func (s *Store) CountPendingRequests(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"owner": ownerID}},
		{"$project": bson.M{"n": bson.M{"$size": bson.M{"$ifNull": bson.A{"$requests", bson.A{}}}}}},
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$n"}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var result struct {
		Total int64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&result); err != nil {
			return 0, err
		}
	}
	return result.Total, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Idea, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ideas []models.Idea
	if err := cur.All(ctx, &ideas); err != nil {
		return nil, err
	}
	return ideas, nil
}

// EnsureIndexes creates indexes for the ideas collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Exactly one slug per idea for the lifetime of the system
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_idea_slug"),
		},
		// Feed order
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_idea_feed"),
		},
		// Owner lookups (my-ideas, my-stats)
		{
			Keys:    bson.D{{Key: "owner", Value: 1}},
			Options: options.Index().SetName("idx_idea_owner"),
		},
		// Membership lookups (my-teams)
		{
			Keys:    bson.D{{Key: "team_members.user_id", Value: 1}},
			Options: options.Index().SetName("idx_idea_team_member"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
