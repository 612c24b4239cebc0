package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user that has not completed onboarding.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	u := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Provider:  models.ProviderGoogle,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, u)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return u
}

// CreateOnboardedUser creates a test user that has completed onboarding with
// the given username. The email is derived from the username.
func (f *Fixtures) CreateOnboardedUser(ctx context.Context, name, username string) models.User {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	u := models.User{
		ID:         primitive.NewObjectID(),
		Name:       name,
		Username:   username,
		UsernameCI: text.Fold(username),
		Email:      fmt.Sprintf("%s@test.com", username),
		Provider:   models.ProviderGoogle,
		Skills:     []models.Skill{{Name: "Go"}},
		Onboarded:  true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, u)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return u
}

// CreateIdea creates an open test idea owned by owner with a unique slug.
func (f *Fixtures) CreateIdea(ctx context.Context, owner primitive.ObjectID, title string) models.Idea {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	idea := models.Idea{
		ID:                      primitive.NewObjectID(),
		Title:                   title,
		Slug:                    fmt.Sprintf("test-idea-%s", uuid.New().String()[:8]),
		Description:             "A test idea description.",
		Owner:                   owner,
		Technologies:            []models.Technology{{Name: "Go"}, {Name: "MongoDB"}},
		Status:                  models.StatusOpen,
		LookingForCollaborators: true,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	_, err := f.db.Collection("ideas").InsertOne(ctx, idea)
	if err != nil {
		f.t.Fatalf("failed to create test idea: %v", err)
	}

	return idea
}

// CreateIdeaAt creates an open test idea with an explicit creation time.
// Use this to build feeds with a known ordering for pagination tests.
func (f *Fixtures) CreateIdeaAt(ctx context.Context, owner primitive.ObjectID, title string, createdAt time.Time) models.Idea {
	f.t.Helper()

	idea := f.CreateIdea(ctx, owner, title)
	idea.CreatedAt = createdAt.UTC().Truncate(time.Millisecond)
	idea.UpdatedAt = idea.CreatedAt

	_, err := f.db.Collection("ideas").ReplaceOne(ctx, map[string]any{"_id": idea.ID}, idea)
	if err != nil {
		f.t.Fatalf("failed to backdate test idea: %v", err)
	}

	return idea
}

// CreateIdeaWithRequest creates a test idea that has one pending join
// request from requester.
func (f *Fixtures) CreateIdeaWithRequest(ctx context.Context, owner, requester primitive.ObjectID, title string) models.Idea {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	idea := f.CreateIdea(ctx, owner, title)
	idea.Requests = []models.JoinRequest{{
		UserID:      requester,
		Role:        "developer",
		Status:      models.RequestPending,
		RequestedAt: now,
	}}

	_, err := f.db.Collection("ideas").ReplaceOne(ctx, map[string]any{"_id": idea.ID}, idea)
	if err != nil {
		f.t.Fatalf("failed to add request to test idea: %v", err)
	}

	return idea
}

// CreateIdeaWithMember creates a test idea that has member on its team.
func (f *Fixtures) CreateIdeaWithMember(ctx context.Context, owner, member primitive.ObjectID, title string) models.Idea {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	idea := f.CreateIdea(ctx, owner, title)
	idea.TeamMembers = []models.TeamMember{{
		UserID:   member,
		Role:     "developer",
		JoinedAt: now,
	}}

	_, err := f.db.Collection("ideas").ReplaceOne(ctx, map[string]any{"_id": idea.ID}, idea)
	if err != nil {
		f.t.Fatalf("failed to add member to test idea: %v", err)
	}

	return idea
}
