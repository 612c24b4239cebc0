package userstore_test

import (
	"testing"
	"time"

	userstore "github.com/dalemusser/ideahub/internal/app/store/users"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/dalemusser/ideahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_UpsertOAuth_NewUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.UpsertOAuth(ctx, "new@test.com", "New User", "https://avatar.test/a.png", models.ProviderGoogle)
	if err != nil {
		t.Fatalf("UpsertOAuth failed: %v", err)
	}

	if u.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if u.Onboarded {
		t.Error("expected new user to start un-onboarded")
	}
	if u.Email != "new@test.com" {
		t.Errorf("expected email new@test.com, got %q", u.Email)
	}
	if u.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_UpsertOAuth_ExistingUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.UpsertOAuth(ctx, "same@test.com", "Original Name", "", models.ProviderGoogle)
	if err != nil {
		t.Fatalf("first UpsertOAuth failed: %v", err)
	}

	second, err := store.UpsertOAuth(ctx, "same@test.com", "Other Name", "", models.ProviderGitHub)
	if err != nil {
		t.Fatalf("second UpsertOAuth failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected the same account, got %s and %s", first.ID.Hex(), second.ID.Hex())
	}
}

func TestStore_GetByUsername_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created := fx.CreateOnboardedUser(ctx, "Alice", "alice")

	got, err := store.GetByUsername(ctx, "ALICE")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("expected user %s, got %s", created.ID.Hex(), got.ID.Hex())
	}

	_, err = store.GetByUsername(ctx, "nobody")
	if err != userstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Onboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "Fresh", "fresh@test.com")

	skills := []models.Skill{{Name: "Go"}, {Name: "React"}}
	got, err := store.Onboard(ctx, u.ID, "freshdev", skills)
	if err != nil {
		t.Fatalf("Onboard failed: %v", err)
	}

	if !got.Onboarded {
		t.Error("expected Onboarded to be true")
	}
	if got.Username != "freshdev" {
		t.Errorf("expected username freshdev, got %q", got.Username)
	}
	if len(got.Skills) != 2 {
		t.Errorf("expected 2 skills, got %d", len(got.Skills))
	}
}

func TestStore_Onboard_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateOnboardedUser(ctx, "Taken", "takenname")
	u := fx.CreateUser(ctx, "Late", "late@test.com")

	_, err := store.Onboard(ctx, u.ID, "TakenName", nil)
	if err != userstore.ErrDuplicateUsername {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestStore_Onboard_SameUserTwice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "Repeat", "repeat@test.com")

	if _, err := store.Onboard(ctx, u.ID, "repeatdev", nil); err != nil {
		t.Fatalf("first Onboard failed: %v", err)
	}

	// Re-onboarding with the same username is not a collision with self.
	got, err := store.Onboard(ctx, u.ID, "repeatdev", []models.Skill{{Name: "Go"}})
	if err != nil {
		t.Fatalf("second Onboard failed: %v", err)
	}
	if len(got.Skills) != 1 {
		t.Errorf("expected updated skills, got %d", len(got.Skills))
	}
}

func TestStore_RefreshToken_SetAndClear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateOnboardedUser(ctx, "Tokened", "tokened")
	expires := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Millisecond)

	if err := store.SetRefreshToken(ctx, u.ID, "hash-value", expires); err != nil {
		t.Fatalf("SetRefreshToken failed: %v", err)
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.RefreshTokenHash != "hash-value" {
		t.Errorf("expected stored hash, got %q", got.RefreshTokenHash)
	}
	if got.RefreshTokenExpiresAt == nil || !got.RefreshTokenExpiresAt.Equal(expires) {
		t.Errorf("expected expiry %v, got %v", expires, got.RefreshTokenExpiresAt)
	}

	if err := store.ClearRefreshToken(ctx, u.ID); err != nil {
		t.Fatalf("ClearRefreshToken failed: %v", err)
	}

	got, err = store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.RefreshTokenHash != "" {
		t.Error("expected hash to be cleared")
	}
	if got.RefreshTokenExpiresAt != nil {
		t.Error("expected expiry to be cleared")
	}
}

func TestStore_Summaries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateOnboardedUser(ctx, "Alpha", "alpha")
	b := fx.CreateOnboardedUser(ctx, "Beta", "beta")
	missing := primitive.NewObjectID()

	got, err := store.Summaries(ctx, []primitive.ObjectID{a.ID, b.ID, missing})
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}
	if got[a.ID].Name != "Alpha" {
		t.Errorf("expected Alpha, got %q", got[a.ID].Name)
	}
	if got[b.ID].Username != "beta" {
		t.Errorf("expected username beta, got %q", got[b.ID].Username)
	}
	if _, ok := got[missing]; ok {
		t.Error("did not expect a summary for an unknown id")
	}

	got, err = store.Summaries(ctx, nil)
	if err != nil {
		t.Fatalf("Summaries with no ids failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty map, got %d entries", len(got))
	}
}
