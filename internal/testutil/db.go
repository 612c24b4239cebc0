package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	ideastore "github.com/dalemusser/ideahub/internal/app/store/ideas"
	userstore "github.com/dalemusser/ideahub/internal/app/store/users"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// SetupTestDB connects to the test MongoDB instance and returns a fresh,
// uniquely named database that is dropped when the test finishes. Tests
// are skipped when no MongoDB is reachable (set IDEAHUB_TEST_MONGO_URI to
// point somewhere else than localhost).
//
// Collection indexes are created up front so uniqueness violations behave
// as they do in production.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("IDEAHUB_TEST_MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("skipping: cannot connect to test MongoDB at %s: %v", uri, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("skipping: test MongoDB at %s not reachable: %v", uri, err)
	}

	dbName := fmt.Sprintf("ideahub_test_%s", uuid.New().String()[:8])
	db := client.Database(dbName)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	if err := ideastore.New(db).EnsureIndexes(ctx); err != nil {
		t.Fatalf("failed to create idea indexes: %v", err)
	}
	if err := userstore.New(db).EnsureIndexes(ctx); err != nil {
		t.Fatalf("failed to create user indexes: %v", err)
	}

	return db
}

// TestContext returns a context with a deadline suitable for test database
// calls.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}
