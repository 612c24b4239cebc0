package ideas_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/ideahub/internal/app/features/ideas"
	ideastore "github.com/dalemusser/ideahub/internal/app/store/ideas"
	userstore "github.com/dalemusser/ideahub/internal/app/store/users"
	"github.com/dalemusser/ideahub/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*ideas.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := ideas.NewHandler(ideastore.New(db), userstore.New(db), zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to parse response envelope: %v", err)
	}
	return env
}

type feedBody struct {
	Ideas []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Owner struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"owner"`
	} `json:"ideas"`
	Cursor  *string `json:"cursor"`
	HasMore bool    `json:"hasMore"`
}

func TestServeFeed_Pagination(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateOnboardedUser(ctx, "Feed Owner", "feedowner")
	base := time.Now().UTC().Add(-time.Hour)
	for n := 0; n < 4; n++ {
		fx.CreateIdeaAt(ctx, owner.ID, "Idea", base.Add(time.Duration(n)*time.Minute))
	}

	req := httptest.NewRequest("GET", "/api/idea?limit=3", nil)
	rec := httptest.NewRecorder()
	h.ServeFeed(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body feedBody
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if len(body.Ideas) != 3 {
		t.Fatalf("expected 3 ideas on first page, got %d", len(body.Ideas))
	}
	if !body.HasMore {
		t.Fatal("expected hasMore on first page")
	}
	if body.Cursor == nil {
		t.Fatal("expected a cursor on first page")
	}
	if body.Ideas[0].Owner.Username != "feedowner" {
		t.Errorf("expected populated owner, got %q", body.Ideas[0].Owner.Username)
	}

	// Second page via the returned cursor.
	req = httptest.NewRequest("GET", "/api/idea?limit=3&cursor="+*body.Cursor, nil)
	rec = httptest.NewRecorder()
	h.ServeFeed(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env = decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if len(body.Ideas) != 1 {
		t.Errorf("expected 1 idea on last page, got %d", len(body.Ideas))
	}
	if body.HasMore {
		t.Error("expected hasMore false on last page")
	}
	if body.Cursor != nil {
		t.Error("expected null cursor on last page")
	}
}

func TestServeFeed_LimitClamped(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateOnboardedUser(ctx, "Owner", "clampowner")
	base := time.Now().UTC().Add(-time.Hour)
	for n := 0; n < 20; n++ {
		fx.CreateIdeaAt(ctx, owner.ID, "Idea", base.Add(time.Duration(n)*time.Second))
	}

	req := httptest.NewRequest("GET", "/api/idea?limit=100", nil)
	rec := httptest.NewRecorder()
	h.ServeFeed(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body feedBody
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if len(body.Ideas) != 15 {
		t.Errorf("expected limit clamped to 15, got %d ideas", len(body.Ideas))
	}
	if !body.HasMore {
		t.Error("expected hasMore with 20 ideas and limit 15")
	}
}

func TestServeFeed_InvalidCursor(t *testing.T) {
	h, _ := newHandler(t)

	req := httptest.NewRequest("GET", "/api/idea?cursor=not-a-cursor", nil)
	rec := httptest.NewRecorder()
	h.ServeFeed(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed cursor, got %d", rec.Code)
	}
}

func TestServeSearch(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateOnboardedUser(ctx, "Owner", "searchowner")
	fx.CreateIdea(ctx, owner.ID, "Weather Dashboard")
	fx.CreateIdea(ctx, owner.ID, "Recipe Planner")

	req := httptest.NewRequest("GET", "/api/idea/search?q=WEATHER", nil)
	rec := httptest.NewRecorder()
	h.ServeSearch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	var results []struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(env.Data, &results); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Weather Dashboard" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestServeSearch_EmptyQuery(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateOnboardedUser(ctx, "Owner", "emptyq")
	fx.CreateIdea(ctx, owner.ID, "Should Not Appear")

	req := httptest.NewRequest("GET", "/api/idea/search", nil)
	rec := httptest.NewRecorder()
	h.ServeSearch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	var results []json.RawMessage
	if err := json.Unmarshal(env.Data, &results); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results for empty query, got %d", len(results))
	}
}

func TestServeDetail(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateOnboardedUser(ctx, "Owner", "detailowner")
	idea := fx.CreateIdea(ctx, owner.ID, "Detail Idea")

	req := httptest.NewRequest("GET", "/api/idea/"+idea.Slug, nil)
	req = testutil.WithChiURLParam(req, "slug", idea.Slug)
	rec := httptest.NewRecorder()
	h.ServeDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var got struct {
		Title string `json:"title"`
		Owner struct {
			Username string `json:"username"`
		} `json:"owner"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if got.Title != "Detail Idea" {
		t.Errorf("expected Detail Idea, got %q", got.Title)
	}
	if got.Owner.Username != "detailowner" {
		t.Errorf("expected populated owner, got %q", got.Owner.Username)
	}
}

func TestServeDetail_NotFound(t *testing.T) {
	h, _ := newHandler(t)

	req := httptest.NewRequest("GET", "/api/idea/no-such-idea", nil)
	req = testutil.WithChiURLParam(req, "slug", "no-such-idea")
	rec := httptest.NewRecorder()
	h.ServeDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
