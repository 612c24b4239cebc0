package ideas_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/ideahub/internal/testutil"
)

func TestServeUpload(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateOnboardedUser(ctx, "Uploader", "uploader")

	body := `{"title":"Realtime Whiteboard","description":"Draw together.","technologies":[{"name":"Go"},{"name":"WebSocket"}],"status":"open","lookingForCollaborators":true,"requirements":["frontend dev"]}`
	req := httptest.NewRequest("POST", "/api/idea/upload", strings.NewReader(body))
	req = testutil.WithUser(req, owner)
	rec := httptest.NewRecorder()

	h.ServeUpload(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var created struct {
		Slug   string `json:"slug"`
		Status string `json:"status"`
		Owner  string `json:"owner"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if created.Slug != "realtime-whiteboard" {
		t.Errorf("expected slug realtime-whiteboard, got %q", created.Slug)
	}
	if created.Status != "open" {
		t.Errorf("expected status open, got %q", created.Status)
	}
	if created.Owner != owner.ID.Hex() {
		t.Errorf("expected owner %s, got %q", owner.ID.Hex(), created.Owner)
	}
}

func TestServeUpload_SlugCollision(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateOnboardedUser(ctx, "Uploader", "collider")

	body := `{"title":"Same Title","description":"First.","technologies":[{"name":"Go"}],"status":"open","lookingForCollaborators":false,"requirements":[]}`
	for n := 0; n < 2; n++ {
		req := httptest.NewRequest("POST", "/api/idea/upload", strings.NewReader(body))
		req = testutil.WithUser(req, owner)
		rec := httptest.NewRecorder()
		h.ServeUpload(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("upload %d: expected 201, got %d: %s", n, rec.Code, rec.Body.String())
		}

		env := decodeEnvelope(t, rec)
		var created struct {
			Slug string `json:"slug"`
		}
		if err := json.Unmarshal(env.Data, &created); err != nil {
			t.Fatalf("failed to parse data: %v", err)
		}
		if n == 0 && created.Slug != "same-title" {
			t.Errorf("expected base slug same-title, got %q", created.Slug)
		}
		if n == 1 && !strings.HasPrefix(created.Slug, "same-title-") {
			t.Errorf("expected suffixed slug, got %q", created.Slug)
		}
	}
}

func TestServeUpload_Validation(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateOnboardedUser(ctx, "Uploader", "validator")
	longTitle := strings.Repeat("x", 201)

	cases := []struct {
		name string
		body string
	}{
		{"no title", `{"title":"","description":"d","technologies":[{"name":"Go"}],"status":"open","lookingForCollaborators":false,"requirements":[]}`},
		{"title too long", `{"title":"` + longTitle + `","description":"d","technologies":[{"name":"Go"}],"status":"open","lookingForCollaborators":false,"requirements":[]}`},
		{"no description", `{"title":"t","description":"","technologies":[{"name":"Go"}],"status":"open","lookingForCollaborators":false,"requirements":[]}`},
		{"no technologies", `{"title":"t","description":"d","technologies":[],"status":"open","lookingForCollaborators":false,"requirements":[]}`},
		{"blank technologies", `{"title":"t","description":"d","technologies":[{"name":"  "}],"status":"open","lookingForCollaborators":false,"requirements":[]}`},
		{"bad status", `{"title":"t","description":"d","technologies":[{"name":"Go"}],"status":"sideways","lookingForCollaborators":false,"requirements":[]}`},
		{"unknown field", `{"title":"t","description":"d","technologies":[{"name":"Go"}],"status":"open","lookingForCollaborators":false,"requirements":[],"slug":"hijack"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/idea/upload", strings.NewReader(tc.body))
			req = testutil.WithUser(req, owner)
			rec := httptest.NewRecorder()
			h.ServeUpload(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestServeUpload_SanitizesMarkup(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateOnboardedUser(ctx, "Uploader", "sanitizer")

	body := `{"title":"Clean <script>alert(1)</script> Title","description":"Fine <b>bold</b> <script>alert(2)</script>","technologies":[{"name":"Go"}],"status":"open","lookingForCollaborators":false,"requirements":[]}`
	req := httptest.NewRequest("POST", "/api/idea/upload", strings.NewReader(body))
	req = testutil.WithUser(req, owner)
	rec := httptest.NewRecorder()

	h.ServeUpload(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var created struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if strings.Contains(created.Title, "script") {
		t.Errorf("expected script stripped from title, got %q", created.Title)
	}
	if strings.Contains(created.Description, "script") {
		t.Errorf("expected script stripped from description, got %q", created.Description)
	}
	if !strings.Contains(created.Description, "<b>bold</b>") {
		t.Errorf("expected benign markup kept in description, got %q", created.Description)
	}
}

func TestServeUpdate(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateOnboardedUser(ctx, "Owner", "patchowner")
	idea := fx.CreateIdea(ctx, owner.ID, "Patchable")

	body := `{"description":"New description.","status":"in-progress"}`
	req := httptest.NewRequest("PATCH", "/api/idea/"+idea.Slug, strings.NewReader(body))
	req = testutil.WithChiURLParam(req, "slug", idea.Slug)
	req = testutil.WithUser(req, owner)
	rec := httptest.NewRecorder()

	h.ServeUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var updated struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Status      string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if updated.Description != "New description." {
		t.Errorf("expected updated description, got %q", updated.Description)
	}
	if updated.Status != "in-progress" {
		t.Errorf("expected status in-progress, got %q", updated.Status)
	}
	if updated.Title != "Patchable" {
		t.Errorf("title must be immutable, got %q", updated.Title)
	}
}

func TestServeUpdate_Failures(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateOnboardedUser(ctx, "Owner", "failowner")
	other := fx.CreateOnboardedUser(ctx, "Other", "failother")
	idea := fx.CreateIdea(ctx, owner.ID, "Guarded")

	cases := []struct {
		name string
		slug string
		user string
		body string
		want int
	}{
		{"not owner", idea.Slug, "other", `{"status":"open"}`, http.StatusForbidden},
		{"empty patch", idea.Slug, "owner", `{}`, http.StatusBadRequest},
		{"bad status", idea.Slug, "owner", `{"status":"sideways"}`, http.StatusBadRequest},
		{"empty description", idea.Slug, "owner", `{"description":""}`, http.StatusBadRequest},
		{"missing idea", "no-such-slug", "owner", `{"status":"open"}`, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("PATCH", "/api/idea/"+tc.slug, strings.NewReader(tc.body))
			req = testutil.WithChiURLParam(req, "slug", tc.slug)
			if tc.user == "owner" {
				req = testutil.WithUser(req, owner)
			} else {
				req = testutil.WithUser(req, other)
			}
			rec := httptest.NewRecorder()
			h.ServeUpdate(rec, req)
			if rec.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestServeDelete(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateOnboardedUser(ctx, "Owner", "delowner")
	other := fx.CreateOnboardedUser(ctx, "Other", "delother")
	idea := fx.CreateIdea(ctx, owner.ID, "Deletable")

	// A non-owner cannot delete.
	req := httptest.NewRequest("DELETE", "/api/idea/"+idea.Slug, nil)
	req = testutil.WithChiURLParam(req, "slug", idea.Slug)
	req = testutil.WithUser(req, other)
	rec := httptest.NewRecorder()
	h.ServeDelete(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", rec.Code)
	}

	// The owner can.
	req = httptest.NewRequest("DELETE", "/api/idea/"+idea.Slug, nil)
	req = testutil.WithChiURLParam(req, "slug", idea.Slug)
	req = testutil.WithUser(req, owner)
	rec = httptest.NewRecorder()
	h.ServeDelete(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Gone afterwards.
	req = httptest.NewRequest("GET", "/api/idea/"+idea.Slug, nil)
	req = testutil.WithChiURLParam(req, "slug", idea.Slug)
	rec = httptest.NewRecorder()
	h.ServeDetail(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}
