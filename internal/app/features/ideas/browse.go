// internal/app/features/ideas/browse.go
package ideas

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/paging"
	"github.com/dalemusser/ideahub/internal/app/system/respond"
	"github.com/dalemusser/ideahub/internal/app/system/sanitize"
	"github.com/dalemusser/ideahub/internal/app/system/timeouts"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// feedResponse is the body of GET /api/idea.
type feedResponse struct {
	Ideas   []ideaView `json:"ideas"`
	Cursor  *string    `json:"cursor"`
	HasMore bool       `json:"hasMore"`
}

// ServeFeed handles GET /api/idea: the newest-first idea feed, paged by an
// opaque cursor.
func (h *Handler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	limit := paging.ParseLimit(r)

	var cursor *paging.Cursor
	if token := query.Get(r, "cursor"); token != "" {
		c, err := paging.Decode(token)
		if err != nil {
			respond.Error(w, h.Log, apperr.BadRequest("Invalid cursor format"))
			return
		}
		cursor = &c
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rows, err := h.Ideas.FindPage(ctx, cursor, limit)
	if err != nil {
		respond.Error(w, h.Log, apperr.Internal("Something went wrong", err))
		return
	}

	page := paging.Trim(&rows, limit, func(i models.Idea) (time.Time, primitive.ObjectID) {
		return i.CreatedAt, i.ID
	})

	views, err := h.withOwners(ctx, rows)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	resp := feedResponse{Ideas: views, HasMore: page.HasMore}
	if page.HasMore {
		resp.Cursor = &page.Next
	}
	respond.JSON(w, http.StatusOK, resp, "Ideas fetched")
}

// ServeSearch handles GET /api/idea/search?q=. An empty query returns an
// empty list rather than the whole collection.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	q := sanitize.Text(query.Get(r, "q"))
	if q == "" {
		respond.JSON(w, http.StatusOK, []ideaView{}, "Search results")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rows, err := h.Ideas.Search(ctx, q)
	if err != nil {
		respond.Error(w, h.Log, apperr.Internal("Something went wrong", err))
		return
	}

	views, err := h.withOwners(ctx, rows)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, views, "Search results")
}

// ServeDetail handles GET /api/idea/{slug}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	idea, err := h.loadBySlug(ctx, r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	views, err := h.withOwners(ctx, []models.Idea{idea})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, views[0], "Idea fetched")
}

// withOwners builds the response views with each idea's owner populated.
func (h *Handler) withOwners(ctx context.Context, rows []models.Idea) ([]ideaView, error) {
	owners, err := h.ownerSummaries(ctx, rows)
	if err != nil {
		return nil, err
	}
	views := make([]ideaView, 0, len(rows))
	for _, idea := range rows {
		views = append(views, viewOf(idea, owners))
	}
	return views, nil
}
