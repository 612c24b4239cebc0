// internal/app/features/ideas/handler.go
package ideas

import (
	"context"
	"net/http"

	ideastore "github.com/dalemusser/ideahub/internal/app/store/ideas"
	userstore "github.com/dalemusser/ideahub/internal/app/store/users"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the idea endpoints: the public feed, search, and the
// owner/team workflow.
type Handler struct {
	Ideas *ideastore.Store
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler creates the ideas handler.
func NewHandler(ideas *ideastore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Ideas: ideas, Users: users, Log: logger}
}

// loadBySlug fetches the idea named in the route, translating a missing
// document into a 404.
func (h *Handler) loadBySlug(ctx context.Context, r *http.Request) (models.Idea, error) {
	slug := chi.URLParam(r, "slug")
	idea, err := h.Ideas.GetBySlug(ctx, slug)
	if err == ideastore.ErrNotFound {
		return models.Idea{}, apperr.NotFound("Idea not found")
	}
	if err != nil {
		return models.Idea{}, apperr.Internal("Something went wrong", err)
	}
	return idea, nil
}

// save persists the whole aggregate after a state-machine mutation.
func (h *Handler) save(ctx context.Context, idea models.Idea) error {
	if err := h.Ideas.Replace(ctx, idea); err != nil {
		if err == ideastore.ErrNotFound {
			return apperr.NotFound("Idea not found")
		}
		return apperr.Internal("Something went wrong", err)
	}
	return nil
}

// ownerSummaries resolves the owner of each idea to its public projection.
func (h *Handler) ownerSummaries(ctx context.Context, ideas []models.Idea) (map[primitive.ObjectID]models.Summary, error) {
	seen := make(map[primitive.ObjectID]bool, len(ideas))
	ids := make([]primitive.ObjectID, 0, len(ideas))
	for _, i := range ideas {
		if !seen[i.Owner] {
			seen[i.Owner] = true
			ids = append(ids, i.Owner)
		}
	}
	sums, err := h.Users.Summaries(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("Something went wrong", err)
	}
	return sums, nil
}
