// internal/app/features/users/handler.go
package users

import (
	"context"
	"net/http"
	"time"

	ideastore "github.com/dalemusser/ideahub/internal/app/store/ideas"
	userstore "github.com/dalemusser/ideahub/internal/app/store/users"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/auth"
	"github.com/dalemusser/ideahub/internal/app/system/respond"
	"github.com/dalemusser/ideahub/internal/app/system/timeouts"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's views of their own ideas and teams.
type Handler struct {
	Ideas *ideastore.Store
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler creates the users handler.
func NewHandler(ideas *ideastore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Ideas: ideas, Users: users, Log: logger}
}

// ServeMyIdeas handles GET /api/user/my-ideas: every idea the caller owns,
// newest first.
func (h *Handler) ServeMyIdeas(w http.ResponseWriter, r *http.Request) {
	user, err := auth.MustCurrentUser(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rows, err := h.Ideas.FindByOwner(ctx, user.ID)
	if err != nil {
		respond.Error(w, h.Log, apperr.Internal("Something went wrong", err))
		return
	}

	respond.JSON(w, http.StatusOK, rows, "Your ideas")
}

// teamMemberView is a team entry with the member resolved to their public
// projection.
type teamMemberView struct {
	User     models.Summary `json:"user"`
	Role     string         `json:"role"`
	JoinedAt time.Time      `json:"joinedAt"`
}

// teamIdeaView is an idea with owner and team members populated.
type teamIdeaView struct {
	models.Idea
	Owner       models.Summary   `json:"owner"`
	TeamMembers []teamMemberView `json:"teamMembers"`
}

// ServeMyTeams handles GET /api/user/my-teams: every idea where the caller
// is the owner or a team member, with people resolved to summaries.
func (h *Handler) ServeMyTeams(w http.ResponseWriter, r *http.Request) {
	user, err := auth.MustCurrentUser(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rows, err := h.Ideas.FindByParticipant(ctx, user.ID)
	if err != nil {
		respond.Error(w, h.Log, apperr.Internal("Something went wrong", err))
		return
	}

	// One lookup for every person appearing across all the teams.
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, idea := range rows {
		add(idea.Owner)
		for _, m := range idea.TeamMembers {
			add(m.UserID)
		}
	}

	people, err := h.Users.Summaries(ctx, ids)
	if err != nil {
		respond.Error(w, h.Log, apperr.Internal("Something went wrong", err))
		return
	}

	views := make([]teamIdeaView, 0, len(rows))
	for _, idea := range rows {
		members := make([]teamMemberView, 0, len(idea.TeamMembers))
		for _, m := range idea.TeamMembers {
			members = append(members, teamMemberView{
				User:     people[m.UserID],
				Role:     m.Role,
				JoinedAt: m.JoinedAt,
			})
		}
		views = append(views, teamIdeaView{
			Idea:        idea,
			Owner:       people[idea.Owner],
			TeamMembers: members,
		})
	}

	respond.JSON(w, http.StatusOK, views, "Your teams")
}

// statsResponse is the body of GET /api/user/my-stats.
type statsResponse struct {
	Ideas           int64 `json:"ideas"`
	Teams           int64 `json:"teams"`
	PendingRequests int64 `json:"pendingRequests"`
}

// ServeMyStats handles GET /api/user/my-stats: counts of ideas the caller
// owns, teams they participate in, and join requests awaiting their review.
func (h *Handler) ServeMyStats(w http.ResponseWriter, r *http.Request) {
	user, err := auth.MustCurrentUser(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ideas, err := h.Ideas.CountByOwner(ctx, user.ID)
	if err != nil {
		respond.Error(w, h.Log, apperr.Internal("Something went wrong", err))
		return
	}
	teams, err := h.Ideas.CountByParticipant(ctx, user.ID)
	if err != nil {
		respond.Error(w, h.Log, apperr.Internal("Something went wrong", err))
		return
	}
	pending, err := h.Ideas.CountPendingRequests(ctx, user.ID)
	if err != nil {
		respond.Error(w, h.Log, apperr.Internal("Something went wrong", err))
		return
	}

	respond.JSON(w, http.StatusOK, statsResponse{
		Ideas:           ideas,
		Teams:           teams,
		PendingRequests: pending,
	}, "Your stats")
}
