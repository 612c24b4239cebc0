// internal/app/features/ideas/team.go
package ideas

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/auth"
	"github.com/dalemusser/ideahub/internal/app/system/respond"
	"github.com/dalemusser/ideahub/internal/app/system/sanitize"
	"github.com/dalemusser/ideahub/internal/app/system/timeouts"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// mutate runs a state-machine step against the freshly loaded aggregate and
// persists the result. The step returns the success message.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, step func(idea *models.Idea, actor primitive.ObjectID, now time.Time) (string, error)) {
	user, err := auth.MustCurrentUser(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	idea, err := h.loadBySlug(ctx, r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	msg, err := step(&idea, user.ID, time.Now().UTC())
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if err := h.save(ctx, idea); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.Log.Info("idea team updated",
		zap.String("idea_id", idea.ID.Hex()),
		zap.String("actor", user.ID.Hex()))

	respond.JSON(w, http.StatusOK, idea, msg)
}

// ServeRequest handles POST /api/idea/{slug}/request: ask to join the team.
func (h *Handler) ServeRequest(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := respond.DecodeBody(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	role := sanitize.Text(req.Role)
	if role == "" {
		respond.Error(w, h.Log, apperr.BadRequest("Role is required"))
		return
	}

	h.mutate(w, r, func(idea *models.Idea, actor primitive.ObjectID, now time.Time) (string, error) {
		return "Join request submitted", idea.AddJoinRequest(actor, role, now)
	})
}

// ServeAccept handles POST /api/idea/{slug}/accept: owner accepts a pending
// request, moving the requester onto the team.
//
// Does not go through mutate: when the requester somehow already holds a
// membership, AcceptRequest prunes the stale request but still fails, and
// that pruning must be persisted.
func (h *Handler) ServeAccept(w http.ResponseWriter, r *http.Request) {
	requesterID, err := h.decodeUserID(r, "requesterId")
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	user, err := auth.MustCurrentUser(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	idea, err := h.loadBySlug(ctx, r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	acceptErr := idea.AcceptRequest(user.ID, requesterID, time.Now().UTC())
	if acceptErr != nil && apperr.StatusOf(acceptErr) != http.StatusConflict {
		respond.Error(w, h.Log, acceptErr)
		return
	}

	if err := h.save(ctx, idea); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if acceptErr != nil {
		respond.Error(w, h.Log, acceptErr)
		return
	}

	h.Log.Info("join request accepted",
		zap.String("idea_id", idea.ID.Hex()),
		zap.String("requester", requesterID.Hex()))

	respond.JSON(w, http.StatusOK, idea, "Request accepted")
}

// ServeReject handles POST /api/idea/{slug}/reject: owner rejects a pending
// request, which is deleted outright.
func (h *Handler) ServeReject(w http.ResponseWriter, r *http.Request) {
	requesterID, err := h.decodeUserID(r, "requesterId")
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.mutate(w, r, func(idea *models.Idea, actor primitive.ObjectID, now time.Time) (string, error) {
		return "Request rejected", idea.RejectRequest(actor, requesterID, now)
	})
}

// ServeRemoveMember handles POST /api/idea/{slug}/remove-member.
func (h *Handler) ServeRemoveMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := h.decodeUserID(r, "memberId")
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.mutate(w, r, func(idea *models.Idea, actor primitive.ObjectID, now time.Time) (string, error) {
		return "Member removed", idea.RemoveMember(actor, memberID, now)
	})
}

// decodeUserID reads a single ObjectID field from the body.
func (h *Handler) decodeUserID(r *http.Request, field string) (primitive.ObjectID, error) {
	var raw string
	switch field {
	case "requesterId":
		var req requesterRequest
		if err := respond.DecodeBody(r, &req); err != nil {
			return primitive.NilObjectID, err
		}
		raw = req.RequesterID
	case "memberId":
		var req memberRequest
		if err := respond.DecodeBody(r, &req); err != nil {
			return primitive.NilObjectID, err
		}
		raw = req.MemberID
	}

	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("Invalid user id")
	}
	return id, nil
}
