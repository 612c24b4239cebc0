// internal/app/features/ideas/write.go
package ideas

import (
	"context"
	"net/http"
	"time"

	ideastore "github.com/dalemusser/ideahub/internal/app/store/ideas"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/auth"
	"github.com/dalemusser/ideahub/internal/app/system/respond"
	"github.com/dalemusser/ideahub/internal/app/system/slug"
	"github.com/dalemusser/ideahub/internal/app/system/timeouts"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.uber.org/zap"
)

// ServeUpload handles POST /api/idea/upload.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	user, err := auth.MustCurrentUser(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	var req uploadRequest
	if err := respond.DecodeBody(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if err := req.validate(); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	technologies := sanitizeTechnologies(req.Technologies)
	if len(technologies) == 0 {
		respond.Error(w, h.Log, apperr.BadRequest("At least one technology is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ideaSlug, err := slug.Generate(ctx, req.Title, h.Ideas.SlugExists)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	idea := models.Idea{
		Title:                   req.Title,
		Slug:                    ideaSlug,
		Description:             req.Description,
		Owner:                   user.ID,
		Technologies:            technologies,
		Requirements:            sanitizeRequirements(req.Requirements),
		Status:                  req.Status,
		LookingForCollaborators: req.LookingForCollaborators,
	}

	created, err := h.Ideas.Create(ctx, idea)
	if err == ideastore.ErrDuplicateSlug {
		// Lost the race after the uniqueness probe.
		respond.Error(w, h.Log, apperr.Conflict("An idea with a similar title was just created, try again"))
		return
	}
	if err != nil {
		respond.Error(w, h.Log, apperr.Internal("Something went wrong", err))
		return
	}

	h.Log.Info("idea created",
		zap.String("idea_id", created.ID.Hex()),
		zap.String("slug", created.Slug),
		zap.String("owner", user.ID.Hex()))

	respond.JSON(w, http.StatusCreated, created, "Idea created")
}

// ServeUpdate handles PATCH /api/idea/{slug}: owner-only partial update of
// the mutable fields.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	user, err := auth.MustCurrentUser(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	var req patchRequest
	if err := respond.DecodeBody(r, &req); err != nil {
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

	if err := idea.ApplyPatch(user.ID, req.toPatch(), time.Now().UTC()); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if err := h.save(ctx, idea); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	respond.JSON(w, http.StatusOK, idea, "Idea updated")
}

// ServeDelete handles DELETE /api/idea/{slug}: owner-only.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
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
	if !idea.IsOwner(user.ID) {
		respond.Error(w, h.Log, apperr.Forbidden("You are not the owner of this idea"))
		return
	}

	if err := h.Ideas.Delete(ctx, idea.ID); err != nil && err != ideastore.ErrNotFound {
		respond.Error(w, h.Log, apperr.Internal("Something went wrong", err))
		return
	}

	h.Log.Info("idea deleted",
		zap.String("idea_id", idea.ID.Hex()),
		zap.String("owner", user.ID.Hex()))

	respond.JSON(w, http.StatusOK, nil, "Idea deleted")
}
