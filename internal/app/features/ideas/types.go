// internal/app/features/ideas/types.go
package ideas

import (
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/sanitize"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type technologyInput struct {
	Name string `json:"name"`
}

// uploadRequest is the body of POST /api/idea/upload.
type uploadRequest struct {
	Title                   string            `json:"title"`
	Description             string            `json:"description"`
	Technologies            []technologyInput `json:"technologies"`
	Status                  string            `json:"status"`
	LookingForCollaborators bool              `json:"lookingForCollaborators"`
	Requirements            []string          `json:"requirements"`
}

// sanitizeTechnologies folds the raw inputs into model values, dropping
// entries whose name sanitizes away to nothing.
func sanitizeTechnologies(in []technologyInput) []models.Technology {
	out := make([]models.Technology, 0, len(in))
	for _, t := range in {
		if name := sanitize.Text(t.Name); name != "" {
			out = append(out, models.Technology{Name: name})
		}
	}
	return out
}

func sanitizeRequirements(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = sanitize.Text(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// validate sanitizes the request in place and checks the creation rules.
func (req *uploadRequest) validate() error {
	req.Title = sanitize.Text(req.Title)
	req.Description = sanitize.Description(req.Description)

	if req.Title == "" {
		return apperr.BadRequest("Title is required")
	}
	if len([]rune(req.Title)) > models.MaxTitleLen {
		return apperr.BadRequest("Title must be at most 200 characters")
	}
	if req.Description == "" {
		return apperr.BadRequest("Description is required")
	}
	if req.Status != "" && !models.ValidStatus(req.Status) {
		return apperr.BadRequest("Invalid idea status")
	}
	return nil
}

// patchRequest is the body of PATCH /api/idea/{slug}. Absent fields stay
// untouched; title, slug, and owner are immutable.
type patchRequest struct {
	Description  *string           `json:"description"`
	Status       *string           `json:"status"`
	Technologies []technologyInput `json:"technologies"`
	Requirements []string          `json:"requirements"`
}

// toPatch sanitizes the request into the model-level patch.
func (req patchRequest) toPatch() models.IdeaPatch {
	p := models.IdeaPatch{}
	if req.Description != nil {
		d := sanitize.Description(*req.Description)
		p.Description = &d
	}
	if req.Status != nil {
		s := sanitize.Text(*req.Status)
		p.Status = &s
	}
	if req.Technologies != nil {
		p.Technologies = sanitizeTechnologies(req.Technologies)
	}
	if req.Requirements != nil {
		p.Requirements = sanitizeRequirements(req.Requirements)
	}
	return p
}

// roleRequest is the body of POST /api/idea/{slug}/request.
type roleRequest struct {
	Role string `json:"role"`
}

// requesterRequest is the body of accept and reject.
type requesterRequest struct {
	RequesterID string `json:"requesterId"`
}

// memberRequest is the body of remove-member.
type memberRequest struct {
	MemberID string `json:"memberId"`
}

// ideaView is an idea with its owner populated for responses.
type ideaView struct {
	models.Idea
	Owner models.Summary `json:"owner"`
}

func viewOf(idea models.Idea, owners map[primitive.ObjectID]models.Summary) ideaView {
	return ideaView{Idea: idea, Owner: owners[idea.Owner]}
}
