package models

import (
	"time"

	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Idea status values.
const (
	StatusDraft      = "draft"
	StatusOpen       = "open"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusArchived   = "archived"
)

// ValidStatus reports whether s is one of the idea status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusOpen, StatusInProgress, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// MaxTitleLen is the maximum idea title length in characters.
const MaxTitleLen = 200

// Technology is a named technology on an idea. Ordering is preserved for
// display but carries no semantics.
type Technology struct {
	Name string `bson:"name" json:"name"`
}

// JoinRequest is a pending ask by a non-owner to join an idea's team.
// Requests are deleted when resolved (accepted or rejected), never archived.
type JoinRequest struct {
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	Role        string             `bson:"role" json:"role"`
	Status      string             `bson:"status" json:"status"` // always "pending" while stored
	RequestedAt time.Time          `bson:"requested_at" json:"requestedAt"`
}

// RequestPending is the status of every stored join request.
const RequestPending = "pending"

// TeamMember is an accepted collaborator on an idea. The owner is never
// listed here; ownership is tracked by Idea.Owner.
type TeamMember struct {
	UserID   primitive.ObjectID `bson:"user_id" json:"userId"`
	Role     string             `bson:"role" json:"role"`
	JoinedAt time.Time          `bson:"joined_at" json:"joinedAt"`
}

// Idea is the central aggregate: a posted project concept together with its
// collaboration-request queue and team roster.
//
// Requests and TeamMembers have no lifecycle of their own. Every mutation
// goes through a method on the freshly loaded aggregate and the whole
// document is persisted afterwards; the database's single-document
// atomicity is the only consistency guarantee relied upon.
type Idea struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`

	Technologies []Technology `bson:"technologies" json:"technologies"`
	Requirements []string     `bson:"requirements,omitempty" json:"requirements,omitempty"`

	Status                  string `bson:"status" json:"status"`
	LookingForCollaborators bool   `bson:"looking_for_collaborators" json:"lookingForCollaborators"`

	Requests    []JoinRequest `bson:"requests,omitempty" json:"requests,omitempty"`
	TeamMembers []TeamMember  `bson:"team_members,omitempty" json:"teamMembers,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsOwner reports whether userID is the idea's owner. Ownership is compared
// by identity, always against the freshly loaded document.
func (i *Idea) IsOwner(userID primitive.ObjectID) bool {
	return i.Owner == userID
}

// IsTeamMember reports whether userID currently holds a team membership.
func (i *Idea) IsTeamMember(userID primitive.ObjectID) bool {
	for _, m := range i.TeamMembers {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// pendingIndex returns the index of the first pending request from userID,
// or -1. First match wins when duplicates somehow exist.
func (i *Idea) pendingIndex(userID primitive.ObjectID) int {
	for idx, r := range i.Requests {
		if r.UserID == userID {
			return idx
		}
	}
	return -1
}

// AddJoinRequest appends a pending request from userID in the given role.
//
// The owner may not request to join their own idea, and a user with a
// request already pending may not submit another.
func (i *Idea) AddJoinRequest(userID primitive.ObjectID, role string, now time.Time) error {
	if i.IsOwner(userID) {
		return apperr.Forbidden("You cannot request to join your own idea")
	}
	if i.IsTeamMember(userID) {
		return apperr.Conflict("You are already a member of this team")
	}
	if i.pendingIndex(userID) >= 0 {
		return apperr.Conflict("You already have a pending request for this idea")
	}
	i.Requests = append(i.Requests, JoinRequest{
		UserID:      userID,
		Role:        role,
		Status:      RequestPending,
		RequestedAt: now,
	})
	i.UpdatedAt = now
	return nil
}

// AcceptRequest resolves the pending request from requesterID into a team
// membership. Only the owner may accept.
//
// If the requester is somehow already a member, the stale request is
// deleted and the call fails with a conflict rather than silently
// succeeding.
func (i *Idea) AcceptRequest(actingUser, requesterID primitive.ObjectID, now time.Time) error {
	if !i.IsOwner(actingUser) {
		return apperr.Forbidden("Only the idea owner can accept requests")
	}
	idx := i.pendingIndex(requesterID)
	if idx < 0 {
		return apperr.NotFound("No pending request from this user")
	}
	req := i.Requests[idx]
	i.Requests = append(i.Requests[:idx], i.Requests[idx+1:]...)
	i.UpdatedAt = now
	if i.IsTeamMember(requesterID) {
		// Stale duplicate: the request is pruned above, but the accept fails.
		return apperr.Conflict("User is already a member of this team")
	}
	i.TeamMembers = append(i.TeamMembers, TeamMember{
		UserID:   requesterID,
		Role:     req.Role,
		JoinedAt: now,
	})
	return nil
}

// RejectRequest deletes the pending request from requesterID. Only the
// owner may reject. Membership is never touched.
func (i *Idea) RejectRequest(actingUser, requesterID primitive.ObjectID, now time.Time) error {
	if !i.IsOwner(actingUser) {
		return apperr.Forbidden("Only the idea owner can reject requests")
	}
	idx := i.pendingIndex(requesterID)
	if idx < 0 {
		return apperr.NotFound("No pending request from this user")
	}
	i.Requests = append(i.Requests[:idx], i.Requests[idx+1:]...)
	i.UpdatedAt = now
	return nil
}

// RemoveMember deletes memberID's team membership. Only the owner may
// remove members, and the owner themselves is unremovable.
func (i *Idea) RemoveMember(actingUser, memberID primitive.ObjectID, now time.Time) error {
	if !i.IsOwner(actingUser) {
		return apperr.Forbidden("Only the idea owner can remove members")
	}
	if i.IsOwner(memberID) {
		return apperr.BadRequest("The idea owner cannot be removed from the team")
	}
	for idx, m := range i.TeamMembers {
		if m.UserID == memberID {
			i.TeamMembers = append(i.TeamMembers[:idx], i.TeamMembers[idx+1:]...)
			i.UpdatedAt = now
			return nil
		}
	}
	return apperr.NotFound("User is not a member of this team")
}

// IdeaPatch carries the mutable fields of an idea for partial updates.
// Title, slug, and owner are immutable after creation.
type IdeaPatch struct {
	Description  *string      `json:"description,omitempty"`
	Status       *string      `json:"status,omitempty"`
	Technologies []Technology `json:"technologies,omitempty"`
	Requirements []string     `json:"requirements,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p IdeaPatch) IsEmpty() bool {
	return p.Description == nil && p.Status == nil && p.Technologies == nil && p.Requirements == nil
}

// ApplyPatch merges the provided mutable fields into the idea. Only the
// owner may update. An empty patch and an unknown status are rejected.
func (i *Idea) ApplyPatch(actingUser primitive.ObjectID, patch IdeaPatch, now time.Time) error {
	if !i.IsOwner(actingUser) {
		return apperr.Forbidden("You are not the owner of this idea")
	}
	if patch.IsEmpty() {
		return apperr.BadRequest("No update fields provided")
	}
	if patch.Status != nil && !ValidStatus(*patch.Status) {
		return apperr.BadRequest("Invalid idea status")
	}
	if patch.Description != nil {
		if *patch.Description == "" {
			return apperr.BadRequest("Description cannot be empty")
		}
		i.Description = *patch.Description
	}
	if patch.Status != nil {
		i.Status = *patch.Status
	}
	if patch.Technologies != nil {
		i.Technologies = patch.Technologies
	}
	if patch.Requirements != nil {
		i.Requirements = patch.Requirements
	}
	i.UpdatedAt = now
	return nil
}
