package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Provider values accepted for OAuth sign-in.
const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// Skill is a named skill on a user profile.
type Skill struct {
	Name string `bson:"name" json:"name"`
}

// User represents an account created through OAuth sign-in.
//
// Username is unset until the user completes onboarding (picks a username
// and lists skills); most API routes are gated on Onboarded.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirebaseID string             `bson:"firebase_id,omitempty" json:"-"`
	Name       string             `bson:"name" json:"name"`
	Username   string             `bson:"username,omitempty" json:"username,omitempty"`
	UsernameCI string             `bson:"username_ci,omitempty" json:"-"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	Provider   string             `bson:"provider,omitempty" json:"provider,omitempty"`
	Profile    string             `bson:"profile,omitempty" json:"profile,omitempty"` // avatar URL
	Skills     []Skill            `bson:"skills,omitempty" json:"skills,omitempty"`
	Banner     string             `bson:"banner,omitempty" json:"banner,omitempty"`
	Onboarded  bool               `bson:"onboarded" json:"onboarded"`

	// RefreshTokenHash is the bcrypt hash of the currently valid refresh
	// token. Empty means no active refresh token (logged out).
	RefreshTokenHash      string     `bson:"refresh_token_hash,omitempty" json:"-"`
	RefreshTokenExpiresAt *time.Time `bson:"refresh_token_expires_at,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Summary is the public projection of a user embedded in idea responses.
type Summary struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Username string             `bson:"username,omitempty" json:"username,omitempty"`
	Profile  string             `bson:"profile,omitempty" json:"profile,omitempty"`
}

// Summary returns the public projection of u.
func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Username: u.Username, Profile: u.Profile}
}
