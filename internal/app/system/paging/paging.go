// Package paging implements keyset pagination over the idea feed.
//
// The feed is a strict total order on (created_at DESC, _id DESC); created_at
// alone is not unique, so the document id breaks ties. A page position is an
// opaque URL-safe base64 token encoding the sort key of the last item on the
// page.
// Clients treat the token as a cursor; only this package knows its shape.
package paging

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit is the page size used when the caller does not ask for one.
const DefaultLimit = 10

// MaxLimit caps the caller-requested page size.
const MaxLimit = 15

// ErrInvalidCursor reports a cursor token that is malformed or does not
// decode to the expected shape. It maps to a 400 at the HTTP surface.
var ErrInvalidCursor = &invalidCursorError{}

type invalidCursorError struct{}

func (*invalidCursorError) Error() string { return "invalid cursor format" }

// Cursor is a decoded feed position: the sort key of the last item already
// seen.
type Cursor struct {
	CreatedAt time.Time
	ID        primitive.ObjectID
}

// envelope is the wire form of a cursor inside the base64 token.
type envelope struct {
	CreatedAt string `json:"created_at"`
	ID        string `json:"id"`
}

// ParseLimit extracts the "limit" query parameter, applying the default and
// clamping to MaxLimit. Non-numeric and non-positive values fall back to
// the default.
func ParseLimit(r *http.Request) int {
	s := query.Get(r, "limit")
	if s == "" {
		return DefaultLimit
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// Encode produces the opaque token for the position after the item with the
// given sort key.
func Encode(createdAt time.Time, id primitive.ObjectID) string {
	raw, _ := json.Marshal(envelope{
		CreatedAt: createdAt.UTC().Format(time.RFC3339Nano),
		ID:        id.Hex(),
	})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses an opaque token back into a Cursor. Any malformed token
// (bad base64, bad JSON, bad timestamp, bad object id) yields
// ErrInvalidCursor.
func Decode(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	createdAt, err := time.Parse(time.RFC3339Nano, env.CreatedAt)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	id, err := primitive.ObjectIDFromHex(env.ID)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	return Cursor{CreatedAt: createdAt, ID: id}, nil
}

// Window returns the filter selecting items strictly after the cursor in
// feed order: created_at < c.CreatedAt, or equal created_at with a smaller
// id. The strict total order guarantees no duplicates or skips across pages
// absent concurrent deletions.
func (c Cursor) Window() bson.M {
	return bson.M{
		"$or": bson.A{
			bson.M{"created_at": bson.M{"$lt": c.CreatedAt}},
			bson.M{"created_at": c.CreatedAt, "_id": bson.M{"$lt": c.ID}},
		},
	}
}

// FindOptions returns find options sorted in feed order with a limit+1
// look-ahead so the caller can detect whether more pages remain.
func FindOptions(limit int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		}).
		SetLimit(int64(limit + 1))
}

// Page is the trimmed result of a look-ahead fetch.
type Page struct {
	HasMore bool
	// Next is the cursor for the following page, or "" when HasMore is
	// false.
	Next string
}

// Trim applies the look-ahead rule to a slice fetched with limit+1: if more
// than limit rows came back, the extra row is dropped and HasMore is set.
// The next cursor is computed from the last kept item via keyFn.
func Trim[T any](rows *[]T, limit int, keyFn func(T) (time.Time, primitive.ObjectID)) Page {
	var page Page
	if len(*rows) > limit {
		*rows = (*rows)[:limit]
		page.HasMore = true
	}
	if page.HasMore && len(*rows) > 0 {
		last := (*rows)[len(*rows)-1]
		createdAt, id := keyFn(last)
		page.Next = Encode(createdAt, id)
	}
	return page
}
