// Package slug derives URL-safe, globally unique identifiers from idea
// titles.
package slug

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/google/uuid"
)

// maxBaseLen caps the normalized base before any suffix is appended.
const maxBaseLen = 80

// maxAttempts bounds the number of suffixed candidates tried when the base
// slug is taken. Exhausting it is an internal error: the client did nothing
// wrong.
const maxAttempts = 5

// TakenFunc reports whether a candidate slug is already in use.
type TakenFunc func(ctx context.Context, slug string) (bool, error)

// Make normalizes a title into a base slug: lowercased, with runs of
// non-alphanumeric characters collapsed to single hyphens and leading or
// trailing hyphens trimmed. Titles that normalize to nothing (all
// punctuation) fall back to a generated base.
func Make(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) && r < 128 {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if len(s) > maxBaseLen {
		s = strings.TrimRight(s[:maxBaseLen], "-")
	}
	if s == "" {
		s = "idea-" + randomToken()
	}
	return s
}

// Generate returns a slug for title that is unique per taken at the moment
// of the check. The base slug is probed first; on collision, candidates of
// the form "<base>-<token>" are tried up to maxAttempts times.
func Generate(ctx context.Context, title string, taken TakenFunc) (string, error) {
	base := Make(title)

	exists, err := taken(ctx, base)
	if err != nil {
		return "", apperr.Internal("Something went wrong generating the idea slug", err)
	}
	if !exists {
		return base, nil
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := fmt.Sprintf("%s-%s", base, randomToken())
		exists, err := taken(ctx, candidate)
		if err != nil {
			return "", apperr.Internal("Something went wrong generating the idea slug", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", apperr.Internal("Something went wrong generating the idea slug",
		fmt.Errorf("slug space exhausted after %d attempts for base %q", maxAttempts, base))
}

// randomToken returns a short random disambiguator.
func randomToken() string {
	return uuid.New().String()[:8]
}
