// Package slug contains the URL slug helpers used by the blog.
//
// Stored slugs were never canonicalized at write time, so the helpers here
// are deliberately tolerant: Normalize repairs doubled or dangling
// separators, Base strips the uniqueness suffix appended by Generate, and
// Cleanup recovers a usable slug from raw URL input.
package slug

import (
	"math/rand"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	separator        = "-"
	defaultMaxLength = 100
	base36Chars      = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var (
	// Hangul syllables count as local-alphabet characters.
	nonWordRe      = regexp.MustCompile(`[^\w\s가-힣]`)
	nonWordASCIIRe = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	multiSepRe     = regexp.MustCompile(`-{2,}`)
	trailingSepRe  = regexp.MustCompile(`-+$`)

	// Uniqueness-suffix heuristics: digits followed by 2-4 alphanumerics
	// (e.g. "123abc"), or a 6-10 character base36 token (e.g. "ljxfj3").
	idTailRe    = regexp.MustCompile(`^\d+[a-z0-9]{2,4}$`)
	tokenTailRe = regexp.MustCompile(`^[a-z0-9]{6,10}$`)

	validSlugRe = regexp.MustCompile(`^[a-z0-9가-힣-]+$`)
)

// Options controls Generate. The zero value preserves Hangul, appends a
// uniqueness suffix, and truncates to 100 characters.
type Options struct {
	// SkipUniqueID suppresses the timestamp+random suffix.
	SkipUniqueID bool
	// ASCIIOnly replaces Hangul characters with separators instead of
	// keeping them.
	ASCIIOnly bool
	// MaxLength bounds the slug length before the suffix is appended.
	// Values <= 0 mean the default of 100.
	MaxLength int
}

// Generate converts free text into a URL-friendly slug. Unless suppressed,
// a suffix built from the current time in base36 plus three random base36
// characters is appended. The suffix is not globally unique but collisions
// within the same millisecond are roughly 1 in 46,656.
func Generate(text string, opts Options) string {
	if text == "" {
		return ""
	}

	maxLength := opts.MaxLength
	if maxLength <= 0 {
		maxLength = defaultMaxLength
	}

	s := strings.TrimSpace(strings.ToLower(text))
	if opts.ASCIIOnly {
		s = nonWordASCIIRe.ReplaceAllString(s, separator)
	} else {
		s = nonWordRe.ReplaceAllString(s, separator)
	}
	s = whitespaceRe.ReplaceAllString(s, separator)
	s = multiSepRe.ReplaceAllString(s, separator)
	s = strings.Trim(s, separator)

	if runes := []rune(s); len(runes) > maxLength {
		s = trailingSepRe.ReplaceAllString(string(runes[:maxLength]), "")
	}

	if !opts.SkipUniqueID {
		s = s + separator + uniqueSuffix()
	}
	return s
}

// uniqueSuffix returns the current Unix millisecond timestamp in base36
// followed by three random base36 characters.
func uniqueSuffix() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	b := make([]byte, 3)
	for i := range b {
		b[i] = base36Chars[rand.Intn(len(base36Chars))]
	}
	return ts + string(b)
}

// Normalize collapses repeated separators and trims leading/trailing ones.
// It is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.Trim(multiSepRe.ReplaceAllString(s, separator), separator)
}

// Base strips a trailing uniqueness suffix when the final separator-delimited
// segment looks like one. This is a heuristic, not a guaranteed inverse of
// Generate: a slug whose real last word happens to match the pattern loses it.
func Base(s string) string {
	if s == "" {
		return ""
	}
	normalized := Normalize(s)

	i := strings.LastIndex(normalized, separator)
	if i > 0 {
		tail := normalized[i+1:]
		if idTailRe.MatchString(tail) || tokenTailRe.MatchString(tail) {
			return normalized[:i]
		}
	}
	return normalized
}

// Related reports whether two slugs likely refer to the same content:
// their normalized forms are equal, or either base slug contains the other.
func Related(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if Normalize(a) == Normalize(b) {
		return true
	}
	baseA, baseB := Base(a), Base(b)
	if baseA == "" || baseB == "" {
		return false
	}
	return baseA == baseB || strings.Contains(baseA, baseB) || strings.Contains(baseB, baseA)
}

// IsValid reports whether s is a well-formed slug: lowercase alphanumerics,
// Hangul and separators only, with no doubled separator and no separator at
// either end.
func IsValid(s string) bool {
	if s == "" {
		return false
	}
	return validSlugRe.MatchString(s) &&
		!strings.HasPrefix(s, separator) &&
		!strings.HasSuffix(s, separator) &&
		!strings.Contains(s, separator+separator)
}

// Cleanup recovers a slug from raw URL input: it URL-decodes (keeping the
// raw value if decoding fails), drops any query string and fragment, takes
// the last path segment, and normalizes the result.
func Cleanup(raw string) string {
	if raw == "" {
		return ""
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}

	cleaned := decoded
	if i := strings.Index(cleaned, "?"); i >= 0 {
		cleaned = cleaned[:i]
	}
	if i := strings.Index(cleaned, "#"); i >= 0 {
		cleaned = cleaned[:i]
	}
	if i := strings.LastIndex(cleaned, "/"); i >= 0 {
		cleaned = cleaned[i+1:]
	}

	return Normalize(cleaned)
}
