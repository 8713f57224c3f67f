// Package imageurl validates and normalizes image references coming out of
// the content store. Editors paste URLs from several storage providers and
// occasionally store bare relative paths, so lookups tolerate both.
package imageurl

import (
	"net/url"
	"strings"
)

// PlaceholderPath is served when a stored image reference is unusable.
const PlaceholderPath = "/static/images/placeholder.jpg"

// storageProviders are hosts whose URLs are accepted without an image
// file extension.
var storageProviders = []string{
	"imagedelivery.net",         // Cloudflare Images
	"storage.googleapis.com",    // GCS
	"storage.cloud.google.com",  // GCS
	"amazonaws.com",             // S3
	"supabase.co",               // Supabase Storage
	"blob.core.windows.net",     // Azure Blob Storage
	"res.cloudinary.com",        // Cloudinary
	"imgix.net",                 // Imgix
	"imagekit.io",               // ImageKit
}

var imageExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".avif", ".bmp", ".tiff", ".ico",
}

// Resolver normalizes image references against the site and storage base URLs.
type Resolver struct {
	siteBaseURL    string
	storageBaseURL string
}

// NewResolver creates a Resolver. Either base URL may be empty, in which
// case the corresponding relative forms resolve to root-relative paths.
func NewResolver(siteBaseURL, storageBaseURL string) *Resolver {
	return &Resolver{
		siteBaseURL:    strings.TrimSuffix(siteBaseURL, "/"),
		storageBaseURL: strings.TrimSuffix(storageBaseURL, "/"),
	}
}

// IsValid reports whether raw looks like a usable image URL: an absolute URL
// with a known image extension, a known storage provider host, a public
// storage object path, or a data URL.
func IsValid(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return strings.HasPrefix(raw, "data:image/")
	}

	lowered := strings.ToLower(raw)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lowered, ext) {
			return true
		}
	}
	for _, provider := range storageProviders {
		if strings.Contains(raw, provider) {
			return true
		}
	}
	return strings.Contains(raw, "/storage/v1/object/public/") ||
		strings.HasPrefix(raw, "data:image/")
}

// Normalize resolves relative image references to absolute URLs. Absolute
// URLs and data URLs pass through unchanged. Unresolvable input returns "".
func (r *Resolver) Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "data:image/") {
		return raw
	}
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		return raw
	}

	switch {
	case strings.HasPrefix(raw, "/"):
		return r.siteBaseURL + raw
	case strings.HasPrefix(raw, "storage/"):
		if r.storageBaseURL == "" {
			return ""
		}
		return r.storageBaseURL + "/storage/v1/object/public/" + raw
	default:
		return ""
	}
}

// Valid returns a renderable URL for raw, falling back to the placeholder
// image when the reference cannot be normalized into something valid.
func (r *Resolver) Valid(raw string) string {
	normalized := r.Normalize(raw)
	if normalized == "" {
		return PlaceholderPath
	}
	if strings.HasPrefix(normalized, r.siteBaseURL+"/") && r.siteBaseURL != "" {
		// Site-relative assets are trusted as-is.
		return normalized
	}
	if !IsValid(normalized) {
		return PlaceholderPath
	}
	return normalized
}
