package data

import (
	"html/template"
	"time"
)

// Post lifecycle statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post represents a single blog column in the database.
//
// The slug is intended to be unique and URL-safe, but neither is enforced at
// write time; older records carry doubled separators and near-duplicate
// slugs, which is why lookups go through the resolver cascade.
type Post struct {
	ID            string        `db:"id"`
	Title         string        `db:"title"`
	Content       string        `db:"content"`
	Excerpt       string        `db:"excerpt"`
	Slug          string        `db:"slug"`
	FeaturedImage *string       `db:"featured_image"`
	ExternalURL   *string       `db:"external_url"`
	AuthorID      string        `db:"author_id"`
	CategoryID    *string       `db:"category_id"`
	Status        string        `db:"status"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
	PublishedAt   *time.Time    `db:"published_at"`
	CategoryName  *string       `db:"category_name"`
	CategorySlug  *string       `db:"category_slug"`
	HTMLContent   template.HTML `db:"-"`
}

// Published reports whether the post is visible on the public site.
func (p *Post) Published() bool {
	return p.Status == StatusPublished
}

// DisplayDate is the publish timestamp, falling back to creation time for
// records published before the column existed.
func (p *Post) DisplayDate() time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

// Category represents a post category. Deleting a category keeps its posts
// and clears their category reference.
type Category struct {
	ID          string  `db:"id"`
	Name        string  `db:"name"`
	Slug        string  `db:"slug"`
	Description *string `db:"description"`
	PostCount   int     `db:"post_count"`
}
