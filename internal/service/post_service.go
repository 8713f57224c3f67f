package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coaching-site/internal/data"
	"coaching-site/internal/imageurl"
	"coaching-site/internal/logger"
	"coaching-site/internal/slug"
)

// ErrPostNotFound is returned when no resolution strategy finds a post.
var ErrPostNotFound = errors.New("post not found")

// minWordLength filters slug fragments for the word-match fallback; shorter
// words match too much unrelated content.
const minWordLength = 2

// PostRepository defines the interface for database operations on posts.
type PostRepository interface {
	Create(ctx context.Context, post *data.Post) error
	GetByID(ctx context.Context, id string) (*data.Post, error)
	GetBySlugExact(ctx context.Context, slug string) (*data.Post, error)
	SearchSlugContains(ctx context.Context, fragment string, limit int) ([]*data.Post, error)
	SearchSlugPrefix(ctx context.Context, prefix string) ([]*data.Post, error)
	ListPublished(ctx context.Context) ([]*data.Post, error)
	ListPublishedByCategory(ctx context.Context, categoryID string) ([]*data.Post, error)
	List(ctx context.Context, status string, limit, offset int) ([]*data.Post, error)
	Count(ctx context.Context, status string) (int, error)
	Update(ctx context.Context, post *data.Post) error
	Publish(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// PostServicer defines the interface for interacting with posts.
type PostServicer interface {
	ResolveBySlug(ctx context.Context, rawSlug string) (*data.Post, error)
	ListPublished(ctx context.Context) ([]*data.Post, error)
	ListPublishedByCategory(ctx context.Context, categoryID string) ([]*data.Post, error)
	GetPost(ctx context.Context, id string) (*data.Post, error)
	ListPosts(ctx context.Context, status string, limit, offset int) ([]*data.Post, int, error)
	CreatePost(ctx context.Context, in PostInput) (*data.Post, error)
	UpdatePost(ctx context.Context, id string, in PostInput) (*data.Post, error)
	PublishPost(ctx context.Context, id string) error
	DeletePost(ctx context.Context, id string) error
}

// PostInput carries editor-provided post fields.
type PostInput struct {
	Title         string
	Content       string
	Excerpt       string
	Slug          string
	FeaturedImage string
	ExternalURL   string
	AuthorID      string
	CategoryID    string
	Status        string
}

// PostService provides business logic for managing and resolving posts.
type PostService struct {
	repo   PostRepository
	images *imageurl.Resolver
	log    logger.Logger
}

// NewPostService creates a new PostService with the given dependencies.
func NewPostService(repo PostRepository, images *imageurl.Resolver, log logger.Logger) *PostService {
	return &PostService{repo: repo, images: images, log: log}
}

// lookupStrategy is one step of the slug resolution cascade. Each strategy
// returns candidate posts for the normalized slug, best match first, and is
// independent of the others so the cascade order lives here, not in SQL.
type lookupStrategy struct {
	name string
	find func(ctx context.Context, normalized string) ([]*data.Post, error)
}

// ResolveBySlug maps a raw URL slug to the single best-matching published
// post. Stored slugs were never canonicalized, so an exact lookup is only
// the first of several attempts; the cascade trades precision for
// availability so stale or slightly malformed links still land on content.
//
// A query error in one strategy is logged and the cascade continues; only a
// miss across every strategy is reported as ErrPostNotFound.
func (s *PostService) ResolveBySlug(ctx context.Context, rawSlug string) (*data.Post, error) {
	normalized := slug.Cleanup(rawSlug)
	if normalized == "" {
		return nil, ErrPostNotFound
	}

	for _, strategy := range s.strategies() {
		posts, err := strategy.find(ctx, normalized)
		if err != nil {
			s.log.Error(err, fmt.Sprintf("slug lookup strategy %q failed for %q", strategy.name, normalized))
			continue
		}
		if len(posts) > 0 {
			return s.preprocess(posts[0]), nil
		}
	}

	s.log.Warn(fmt.Sprintf("no post matched slug %q", rawSlug))
	return nil, ErrPostNotFound
}

func (s *PostService) strategies() []lookupStrategy {
	return []lookupStrategy{
		{name: "exact", find: s.findExact},
		{name: "contains", find: s.findContains},
		{name: "base-prefix", find: s.findBasePrefix},
		{name: "word-fragment", find: s.findByWordFragment},
	}
}

func (s *PostService) findExact(ctx context.Context, normalized string) ([]*data.Post, error) {
	post, err := s.repo.GetBySlugExact(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, nil
	}
	return []*data.Post{post}, nil
}

func (s *PostService) findContains(ctx context.Context, normalized string) ([]*data.Post, error) {
	return s.repo.SearchSlugContains(ctx, normalized, 0)
}

// findBasePrefix retries with the uniqueness suffix stripped, catching links
// that kept the title part of a slug but lost or mangled the suffix.
func (s *PostService) findBasePrefix(ctx context.Context, normalized string) ([]*data.Post, error) {
	base := slug.Base(normalized)
	if base == "" || base == normalized {
		return nil, nil
	}
	return s.repo.SearchSlugPrefix(ctx, base)
}

// findByWordFragment is the loosest fallback: it matches on individual slug
// words and can land on unrelated content that shares a common word. Kept
// last in the cascade and isolated so it can be dropped without touching
// the other strategies.
func (s *PostService) findByWordFragment(ctx context.Context, normalized string) ([]*data.Post, error) {
	if !strings.Contains(normalized, "-") {
		return nil, nil
	}
	for _, word := range strings.Split(normalized, "-") {
		if len(word) <= minWordLength {
			continue
		}
		posts, err := s.repo.SearchSlugContains(ctx, word, 1)
		if err != nil {
			s.log.Error(err, fmt.Sprintf("word-fragment lookup failed for %q", word))
			continue
		}
		if len(posts) > 0 {
			return posts, nil
		}
	}
	return nil, nil
}

// preprocess repairs stored fields before a post leaves the service: the
// slug is normalized and the featured image reference is resolved to a
// renderable URL.
func (s *PostService) preprocess(post *data.Post) *data.Post {
	post.Slug = slug.Normalize(post.Slug)
	if post.FeaturedImage != nil && *post.FeaturedImage != "" {
		valid := s.images.Valid(*post.FeaturedImage)
		post.FeaturedImage = &valid
	}
	return post
}

// ListPublished returns all published posts for the public blog index.
func (s *PostService) ListPublished(ctx context.Context) ([]*data.Post, error) {
	posts, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		s.preprocess(p)
	}
	return posts, nil
}

// ListPublishedByCategory returns published posts in one category.
func (s *PostService) ListPublishedByCategory(ctx context.Context, categoryID string) ([]*data.Post, error) {
	posts, err := s.repo.ListPublishedByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		s.preprocess(p)
	}
	return posts, nil
}

// GetPost retrieves a post by ID for the admin screens.
func (s *PostService) GetPost(ctx context.Context, id string) (*data.Post, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPosts returns a page of posts plus the total count for pagination.
func (s *PostService) ListPosts(ctx context.Context, status string, limit, offset int) ([]*data.Post, int, error) {
	posts, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, status)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// CreatePost creates a post from editor input. A blank slug is generated
// from the title with a uniqueness suffix; a provided slug is normalized
// but otherwise trusted. New posts start as drafts unless a status is given.
func (s *PostService) CreatePost(ctx context.Context, in PostInput) (*data.Post, error) {
	post := s.fromInput(in)
	if post.Slug == "" {
		post.Slug = slug.Generate(in.Title, slug.Options{})
	}
	if post.Status == "" {
		post.Status = data.StatusDraft
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost applies editor input to an existing post.
func (s *PostService) UpdatePost(ctx context.Context, id string, in PostInput) (*data.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := s.fromInput(in)
	post.Title = updated.Title
	post.Content = updated.Content
	post.Excerpt = updated.Excerpt
	if updated.Slug != "" {
		post.Slug = updated.Slug
	}
	post.FeaturedImage = updated.FeaturedImage
	post.ExternalURL = updated.ExternalURL
	post.CategoryID = updated.CategoryID
	if updated.Status != "" {
		post.Status = updated.Status
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// PublishPost transitions a post to published, stamping the publish time.
func (s *PostService) PublishPost(ctx context.Context, id string) error {
	return s.repo.Publish(ctx, id)
}

// DeletePost removes a post permanently.
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *PostService) fromInput(in PostInput) *data.Post {
	post := &data.Post{
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		Excerpt:  strings.TrimSpace(in.Excerpt),
		Slug:     slug.Normalize(strings.ToLower(strings.TrimSpace(in.Slug))),
		AuthorID: in.AuthorID,
		Status:   in.Status,
	}
	if v := strings.TrimSpace(in.FeaturedImage); v != "" {
		post.FeaturedImage = &v
	}
	if v := strings.TrimSpace(in.ExternalURL); v != "" {
		post.ExternalURL = &v
	}
	if v := strings.TrimSpace(in.CategoryID); v != "" {
		post.CategoryID = &v
	}
	return post
}
