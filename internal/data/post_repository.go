package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// selectPostColumns joins the category so list and detail screens can show
// the category name without a second query.
const selectPostColumns = `
	SELECT p.id, p.title, p.content, p.excerpt, p.slug, p.featured_image,
	       p.external_url, p.author_id, p.category_id, p.status,
	       p.created_at, p.updated_at, p.published_at,
	       c.name AS category_name, c.slug AS category_slug
	FROM posts p
	LEFT JOIN categories c ON c.id = p.category_id`

// SQLPostRepository is a concrete implementation of the post repository using sqlx.
type SQLPostRepository struct {
	db *sqlx.DB
}

// NewSQLPostRepository creates a new SQLPostRepository.
func NewSQLPostRepository(db *sqlx.DB) *SQLPostRepository {
	return &SQLPostRepository{db: db}
}

// Create inserts a new post. A missing ID is generated and timestamps are
// set; the post defaults to draft when no status is given.
func (r *SQLPostRepository) Create(ctx context.Context, post *Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Status == "" {
		post.Status = StatusDraft
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	query := `INSERT INTO posts (id, title, content, excerpt, slug, featured_image, external_url,
	                             author_id, category_id, status, created_at, updated_at, published_at)
	          VALUES (:id, :title, :content, :excerpt, :slug, :featured_image, :external_url,
	                  :author_id, :category_id, :status, :created_at, :updated_at, :published_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("failed to execute create post query: %w", err)
	}
	return nil
}

// GetByID retrieves a single post by its ID, regardless of status.
func (r *SQLPostRepository) GetByID(ctx context.Context, id string) (*Post, error) {
	var post Post
	query := selectPostColumns + ` WHERE p.id = ?`
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("post with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}
	return &post, nil
}

// GetBySlugExact retrieves the published post whose stored slug equals slug.
func (r *SQLPostRepository) GetBySlugExact(ctx context.Context, slug string) (*Post, error) {
	var post Post
	query := selectPostColumns + ` WHERE p.slug = ? AND p.status = ?`
	if err := r.db.GetContext(ctx, &post, query, slug, StatusPublished); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found is not an error for slug resolution
		}
		return nil, fmt.Errorf("failed to get post by slug: %w", err)
	}
	return &post, nil
}

// SearchSlugContains finds published posts whose slug contains the fragment,
// most recently created first.
func (r *SQLPostRepository) SearchSlugContains(ctx context.Context, fragment string, limit int) ([]*Post, error) {
	var posts []*Post
	query := selectPostColumns + ` WHERE p.slug LIKE ? AND p.status = ? ORDER BY p.created_at DESC`
	args := []interface{}{"%" + fragment + "%", StatusPublished}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search posts by slug fragment: %w", err)
	}
	return posts, nil
}

// SearchSlugPrefix finds published posts whose slug starts with the prefix,
// most recently created first.
func (r *SQLPostRepository) SearchSlugPrefix(ctx context.Context, prefix string) ([]*Post, error) {
	var posts []*Post
	query := selectPostColumns + ` WHERE p.slug LIKE ? AND p.status = ? ORDER BY p.created_at DESC`
	if err := r.db.SelectContext(ctx, &posts, query, prefix+"%", StatusPublished); err != nil {
		return nil, fmt.Errorf("failed to search posts by slug prefix: %w", err)
	}
	return posts, nil
}

// ListPublished retrieves all published posts, newest publish date first.
func (r *SQLPostRepository) ListPublished(ctx context.Context) ([]*Post, error) {
	var posts []*Post
	query := selectPostColumns + ` WHERE p.status = ? ORDER BY p.published_at DESC`
	if err := r.db.SelectContext(ctx, &posts, query, StatusPublished); err != nil {
		return nil, fmt.Errorf("failed to list published posts: %w", err)
	}
	return posts, nil
}

// ListPublishedByCategory retrieves published posts in one category.
func (r *SQLPostRepository) ListPublishedByCategory(ctx context.Context, categoryID string) ([]*Post, error) {
	var posts []*Post
	query := selectPostColumns + ` WHERE p.category_id = ? AND p.status = ? ORDER BY p.published_at DESC`
	if err := r.db.SelectContext(ctx, &posts, query, categoryID, StatusPublished); err != nil {
		return nil, fmt.Errorf("failed to list posts by category: %w", err)
	}
	return posts, nil
}

// List retrieves posts for the admin screens with an optional status filter
// and limit/offset pagination, newest first.
func (r *SQLPostRepository) List(ctx context.Context, status string, limit, offset int) ([]*Post, error) {
	var posts []*Post
	query := selectPostColumns
	args := []interface{}{}
	if status != "" {
		query += ` WHERE p.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY p.created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Count returns the number of posts matching the optional status filter.
func (r *SQLPostRepository) Count(ctx context.Context, status string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM posts`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

// Update updates an existing post's editable fields.
func (r *SQLPostRepository) Update(ctx context.Context, post *Post) error {
	post.UpdatedAt = time.Now().UTC()
	query := `UPDATE posts SET title = :title, content = :content, excerpt = :excerpt,
	                           slug = :slug, featured_image = :featured_image,
	                           external_url = :external_url, category_id = :category_id,
	                           status = :status, updated_at = :updated_at,
	                           published_at = :published_at
	          WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no post found to update with id %s", post.ID)
	}
	return nil
}

// Publish transitions a post to published and stamps the publish time. It is
// a no-op on the timestamp if the post was already published.
func (r *SQLPostRepository) Publish(ctx context.Context, id string) error {
	now := time.Now().UTC()
	query := `UPDATE posts SET status = ?, updated_at = ?,
	                           published_at = COALESCE(published_at, ?)
	          WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, StatusPublished, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to publish post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no post found to publish with id %s", id)
	}
	return nil
}

// Delete removes a post by its ID.
func (r *SQLPostRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM posts WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no post found to delete with id %s", id)
	}
	return nil
}
