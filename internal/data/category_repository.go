package data

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CategoryRepository handles database operations for categories.
type CategoryRepository struct {
	DB *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

// GetAll retrieves all categories ordered by name, with per-category post counts.
func (r *CategoryRepository) GetAll(ctx context.Context) ([]*Category, error) {
	var categories []*Category
	query := `SELECT c.id, c.name, c.slug, c.description,
	                 (SELECT COUNT(*) FROM posts p WHERE p.category_id = c.id) AS post_count
	          FROM categories c ORDER BY c.name`
	if err := r.DB.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetByID finds a category by its ID. Not found returns (nil, nil).
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*Category, error) {
	var category Category
	err := r.DB.GetContext(ctx, &category,
		"SELECT id, name, slug, description, 0 AS post_count FROM categories WHERE id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found is not an error
		}
		return nil, err
	}
	return &category, nil
}

// GetBySlug finds a category by its slug. Not found returns (nil, nil).
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	var category Category
	err := r.DB.GetContext(ctx, &category,
		"SELECT id, name, slug, description, 0 AS post_count FROM categories WHERE slug = ?", slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found is not an error
		}
		return nil, err
	}
	return &category, nil
}

// Save creates a new category and returns its ID.
func (r *CategoryRepository) Save(ctx context.Context, category *Category) (string, error) {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	_, err := r.DB.NamedExecContext(ctx,
		"INSERT INTO categories (id, name, slug, description) VALUES (:id, :name, :slug, :description)",
		category)
	if err != nil {
		return "", err
	}
	return category.ID, nil
}

// Update modifies an existing category.
func (r *CategoryRepository) Update(ctx context.Context, category *Category) error {
	_, err := r.DB.NamedExecContext(ctx,
		"UPDATE categories SET name = :name, slug = :slug, description = :description WHERE id = :id",
		category)
	return err
}

// Delete removes a category. Posts referencing it are kept; their category
// reference is cleared first so the rows never dangle even without FK support.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE posts SET category_id = NULL WHERE category_id = ?", id); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	return err
}

// CountPosts returns the number of posts referencing the category.
func (r *CategoryRepository) CountPosts(ctx context.Context, id string) (int, error) {
	var count int
	err := r.DB.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM posts WHERE category_id = ?", id)
	if err != nil {
		return 0, err
	}
	return count, nil
}
