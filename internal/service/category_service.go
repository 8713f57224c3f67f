package service

import (
	"context"
	"errors"
	"strings"

	"coaching-site/internal/data"
	"coaching-site/internal/slug"
)

// ErrCategoryNotFound is returned when a category lookup finds nothing.
var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepository defines the interface for database operations on categories.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]*data.Category, error)
	GetByID(ctx context.Context, id string) (*data.Category, error)
	GetBySlug(ctx context.Context, slug string) (*data.Category, error)
	Save(ctx context.Context, category *data.Category) (string, error)
	Update(ctx context.Context, category *data.Category) error
	Delete(ctx context.Context, id string) error
	CountPosts(ctx context.Context, id string) (int, error)
}

// CategoryServicer defines the interface for interacting with categories.
type CategoryServicer interface {
	ListCategories(ctx context.Context) ([]*data.Category, error)
	GetCategoryBySlug(ctx context.Context, s string) (*data.Category, error)
	CreateCategory(ctx context.Context, name, slug, description string) (*data.Category, error)
	UpdateCategory(ctx context.Context, id, name, slug, description string) (*data.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// CategoryService provides business logic for managing categories.
type CategoryService struct {
	repo CategoryRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// ListCategories returns all categories ordered by name.
func (s *CategoryService) ListCategories(ctx context.Context) ([]*data.Category, error) {
	return s.repo.GetAll(ctx)
}

// GetCategoryBySlug finds a category by its slug.
func (s *CategoryService) GetCategoryBySlug(ctx context.Context, rawSlug string) (*data.Category, error) {
	category, err := s.repo.GetBySlug(ctx, slug.Cleanup(rawSlug))
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// CreateCategory creates a category. A blank slug is derived from the name
// without a uniqueness suffix; category slugs are few and editor-visible.
func (s *CategoryService) CreateCategory(ctx context.Context, name, categorySlug, description string) (*data.Category, error) {
	category := buildCategory(name, categorySlug, description)
	if _, err := s.repo.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory modifies an existing category.
func (s *CategoryService) UpdateCategory(ctx context.Context, id, name, categorySlug, description string) (*data.Category, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCategoryNotFound
	}

	updated := buildCategory(name, categorySlug, description)
	updated.ID = existing.ID
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCategory removes a category. Its posts survive with a cleared
// category reference.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func buildCategory(name, categorySlug, description string) *data.Category {
	category := &data.Category{
		Name: strings.TrimSpace(name),
		Slug: slug.Normalize(strings.ToLower(strings.TrimSpace(categorySlug))),
	}
	if category.Slug == "" {
		category.Slug = slug.Generate(category.Name, slug.Options{SkipUniqueID: true})
	}
	if v := strings.TrimSpace(description); v != "" {
		category.Description = &v
	}
	return category
}
