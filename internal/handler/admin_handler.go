package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"coaching-site/internal/data"
	"coaching-site/internal/logger"
	"coaching-site/internal/middleware"
	"coaching-site/internal/service"
	"coaching-site/internal/view"

	"github.com/go-chi/chi/v5"
)

// adminPageSize is the number of posts per admin list page.
const adminPageSize = 10

// AdminHandler serves the content management screens: the dashboard, the
// post editor, and category management. Every route under /admin is behind
// the authorization middleware.
type AdminHandler struct {
	posts      service.PostServicer
	categories service.CategoryServicer
	view       *view.View
	log        logger.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(posts service.PostServicer, categories service.CategoryServicer, v *view.View, log logger.Logger) *AdminHandler {
	return &AdminHandler{posts: posts, categories: categories, view: v, log: log}
}

// handleDashboard shows content counts as an overview.
func (h *AdminHandler) handleDashboard(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	ctx := r.Context()

	_, total, err := h.posts.ListPosts(ctx, "", 1, 0)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load dashboard", Code: http.StatusInternalServerError}
	}
	_, published, err := h.posts.ListPosts(ctx, data.StatusPublished, 1, 0)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load dashboard", Code: http.StatusInternalServerError}
	}
	categories, err := h.categories.ListCategories(ctx)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load dashboard", Code: http.StatusInternalServerError}
	}

	user := middleware.GetUserInfo(ctx)
	return h.renderAdmin(w, "admin_dashboard.html", map[string]interface{}{
		"Title":          "Dashboard",
		"User":           user,
		"TotalPosts":     total,
		"PublishedPosts": published,
		"DraftPosts":     total - published,
		"CategoryCount":  len(categories),
	})
}

// handlePostList shows a paginated post list, optionally filtered by status.
func (h *AdminHandler) handlePostList(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	status := r.URL.Query().Get("status")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	posts, total, err := h.posts.ListPosts(r.Context(), status, adminPageSize, (page-1)*adminPageSize)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load posts", Code: http.StatusInternalServerError}
	}

	lastPage := (total + adminPageSize - 1) / adminPageSize
	if lastPage < 1 {
		lastPage = 1
	}

	return h.renderAdmin(w, "admin_posts.html", map[string]interface{}{
		"Title":    "Posts",
		"Posts":    posts,
		"Status":   status,
		"Page":     page,
		"PrevPage": page - 1,
		"NextPage": page + 1,
		"LastPage": lastPage,
		"Total":    total,
	})
}

// handlePostNew shows an empty editor form.
func (h *AdminHandler) handlePostNew(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	categories, err := h.categories.ListCategories(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load categories", Code: http.StatusInternalServerError}
	}
	return h.renderAdmin(w, "admin_post_edit.html", map[string]interface{}{
		"Title":              "New Post",
		"Post":               &data.Post{Status: data.StatusDraft},
		"Categories":         categories,
		"SelectedCategoryID": "",
		"IsNew":              true,
	})
}

// handlePostEdit shows the editor form for an existing post.
func (h *AdminHandler) handlePostEdit(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id := chi.URLParam(r, "id")
	post, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Post not found", Code: http.StatusNotFound}
	}
	categories, err := h.categories.ListCategories(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load categories", Code: http.StatusInternalServerError}
	}
	selected := ""
	if post.CategoryID != nil {
		selected = *post.CategoryID
	}
	return h.renderAdmin(w, "admin_post_edit.html", map[string]interface{}{
		"Title":              "Edit Post",
		"Post":               post,
		"Categories":         categories,
		"SelectedCategoryID": selected,
		"IsNew":              false,
	})
}

// handlePostCreate creates a post from the editor form. On failure the form
// is re-rendered with an error banner and the submitted values intact.
func (h *AdminHandler) handlePostCreate(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid form submission", Code: http.StatusBadRequest}
	}

	in := h.postInput(r)
	if _, err := h.posts.CreatePost(r.Context(), in); err != nil {
		h.log.Error(err, "Failed to create post")
		categories, catErr := h.categories.ListCategories(r.Context())
		if catErr != nil {
			return &middleware.AppError{Error: catErr, Message: "Failed to load categories", Code: http.StatusInternalServerError}
		}
		return h.renderAdmin(w, "admin_post_edit.html", map[string]interface{}{
			"Title":              "New Post",
			"Post":               postFromInput(in),
			"Categories":         categories,
			"SelectedCategoryID": in.CategoryID,
			"IsNew":              true,
			"Error":              "Failed to save the post. Please try again.",
		})
	}

	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
	return nil
}

// handlePostUpdate applies editor form changes to an existing post.
func (h *AdminHandler) handlePostUpdate(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid form submission", Code: http.StatusBadRequest}
	}

	id := chi.URLParam(r, "id")
	in := h.postInput(r)
	if _, err := h.posts.UpdatePost(r.Context(), id, in); err != nil {
		h.log.Error(err, fmt.Sprintf("Failed to update post %s", id))
		categories, catErr := h.categories.ListCategories(r.Context())
		if catErr != nil {
			return &middleware.AppError{Error: catErr, Message: "Failed to load categories", Code: http.StatusInternalServerError}
		}
		post := postFromInput(in)
		post.ID = id
		return h.renderAdmin(w, "admin_post_edit.html", map[string]interface{}{
			"Title":              "Edit Post",
			"Post":               post,
			"Categories":         categories,
			"SelectedCategoryID": in.CategoryID,
			"IsNew":              false,
			"Error":              "Failed to save the post. Please try again.",
		})
	}

	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
	return nil
}

// handlePostPublish publishes a draft.
func (h *AdminHandler) handlePostPublish(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id := chi.URLParam(r, "id")
	if err := h.posts.PublishPost(r.Context(), id); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to publish post", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
	return nil
}

// handlePostDelete deletes a post permanently.
func (h *AdminHandler) handlePostDelete(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id := chi.URLParam(r, "id")
	if err := h.posts.DeletePost(r.Context(), id); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to delete post", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
	return nil
}

// handleCategoryList shows all categories with their post counts.
func (h *AdminHandler) handleCategoryList(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.renderCategoryList(w, r, "")
}

// handleCategoryCreate creates a category from the inline form.
func (h *AdminHandler) handleCategoryCreate(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid form submission", Code: http.StatusBadRequest}
	}
	_, err := h.categories.CreateCategory(r.Context(),
		r.PostFormValue("name"), r.PostFormValue("slug"), r.PostFormValue("description"))
	if err != nil {
		h.log.Error(err, "Failed to create category")
		return h.renderCategoryList(w, r, "Failed to create the category. Please try again.")
	}
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
	return nil
}

// handleCategoryUpdate modifies an existing category.
func (h *AdminHandler) handleCategoryUpdate(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid form submission", Code: http.StatusBadRequest}
	}
	id := chi.URLParam(r, "id")
	_, err := h.categories.UpdateCategory(r.Context(), id,
		r.PostFormValue("name"), r.PostFormValue("slug"), r.PostFormValue("description"))
	if err != nil {
		h.log.Error(err, fmt.Sprintf("Failed to update category %s", id))
		return h.renderCategoryList(w, r, "Failed to update the category. Please try again.")
	}
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
	return nil
}

// handleCategoryDelete removes a category; its posts are kept and detached.
func (h *AdminHandler) handleCategoryDelete(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id := chi.URLParam(r, "id")
	if err := h.categories.DeleteCategory(r.Context(), id); err != nil {
		h.log.Error(err, fmt.Sprintf("Failed to delete category %s", id))
		return h.renderCategoryList(w, r, "Failed to delete the category. Please try again.")
	}
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
	return nil
}

func (h *AdminHandler) renderCategoryList(w http.ResponseWriter, r *http.Request, banner string) *middleware.AppError {
	categories, err := h.categories.ListCategories(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load categories", Code: http.StatusInternalServerError}
	}
	pageData := map[string]interface{}{
		"Title":      "Categories",
		"Categories": categories,
	}
	if banner != "" {
		pageData["Error"] = banner
	}
	return h.renderAdmin(w, "admin_categories.html", pageData)
}

// postInput collects the editor form fields. The author is the logged-in
// admin from the session.
func (h *AdminHandler) postInput(r *http.Request) service.PostInput {
	return service.PostInput{
		Title:         r.PostFormValue("title"),
		Content:       r.PostFormValue("content"),
		Excerpt:       r.PostFormValue("excerpt"),
		Slug:          r.PostFormValue("slug"),
		FeaturedImage: r.PostFormValue("featured_image"),
		ExternalURL:   r.PostFormValue("external_url"),
		CategoryID:    r.PostFormValue("category_id"),
		Status:        r.PostFormValue("status"),
		AuthorID:      middleware.GetUserInfo(r.Context()).Subject,
	}
}

// postFromInput rebuilds a display post from form input so a failed save can
// re-render the editor without losing the editor's work.
func postFromInput(in service.PostInput) *data.Post {
	post := &data.Post{
		Title:   in.Title,
		Content: in.Content,
		Excerpt: in.Excerpt,
		Slug:    in.Slug,
		Status:  in.Status,
	}
	if in.FeaturedImage != "" {
		post.FeaturedImage = &in.FeaturedImage
	}
	if in.ExternalURL != "" {
		post.ExternalURL = &in.ExternalURL
	}
	if in.CategoryID != "" {
		post.CategoryID = &in.CategoryID
	}
	return post
}

func (h *AdminHandler) renderAdmin(w http.ResponseWriter, name string, data map[string]interface{}) *middleware.AppError {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.view.Render(w, name, data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render page", Code: http.StatusInternalServerError}
	}
	return nil
}
