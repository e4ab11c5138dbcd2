// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/cache"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

// publishInputLayout is the format of the HTML datetime-local input used
// on the post form. Values are interpreted as UTC.
const publishInputLayout = "2006-01-02T15:04"

// Admin groups the content-management handlers behind authentication.
type Admin struct {
	renderer     *render.Renderer
	postStore    *store.PostStore
	tagStore     *store.TagStore
	commentStore *store.CommentStore
	userStore    *store.UserStore
	pageCache    *cache.PageCache
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer, postStore *store.PostStore, tagStore *store.TagStore, commentStore *store.CommentStore, userStore *store.UserStore, pageCache *cache.PageCache) *Admin {
	return &Admin{
		renderer:     renderer,
		postStore:    postStore,
		tagStore:     tagStore,
		commentStore: commentStore,
		userStore:    userStore,
		pageCache:    pageCache,
	}
}

// Dashboard shows site-wide counts.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	postCount, err := a.postStore.CountPublished()
	if err != nil {
		slog.Error("dashboard counts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	comments, err := a.commentStore.ListAll()
	if err != nil {
		slog.Error("dashboard comments failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	tags, err := a.tagStore.List()
	if err != nil {
		slog.Error("dashboard tags failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Admin(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"PostCount":    postCount,
			"CommentCount": len(comments),
			"TagCount":     len(tags),
		},
	})
}

// PostList shows every post regardless of status.
func (a *Admin) PostList(w http.ResponseWriter, r *http.Request) {
	posts, err := a.postStore.ListAll()
	if err != nil {
		slog.Error("admin list posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Admin(w, r, "posts", &render.PageData{
		Title:   "Posts",
		Section: "posts",
		Data:    map[string]any{"Posts": posts},
	})
}

// PostNew renders an empty post form.
func (a *Admin) PostNew(w http.ResponseWriter, r *http.Request) {
	a.renderer.Admin(w, r, "post_form", &render.PageData{
		Title:   "New post",
		Section: "posts",
		Data: map[string]any{
			"Action":  "/admin/posts",
			"Status":  "draft",
			"Publish": time.Now().UTC().Format(publishInputLayout),
		},
	})
}

// PostCreate saves a new post. An empty slug is generated from the title;
// tags are resolved by name, creating missing ones.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	input, formErr := a.parsePostForm(r)
	if formErr != "" {
		a.renderPostForm(w, r, nil, r.PostForm.Get("title"), r.PostForm.Get("slug"),
			r.PostForm.Get("body"), r.PostForm.Get("publish"), r.PostForm.Get("tags"),
			r.PostForm.Get("status"), formErr)
		return
	}

	input.AuthorID = sess.UserID
	created, err := a.postStore.Create(input)
	if err != nil {
		slog.Error("create post failed", "error", err)
		a.renderPostForm(w, r, nil, input.Title, input.Slug, input.Body,
			r.PostForm.Get("publish"), r.PostForm.Get("tags"), string(input.Status),
			"Could not save the post. Is the slug already used on that date?")
		return
	}

	if err := a.assignTags(created.ID, r.PostForm.Get("tags")); err != nil {
		slog.Error("assign tags failed", "error", err, "post", created.ID)
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

// PostEdit renders the form pre-filled with an existing post.
func (a *Admin) PostEdit(w http.ResponseWriter, r *http.Request) {
	post := a.findPost(w, r)
	if post == nil {
		return
	}

	tags, err := a.tagStore.ListForPost(post.ID)
	if err != nil {
		slog.Error("list post tags failed", "error", err, "post", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}

	a.renderPostForm(w, r, post, post.Title, post.Slug, post.Body,
		post.Publish.UTC().Format(publishInputLayout), strings.Join(names, ", "),
		string(post.Status), "")
}

// PostUpdate saves changes to an existing post.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	post := a.findPost(w, r)
	if post == nil {
		return
	}

	input, formErr := a.parsePostForm(r)
	if formErr != "" {
		a.renderPostForm(w, r, post, r.PostForm.Get("title"), r.PostForm.Get("slug"),
			r.PostForm.Get("body"), r.PostForm.Get("publish"), r.PostForm.Get("tags"),
			r.PostForm.Get("status"), formErr)
		return
	}

	post.Title = input.Title
	post.Slug = input.Slug
	post.Body = input.Body
	post.Publish = input.Publish
	post.Status = input.Status

	if err := a.postStore.Update(post); err != nil {
		slog.Error("update post failed", "error", err, "post", post.ID)
		a.renderPostForm(w, r, post, post.Title, post.Slug, post.Body,
			r.PostForm.Get("publish"), r.PostForm.Get("tags"), string(post.Status),
			"Could not save the post. Is the slug already used on that date?")
		return
	}

	if err := a.assignTags(post.ID, r.PostForm.Get("tags")); err != nil {
		slog.Error("assign tags failed", "error", err, "post", post.ID)
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

// PostDelete removes a post along with its comments and tag links.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	post := a.findPost(w, r)
	if post == nil {
		return
	}

	if err := a.postStore.Delete(post.ID); err != nil {
		slog.Error("delete post failed", "error", err, "post", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

// CommentList shows the moderation queue.
func (a *Admin) CommentList(w http.ResponseWriter, r *http.Request) {
	comments, err := a.commentStore.ListAll()
	if err != nil {
		slog.Error("admin list comments failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Admin(w, r, "comments", &render.PageData{
		Title:   "Comments",
		Section: "comments",
		Data:    map[string]any{"Comments": comments},
	})
}

// CommentToggle flips a comment between visible and hidden.
func (a *Admin) CommentToggle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	// Look up the current state through the moderation queue.
	comments, err := a.commentStore.ListAll()
	if err != nil {
		slog.Error("comment lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	var target *models.Comment
	for i := range comments {
		if comments[i].ID == id {
			target = &comments[i]
			break
		}
	}
	if target == nil {
		http.NotFound(w, r)
		return
	}

	if err := a.commentStore.SetActive(id, !target.Active); err != nil {
		slog.Error("toggle comment failed", "error", err, "comment", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/comments", http.StatusSeeOther)
}

// CommentDelete removes a comment permanently.
func (a *Admin) CommentDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := a.commentStore.Delete(id); err != nil {
		slog.Error("delete comment failed", "error", err, "comment", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/comments", http.StatusSeeOther)
}

// TagList shows all tags with their published post counts.
func (a *Admin) TagList(w http.ResponseWriter, r *http.Request) {
	tags, err := a.tagStore.List()
	if err != nil {
		slog.Error("admin list tags failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Admin(w, r, "tags", &render.PageData{
		Title:   "Tags",
		Section: "tags",
		Data:    map[string]any{"Tags": tags},
	})
}

// TagDelete removes a tag; posts keep existing without it.
func (a *Admin) TagDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := a.tagStore.Delete(id); err != nil {
		slog.Error("delete tag failed", "error", err, "tag", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/tags", http.StatusSeeOther)
}

// UserList shows all users. Admin role only.
func (a *Admin) UserList(w http.ResponseWriter, r *http.Request) {
	a.renderUsers(w, r, "")
}

// UserCreate adds a new author or admin account.
func (a *Admin) UserCreate(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	displayName := strings.TrimSpace(r.FormValue("display_name"))
	role := models.Role(r.FormValue("role"))

	if email == "" || password == "" || displayName == "" {
		a.renderUsers(w, r, "All fields are required.")
		return
	}
	if role != models.RoleAdmin {
		role = models.RoleAuthor
	}

	if _, err := a.userStore.Create(email, password, displayName, role); err != nil {
		slog.Error("create user failed", "error", err)
		a.renderUsers(w, r, "Could not create the user. Is the email already taken?")
		return
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// UserReset2FA clears a user's TOTP enrollment so they can re-enroll.
func (a *Admin) UserReset2FA(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := a.userStore.ResetTOTP(id); err != nil {
		slog.Error("reset totp failed", "error", err, "user", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// UserDelete removes a user account. Self-deletion is rejected so the
// last admin can't lock everyone out mid-session.
func (a *Admin) UserDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.UserID == id {
		a.renderUsers(w, r, "You cannot delete your own account.")
		return
	}

	if err := a.userStore.Delete(id); err != nil {
		slog.Error("delete user failed", "error", err, "user", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// findPost resolves the {id} URL parameter to a post of any status,
// writing a 404 when it doesn't exist.
func (a *Admin) findPost(w http.ResponseWriter, r *http.Request) *models.Post {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return nil
	}

	post, err := a.postStore.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if post == nil {
		http.NotFound(w, r)
		return nil
	}
	return post
}

// parsePostForm validates the shared fields of the create and update
// forms. It returns the parsed post or a user-facing error message.
func (a *Admin) parsePostForm(r *http.Request) (*models.Post, string) {
	if err := r.ParseForm(); err != nil {
		return nil, "The form could not be read."
	}

	title := strings.TrimSpace(r.PostForm.Get("title"))
	if title == "" {
		return nil, "A title is required."
	}

	slugValue := strings.TrimSpace(r.PostForm.Get("slug"))
	if slugValue == "" {
		slugValue = slug.Generate(title)
	}
	if slugValue == "" {
		return nil, "A slug could not be derived from the title; please provide one."
	}

	status := models.PostStatus(r.PostForm.Get("status"))
	if status != models.PostStatusPublished {
		status = models.PostStatusDraft
	}

	publish := time.Now().UTC()
	if raw := r.PostForm.Get("publish"); raw != "" {
		parsed, err := time.ParseInLocation(publishInputLayout, raw, time.UTC)
		if err != nil {
			return nil, "The publish date is not valid."
		}
		publish = parsed
	}

	return &models.Post{
		Title:   title,
		Slug:    slugValue,
		Body:    r.PostForm.Get("body"),
		Publish: publish,
		Status:  status,
	}, ""
}

// assignTags replaces a post's tags from a comma-separated name list,
// creating tags that don't exist yet.
func (a *Admin) assignTags(postID uuid.UUID, raw string) error {
	var tagIDs []uuid.UUID
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tag, err := a.tagStore.GetOrCreate(name, slug.Generate(name))
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	return a.tagStore.SetPostTags(postID, tagIDs)
}

// renderPostForm renders the post form with the given field values.
func (a *Admin) renderPostForm(w http.ResponseWriter, r *http.Request, post *models.Post, title, slugValue, body, publish, tagNames, status, errMsg string) {
	action := "/admin/posts"
	pageTitle := "New post"
	if post != nil {
		action = "/admin/posts/" + post.ID.String()
		pageTitle = "Edit post"
	}

	data := map[string]any{
		"Post":     post,
		"Action":   action,
		"Title":    title,
		"Slug":     slugValue,
		"Body":     body,
		"Publish":  publish,
		"TagNames": tagNames,
		"Status":   status,
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}

	a.renderer.Admin(w, r, "post_form", &render.PageData{
		Title:   pageTitle,
		Section: "posts",
		Data:    data,
	})
}

// renderUsers renders the user management page, optionally with an error.
func (a *Admin) renderUsers(w http.ResponseWriter, r *http.Request, errMsg string) {
	users, err := a.userStore.List()
	if err != nil {
		slog.Error("admin list users failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := map[string]any{"Users": users}
	if errMsg != "" {
		data["Error"] = errMsg
	}

	a.renderer.Admin(w, r, "users", &render.PageData{
		Title:   "Users",
		Section: "users",
		Data:    data,
	})
}
