// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// adminRequest builds a request with an admin session attached, plus any
// chi URL parameters given as key/value pairs.
func adminRequest(method, target string, form url.Values, userID uuid.UUID, params ...string) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if len(params) > 0 {
		req = withChiURLParams(req, params...)
	}
	sess := testSession(userID, "admin@test.local", "admin", true)
	return req.WithContext(ctxWithSession(req.Context(), sess))
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	authorID := testAuthor(t, env.DB)

	req := adminRequest(http.MethodGet, "/admin", nil, authorID)
	rec := httptest.NewRecorder()
	env.Admin.Dashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
}

func TestAdminPostListShowsDrafts(t *testing.T) {
	env := newTestEnv(t)
	authorID := testAuthor(t, env.DB)

	draft := testPost(t, env.PostStore, authorID, "Admin Draft Listing Entry",
		time.Date(2033, 1, 1, 9, 0, 0, 0, time.UTC), models.PostStatusDraft)

	req := adminRequest(http.MethodGet, "/admin/posts", nil, authorID)
	rec := httptest.NewRecorder()
	env.Admin.PostList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), draft.Title) {
		t.Error("admin post list should include drafts")
	}
}

func TestAdminPostCreate(t *testing.T) {
	env := newTestEnv(t)
	authorID := testAuthor(t, env.DB)

	slugValue := "created-" + uuid.NewString()[:8]
	tagName := "AdminTag" + uuid.NewString()[:8]
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM posts WHERE slug = $1", slugValue)
		env.DB.Exec("DELETE FROM tags WHERE name = $1", tagName)
	})

	form := url.Values{
		"title":   {"Created Via Admin"},
		"slug":    {slugValue},
		"body":    {"Fresh body text."},
		"publish": {"2033-02-01T10:30"},
		"status":  {"published"},
		"tags":    {tagName},
	}
	req := adminRequest(http.MethodPost, "/admin/posts", form, authorID)
	rec := httptest.NewRecorder()
	env.Admin.PostCreate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/posts" {
		t.Errorf("redirect: got %q, want /admin/posts", loc)
	}

	post, err := env.PostStore.FindPublishedByDateSlug(2033, 2, 1, slugValue)
	if err != nil {
		t.Fatalf("find created post: %v", err)
	}
	if post == nil {
		t.Fatal("created post not found at its date/slug address")
	}
	if post.AuthorID != authorID {
		t.Errorf("author: got %s, want the session user %s", post.AuthorID, authorID)
	}

	tags, err := env.TagStore.ListForPost(post.ID)
	if err != nil {
		t.Fatalf("list post tags: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != tagName {
		t.Errorf("tags: got %+v, want one tag %q", tags, tagName)
	}
}

func TestAdminPostCreateMissingTitle(t *testing.T) {
	env := newTestEnv(t)
	authorID := testAuthor(t, env.DB)

	form := url.Values{
		"title": {""},
		"body":  {"Body without a title."},
	}
	req := adminRequest(http.MethodPost, "/admin/posts", form, authorID)
	rec := httptest.NewRecorder()
	env.Admin.PostCreate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "A title is required.") {
		t.Error("re-rendered form should flag the missing title")
	}
}

func TestAdminPostCreateGeneratesSlug(t *testing.T) {
	env := newTestEnv(t)
	authorID := testAuthor(t, env.DB)

	title := "Slugless Entry " + uuid.NewString()[:8]
	t.Cleanup(func() { env.DB.Exec("DELETE FROM posts WHERE title = $1", title) })

	form := url.Values{
		"title":  {title},
		"body":   {"Body."},
		"status": {"draft"},
	}
	req := adminRequest(http.MethodPost, "/admin/posts", form, authorID)
	rec := httptest.NewRecorder()
	env.Admin.PostCreate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	var slugValue string
	if err := env.DB.QueryRow("SELECT slug FROM posts WHERE title = $1", title).Scan(&slugValue); err != nil {
		t.Fatalf("created post lookup: %v", err)
	}
	if !strings.HasPrefix(slugValue, "slugless-entry-") {
		t.Errorf("generated slug: got %q, want a slugified title", slugValue)
	}
}

func TestAdminPostUpdate(t *testing.T) {
	env := newTestEnv(t)
	authorID := testAuthor(t, env.DB)

	post := testPost(t, env.PostStore, authorID, "Before Update",
		time.Date(2033, 3, 1, 9, 0, 0, 0, time.UTC), models.PostStatusDraft)

	form := url.Values{
		"title":   {"After Update"},
		"slug":    {post.Slug},
		"body":    {"Updated body."},
		"publish": {"2033-03-01T09:00"},
		"status":  {"published"},
	}
	req := adminRequest(http.MethodPost, "/admin/posts/"+post.ID.String(), form, authorID,
		"id", post.ID.String())
	rec := httptest.NewRecorder()
	env.Admin.PostUpdate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	updated, err := env.PostStore.FindByID(post.ID)
	if err != nil || updated == nil {
		t.Fatalf("reload post: %v", err)
	}
	if updated.Title != "After Update" {
		t.Errorf("title: got %q, want %q", updated.Title, "After Update")
	}
	if updated.Status != models.PostStatusPublished {
		t.Errorf("status: got %q, want published", updated.Status)
	}
}

func TestAdminPostDelete(t *testing.T) {
	env := newTestEnv(t)
	authorID := testAuthor(t, env.DB)

	post := testPost(t, env.PostStore, authorID, "Doomed Entry",
		time.Date(2033, 3, 2, 9, 0, 0, 0, time.UTC), models.PostStatusPublished)

	req := adminRequest(http.MethodPost, "/admin/posts/"+post.ID.String()+"/delete", url.Values{},
		authorID, "id", post.ID.String())
	rec := httptest.NewRecorder()
	env.Admin.PostDelete(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	gone, err := env.PostStore.FindByID(post.ID)
	if err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if gone != nil {
		t.Error("post should be deleted")
	}
}

func TestCommentToggleAndDelete(t *testing.T) {
	env := newTestEnv(t)
	authorID := testAuthor(t, env.DB)

	post := testPost(t, env.PostStore, authorID, "Moderated Entry",
		time.Date(2033, 4, 1, 9, 0, 0, 0, time.UTC), models.PostStatusPublished)
	comment, err := env.CommentStore.Create(&models.Comment{
		PostID: post.ID,
		Name:   "Mallory",
		Email:  "mallory@example.test",
		Body:   "questionable remark",
	})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	// First toggle hides the comment.
	req := adminRequest(http.MethodPost, "/admin/comments/"+comment.ID.String()+"/toggle",
		url.Values{}, authorID, "id", comment.ID.String())
	rec := httptest.NewRecorder()
	env.Admin.CommentToggle(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("toggle status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	active, err := env.CommentStore.ListActiveByPost(post.ID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("hidden comment still active: %+v", active)
	}

	// Second toggle restores it.
	req = adminRequest(http.MethodPost, "/admin/comments/"+comment.ID.String()+"/toggle",
		url.Values{}, authorID, "id", comment.ID.String())
	env.Admin.CommentToggle(httptest.NewRecorder(), req)

	active, err = env.CommentStore.ListActiveByPost(post.ID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("restored comment not active")
	}

	// Deletion removes it entirely.
	req = adminRequest(http.MethodPost, "/admin/comments/"+comment.ID.String()+"/delete",
		url.Values{}, authorID, "id", comment.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.CommentDelete(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("delete status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	all, err := env.CommentStore.ListByPost(post.ID)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("deleted comment still present: %+v", all)
	}
}

func TestTagDeleteKeepsPosts(t *testing.T) {
	env := newTestEnv(t)
	authorID := testAuthor(t, env.DB)

	post := testPost(t, env.PostStore, authorID, "Tag Owner Entry",
		time.Date(2033, 5, 1, 9, 0, 0, 0, time.UTC), models.PostStatusPublished)

	tag, err := env.TagStore.GetOrCreate("Doomed Tag "+uuid.NewString()[:8], "doomed-"+uuid.NewString()[:8])
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if err := env.TagStore.SetPostTags(post.ID, []uuid.UUID{tag.ID}); err != nil {
		t.Fatalf("tag post: %v", err)
	}

	req := adminRequest(http.MethodPost, "/admin/tags/"+tag.ID.String()+"/delete",
		url.Values{}, authorID, "id", tag.ID.String())
	rec := httptest.NewRecorder()
	env.Admin.TagDelete(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	gone, err := env.TagStore.FindBySlug(tag.Slug)
	if err != nil {
		t.Fatalf("find tag: %v", err)
	}
	if gone != nil {
		t.Error("tag should be deleted")
	}

	// The post itself survives the tag.
	survivor, err := env.PostStore.FindByID(post.ID)
	if err != nil || survivor == nil {
		t.Fatalf("post should survive tag deletion: %v", err)
	}
}

func TestUserCreateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	adminID := testAuthor(t, env.DB)

	email := "new-" + uuid.NewString()[:8] + "@test.local"
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE email = $1", email) })

	form := url.Values{
		"email":        {email},
		"password":     {"s3cret-enough"},
		"display_name": {"New Author"},
		"role":         {"author"},
	}
	req := adminRequest(http.MethodPost, "/admin/users", form, adminID)
	rec := httptest.NewRecorder()
	env.Admin.UserCreate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	created, err := env.UserStore.FindByEmail(email)
	if err != nil {
		t.Fatalf("find created user: %v", err)
	}
	if created == nil {
		t.Fatal("created user not found")
	}
	if created.Role != models.RoleAuthor {
		t.Errorf("role: got %q, want author", created.Role)
	}
	if !env.UserStore.CheckPassword(created, "s3cret-enough") {
		t.Error("stored password hash should verify")
	}

	// Deleting yourself is refused.
	req = adminRequest(http.MethodPost, "/admin/users/"+adminID.String()+"/delete",
		url.Values{}, adminID, "id", adminID.String())
	rec = httptest.NewRecorder()
	env.Admin.UserDelete(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("self-delete status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "You cannot delete your own account.") {
		t.Error("self-delete should be refused with an explanation")
	}

	// Deleting another account works.
	req = adminRequest(http.MethodPost, "/admin/users/"+created.ID.String()+"/delete",
		url.Values{}, adminID, "id", created.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.UserDelete(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("delete status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	gone, err := env.UserStore.FindByEmail(email)
	if err != nil {
		t.Fatalf("find deleted user: %v", err)
	}
	if gone != nil {
		t.Error("user should be deleted")
	}
}

func TestUserCreateMissingFields(t *testing.T) {
	env := newTestEnv(t)
	adminID := testAuthor(t, env.DB)

	form := url.Values{
		"email":        {""},
		"password":     {""},
		"display_name": {"No Credentials"},
	}
	req := adminRequest(http.MethodPost, "/admin/users", form, adminID)
	rec := httptest.NewRecorder()
	env.Admin.UserCreate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "All fields are required.") {
		t.Error("response should flag the missing fields")
	}
}
