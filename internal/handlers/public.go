// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/cache"
	"inkwell/internal/forms"
	"inkwell/internal/mail"
	"inkwell/internal/models"
	"inkwell/internal/paginator"
	"inkwell/internal/render"
	"inkwell/internal/sitemap"
	"inkwell/internal/store"
)

// PostsPerPage is the page size of the public listings.
const PostsPerPage = 3

// sidebar limits.
const (
	latestCount        = 5
	mostCommentedCount = 5
	similarCount       = 4
)

// Public groups handlers for the public-facing blog. Listing and detail
// pages are checked against the Valkey page cache before hitting the
// database, and rendered results are stored on miss.
type Public struct {
	renderer     *render.Renderer
	postStore    *store.PostStore
	tagStore     *store.TagStore
	commentStore *store.CommentStore
	pageCache    *cache.PageCache
	mailer       mail.Sender
	baseURL      string
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, postStore *store.PostStore, tagStore *store.TagStore, commentStore *store.CommentStore, pageCache *cache.PageCache, mailer mail.Sender, baseURL string) *Public {
	return &Public{
		renderer:     renderer,
		postStore:    postStore,
		tagStore:     tagStore,
		commentStore: commentStore,
		pageCache:    pageCache,
		mailer:       mailer,
		baseURL:      baseURL,
	}
}

// PostList renders one page of published posts, optionally filtered by the
// tag in the URL. Unknown tags 404; out-of-range page tokens are clamped
// by the paginator rather than erroring.
func (p *Public) PostList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var tag *models.Tag
	basePath := "/"
	if tagSlug := chi.URLParam(r, "slug"); tagSlug != "" {
		var err error
		tag, err = p.tagStore.FindBySlug(tagSlug)
		if err != nil {
			slog.Error("find tag failed", "error", err, "slug", tagSlug)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if tag == nil {
			p.renderer.NotFound(w)
			return
		}
		basePath = "/tag/" + tag.Slug
	}

	var total int
	var err error
	if tag != nil {
		total, err = p.postStore.CountPublishedByTag(tag.ID)
	} else {
		total, err = p.postStore.CountPublished()
	}
	if err != nil {
		slog.Error("count published posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page := paginator.Resolve(r.URL.Query().Get("page"), total, PostsPerPage)

	// The resolved page number is part of the cache key, so requests with
	// garbage page tokens share the page-1 entry.
	tagSlug := ""
	if tag != nil {
		tagSlug = tag.Slug
	}
	cacheKey := cache.ListKey(tagSlug, page.Number)
	if cached, ok := p.pageCache.Get(ctx, cacheKey); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(cached)
		return
	}

	var posts []models.Post
	if tag != nil {
		posts, err = p.postStore.ListPublishedByTag(tag.ID, page.PerPage, page.Offset)
	} else {
		posts, err = p.postStore.ListPublished(page.PerPage, page.Offset)
	}
	if err != nil {
		slog.Error("list published posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	title := "Latest writing"
	if tag != nil {
		title = "Posts tagged " + tag.Name
	}

	data := &render.PageData{Title: title, Data: map[string]any{
		"Posts":    posts,
		"Page":     page,
		"Tag":      tag,
		"BasePath": basePath,
	}}
	if err := p.addSidebar(data); err != nil {
		slog.Error("sidebar load failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	html, err := p.renderer.BlogHTML("list", data)
	if err != nil {
		slog.Error("render post list failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.pageCache.Set(ctx, cacheKey, html)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// PostDetail renders a single published post addressed by its UTC publish
// date and slug, with active comments, a blank comment form, and up to
// four similar posts.
func (p *Public) PostDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post := p.findByDateSlug(w, r)
	if post == nil {
		return
	}

	cacheKey := cache.PostKey(post.URLPath())
	if cached, ok := p.pageCache.Get(ctx, cacheKey); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(cached)
		return
	}

	data, err := p.detailData(post, forms.CommentForm{}, nil)
	if err != nil {
		slog.Error("load post detail failed", "error", err, "post", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	html, err := p.renderer.BlogHTML("detail", data)
	if err != nil {
		slog.Error("render post detail failed", "error", err, "post", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.pageCache.Set(ctx, cacheKey, html)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// CommentCreate handles comment submission on a published post. Invalid
// input re-renders the detail page with field errors and the submitted
// values, at 422. Success re-renders with a confirmation note.
func (p *Public) CommentCreate(w http.ResponseWriter, r *http.Request) {
	post := p.findPublishedByID(w, r)
	if post == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := forms.ParseComment(r.PostForm)
	if errs := form.Validate(); len(errs) > 0 {
		data, err := p.detailData(post, form, errs)
		if err != nil {
			slog.Error("load post detail failed", "error", err, "post", post.ID)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		p.renderer.BlogStatus(w, http.StatusUnprocessableEntity, "detail", data)
		return
	}

	_, err := p.commentStore.Create(&models.Comment{
		PostID: post.ID,
		Name:   form.Name,
		Email:  form.Email,
		Body:   form.Body,
	})
	if err != nil {
		slog.Error("create comment failed", "error", err, "post", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Comment counts feed the sidebar ranking on every page.
	p.pageCache.InvalidateAll(r.Context())

	data, err := p.detailData(post, forms.CommentForm{}, nil)
	if err != nil {
		slog.Error("load post detail failed", "error", err, "post", post.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data.Data["CommentAdded"] = true
	p.renderer.Blog(w, "detail", data)
}

// ShareForm renders the share-by-email form for a published post.
func (p *Public) ShareForm(w http.ResponseWriter, r *http.Request) {
	post := p.findPublishedByID(w, r)
	if post == nil {
		return
	}

	data := p.shareData(post, forms.ShareForm{}, nil, false, false)
	p.renderer.Blog(w, "share", data)
}

// ShareSubmit validates the share form and sends the recommendation
// e-mail. Delivery failures are reported on the form rather than as a
// server error.
func (p *Public) ShareSubmit(w http.ResponseWriter, r *http.Request) {
	post := p.findPublishedByID(w, r)
	if post == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := forms.ParseShare(r.PostForm)
	if errs := form.Validate(); len(errs) > 0 {
		data := p.shareData(post, form, errs, false, false)
		p.renderer.BlogStatus(w, http.StatusUnprocessableEntity, "share", data)
		return
	}

	postURL := p.baseURL + post.URLPath()
	msg := mail.Message{
		To:      form.To,
		Subject: fmt.Sprintf("%s recommends you read %s", form.Name, post.Title),
		Body: fmt.Sprintf("Read %s at %s\n\n%s's comments: %s",
			post.Title, postURL, form.Name, form.Comments),
	}

	if err := p.mailer.Send(r.Context(), msg); err != nil {
		slog.Error("share mail failed", "error", err, "post", post.ID)
		data := p.shareData(post, form, nil, false, true)
		p.renderer.Blog(w, "share", data)
		return
	}

	data := p.shareData(post, form, nil, true, false)
	p.renderer.Blog(w, "share", data)
}

// Sitemap serves sitemap.xml listing every published post.
func (p *Public) Sitemap(w http.ResponseWriter, r *http.Request) {
	// The listing page size is irrelevant here; fetch everything.
	total, err := p.postStore.CountPublished()
	if err != nil {
		slog.Error("count for sitemap failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	posts, err := p.postStore.ListPublished(total, 0)
	if err != nil {
		slog.Error("list for sitemap failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	xml, err := sitemap.ForPosts(p.baseURL, posts)
	if err != nil {
		slog.Error("render sitemap failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write(xml)
}

// findByDateSlug resolves the post addressed by the detail URL, writing a
// 404 and returning nil when it doesn't exist or isn't published.
func (p *Public) findByDateSlug(w http.ResponseWriter, r *http.Request) *models.Post {
	year, _ := strconv.Atoi(chi.URLParam(r, "year"))
	month, _ := strconv.Atoi(chi.URLParam(r, "month"))
	day, _ := strconv.Atoi(chi.URLParam(r, "day"))
	slugParam := chi.URLParam(r, "slug")

	post, err := p.postStore.FindPublishedByDateSlug(year, month, day, slugParam)
	if err != nil {
		slog.Error("find post failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if post == nil {
		p.renderer.NotFound(w)
		return nil
	}
	return post
}

// findPublishedByID resolves the post targeted by a comment or share URL.
// Drafts are treated the same as missing posts.
func (p *Public) findPublishedByID(w http.ResponseWriter, r *http.Request) *models.Post {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		p.renderer.NotFound(w)
		return nil
	}

	post, err := p.postStore.FindPublishedByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if post == nil {
		p.renderer.NotFound(w)
		return nil
	}
	return post
}

// detailData assembles the full template payload for the detail page.
func (p *Public) detailData(post *models.Post, form forms.CommentForm, errs forms.Errors) (*render.PageData, error) {
	tags, err := p.tagStore.ListForPost(post.ID)
	if err != nil {
		return nil, err
	}
	post.Tags = tags

	comments, err := p.commentStore.ListActiveByPost(post.ID)
	if err != nil {
		return nil, err
	}

	similar, err := p.postStore.SimilarTo(post.ID, similarCount)
	if err != nil {
		return nil, err
	}

	data := &render.PageData{Title: post.Title, Data: map[string]any{
		"Post":         post,
		"Comments":     comments,
		"CommentCount": len(comments),
		"Similar":      similar,
		"Form":         form,
		"Errors":       errs,
	}}
	if err := p.addSidebar(data); err != nil {
		return nil, err
	}
	return data, nil
}

// shareData assembles the template payload for the share page.
func (p *Public) shareData(post *models.Post, form forms.ShareForm, errs forms.Errors, sent, sendFailed bool) *render.PageData {
	data := &render.PageData{Title: "Share " + post.Title, Data: map[string]any{
		"Post":       post,
		"Form":       form,
		"Errors":     errs,
		"Sent":       sent,
		"SendFailed": sendFailed,
	}}
	// Sidebar failures shouldn't block sharing; log and render without.
	if err := p.addSidebar(data); err != nil {
		slog.Warn("sidebar load failed", "error", err)
	}
	return data
}

// addSidebar loads the latest, most-commented and tag listings shared by
// every public page.
func (p *Public) addSidebar(data *render.PageData) error {
	latest, err := p.postStore.Latest(latestCount)
	if err != nil {
		return err
	}
	mostCommented, err := p.postStore.MostCommented(mostCommentedCount)
	if err != nil {
		return err
	}
	tags, err := p.tagStore.List()
	if err != nil {
		return err
	}

	data.Data["Latest"] = latest
	data.Data["MostCommented"] = mostCommented
	data.Data["Tags"] = tags
	return nil
}
