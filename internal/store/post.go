// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all Inkwell entities.
// Each store struct wraps a *sql.DB and exposes typed query methods. There
// is no implicit default scope: "all posts" and "published posts only" are
// separate, named methods.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// PostStore handles all post-related database operations, including the
// listing and ranking queries behind the public site.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// Create inserts a new post and returns it with the generated ID. A zero
// publish time defaults to now.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	if p.Publish.IsZero() {
		p.Publish = time.Now().UTC()
	}

	result := &models.Post{}
	err := s.db.QueryRow(`
		INSERT INTO posts (title, slug, author_id, body, publish, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, slug, author_id, body, publish, status, created_at, updated_at
	`, p.Title, p.Slug, p.AuthorID, p.Body, p.Publish, p.Status).Scan(
		&result.ID, &result.Title, &result.Slug, &result.AuthorID, &result.Body,
		&result.Publish, &result.Status, &result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update modifies an existing post and refreshes its updated timestamp.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, body = $3, publish = $4, status = $5,
			updated_at = NOW()
		WHERE id = $6
	`, p.Title, p.Slug, p.Body, p.Publish, p.Status, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID. Its comments and tag links go with it via
// foreign-key cascade.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// FindByID retrieves a post of any status by its UUID. Returns nil if not
// found. Used by the admin area.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	p := &models.Post{}
	err := s.db.QueryRow(`
		SELECT id, title, slug, author_id, body, publish, status, created_at, updated_at
		FROM posts WHERE id = $1
	`, id).Scan(
		&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.Body,
		&p.Publish, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindPublishedByID retrieves a published post by its UUID. Returns nil if
// the post does not exist or is not published. Used by the public comment
// and share endpoints.
func (s *PostStore) FindPublishedByID(id uuid.UUID) (*models.Post, error) {
	p := &models.Post{}
	err := s.db.QueryRow(`
		SELECT id, title, slug, author_id, body, publish, status, created_at, updated_at
		FROM posts WHERE id = $1 AND status = 'published'
	`, id).Scan(
		&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.Body,
		&p.Publish, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find published post by id: %w", err)
	}
	return p, nil
}

// FindPublishedByDateSlug retrieves the unique published post with the
// given slug and UTC publish date. The (slug, publish date) unique index
// guarantees at most one match. Returns nil when there is none.
func (s *PostStore) FindPublishedByDateSlug(year, month, day int, slug string) (*models.Post, error) {
	dayStart := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	p := &models.Post{}
	err := s.db.QueryRow(`
		SELECT id, title, slug, author_id, body, publish, status, created_at, updated_at
		FROM posts
		WHERE status = 'published' AND slug = $1 AND publish >= $2 AND publish < $3
	`, slug, dayStart, dayEnd).Scan(
		&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.Body,
		&p.Publish, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by date and slug: %w", err)
	}
	return p, nil
}

// ListAll returns every post regardless of status, ordered by status then
// publish date — the admin listing order. Author display names are joined in.
func (s *PostStore) ListAll() ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.title, p.slug, p.author_id, p.body, p.publish, p.status,
		       p.created_at, p.updated_at, u.display_name
		FROM posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.status, p.publish
	`)
	if err != nil {
		return nil, fmt.Errorf("list all posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.Body, &p.Publish,
			&p.Status, &p.CreatedAt, &p.UpdatedAt, &p.AuthorName,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListPublished returns one page of published posts, most recent first.
func (s *PostStore) ListPublished(limit, offset int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.title, p.slug, p.author_id, p.body, p.publish, p.status,
		       p.created_at, p.updated_at, u.display_name
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.status = 'published'
		ORDER BY p.publish DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	defer rows.Close()

	return scanPostsWithAuthor(rows)
}

// ListPublishedByTag returns one page of published posts carrying the given
// tag, most recent first.
func (s *PostStore) ListPublishedByTag(tagID uuid.UUID, limit, offset int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.title, p.slug, p.author_id, p.body, p.publish, p.status,
		       p.created_at, p.updated_at, u.display_name
		FROM posts p
		JOIN users u ON u.id = p.author_id
		JOIN post_tags pt ON pt.post_id = p.id
		WHERE p.status = 'published' AND pt.tag_id = $1
		ORDER BY p.publish DESC
		LIMIT $2 OFFSET $3
	`, tagID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list published posts by tag: %w", err)
	}
	defer rows.Close()

	return scanPostsWithAuthor(rows)
}

// CountPublished returns the number of published posts.
func (s *PostStore) CountPublished() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE status = 'published'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count published posts: %w", err)
	}
	return count, nil
}

// CountPublishedByTag returns the number of published posts carrying the
// given tag.
func (s *PostStore) CountPublishedByTag(tagID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM posts p
		JOIN post_tags pt ON pt.post_id = p.id
		WHERE p.status = 'published' AND pt.tag_id = $1
	`, tagID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count published posts by tag: %w", err)
	}
	return count, nil
}

// Latest returns the n most recently published posts for sidebar display.
func (s *PostStore) Latest(n int) ([]models.Post, error) {
	return s.ListPublished(n, 0)
}

// MostCommented returns the n published posts with the highest total
// comment count, ties broken by recency. The count deliberately includes
// inactive comments — moderation hides a comment from display but it still
// represents engagement.
func (s *PostStore) MostCommented(n int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.title, p.slug, p.author_id, p.body, p.publish, p.status,
		       p.created_at, p.updated_at, COUNT(c.id) AS total_comments
		FROM posts p
		LEFT JOIN comments c ON c.post_id = p.id
		WHERE p.status = 'published'
		GROUP BY p.id
		ORDER BY total_comments DESC, p.publish DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("most commented posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.Body, &p.Publish,
			&p.Status, &p.CreatedAt, &p.UpdatedAt, &p.TotalComments,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// SimilarTo returns up to n other published posts sharing at least one tag
// with the given post, ordered by the number of shared tags and then by
// recency. A post with no tags has no similar posts.
func (s *PostStore) SimilarTo(postID uuid.UUID, n int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.title, p.slug, p.author_id, p.body, p.publish, p.status,
		       p.created_at, p.updated_at, COUNT(pt.tag_id) AS same_tags
		FROM posts p
		JOIN post_tags pt ON pt.post_id = p.id
		WHERE p.status = 'published'
		  AND p.id <> $1
		  AND pt.tag_id IN (SELECT tag_id FROM post_tags WHERE post_id = $1)
		GROUP BY p.id
		ORDER BY same_tags DESC, p.publish DESC
		LIMIT $2
	`, postID, n)
	if err != nil {
		return nil, fmt.Errorf("similar posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.Body, &p.Publish,
			&p.Status, &p.CreatedAt, &p.UpdatedAt, &p.SameTags,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// scanPostsWithAuthor collects rows produced by the listing queries, which
// all select the post columns followed by the author display name.
func scanPostsWithAuthor(rows *sql.Rows) ([]models.Post, error) {
	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.Body, &p.Publish,
			&p.Status, &p.CreatedAt, &p.UpdatedAt, &p.AuthorName,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
