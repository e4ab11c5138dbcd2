// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// TagStore handles tag-related database operations.
type TagStore struct {
	db *sql.DB
}

// NewTagStore creates a new TagStore with the given database connection.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// FindBySlug retrieves a tag by its slug. Returns nil if not found.
func (s *TagStore) FindBySlug(slug string) (*models.Tag, error) {
	t := &models.Tag{}
	err := s.db.QueryRow(`
		SELECT id, name, slug, created_at FROM tags WHERE slug = $1
	`, slug).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by slug: %w", err)
	}
	return t, nil
}

// List returns all tags ordered by name, each annotated with its published
// post count.
func (s *TagStore) List() ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.slug, t.created_at,
		       COUNT(p.id) FILTER (WHERE p.status = 'published') AS post_count
		FROM tags t
		LEFT JOIN post_tags pt ON pt.tag_id = t.id
		LEFT JOIN posts p ON p.id = pt.post_id
		GROUP BY t.id
		ORDER BY t.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.PostCount); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListForPost returns the tags attached to a post, ordered by name.
func (s *TagStore) ListForPost(postID uuid.UUID) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.slug, t.created_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list tags for post: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// GetOrCreate finds the tag with the given name, creating it with the given
// slug if it does not exist yet. The name's uniqueness constraint makes the
// upsert race-free.
func (s *TagStore) GetOrCreate(name, slug string) (*models.Tag, error) {
	t := &models.Tag{}
	err := s.db.QueryRow(`
		INSERT INTO tags (name, slug) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, slug, created_at
	`, name, slug).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create tag %q: %w", name, err)
	}
	return t, nil
}

// SetPostTags replaces the set of tags attached to a post. The swap runs in
// a transaction so readers never see a half-updated tag set.
func (s *TagStore) SetPostTags(postID uuid.UUID, tagIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("set post tags begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("set post tags clear: %w", err)
	}

	for _, tagID := range tagIDs {
		if _, err := tx.Exec(`
			INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, tagID); err != nil {
			return fmt.Errorf("set post tags insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set post tags commit: %w", err)
	}
	return nil
}

// Delete removes a tag. Links to posts go with it via cascade; the posts
// themselves are untouched.
func (s *TagStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}
