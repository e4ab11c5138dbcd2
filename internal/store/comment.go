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

// CommentStore handles comment-related database operations.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database
// connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// Create inserts a new comment and returns it with the generated ID.
// Comments start out active.
func (s *CommentStore) Create(c *models.Comment) (*models.Comment, error) {
	result := &models.Comment{}
	err := s.db.QueryRow(`
		INSERT INTO comments (post_id, name, email, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, post_id, name, email, body, active, created_at, updated_at
	`, c.PostID, c.Name, c.Email, c.Body).Scan(
		&result.ID, &result.PostID, &result.Name, &result.Email,
		&result.Body, &result.Active, &result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return result, nil
}

// ListActiveByPost returns the active comments on a post, oldest first —
// the order they appear on the public detail page.
func (s *CommentStore) ListActiveByPost(postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT id, post_id, name, email, body, active, created_at, updated_at
		FROM comments
		WHERE post_id = $1 AND active
		ORDER BY created_at
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list active comments: %w", err)
	}
	defer rows.Close()

	return scanComments(rows)
}

// CountActiveByPost returns the number of active comments on a post.
func (s *CommentStore) CountActiveByPost(postID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM comments WHERE post_id = $1 AND active
	`, postID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active comments: %w", err)
	}
	return count, nil
}

// ListByPost returns all comments on a post regardless of moderation state,
// oldest first.
func (s *CommentStore) ListByPost(postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT id, post_id, name, email, body, active, created_at, updated_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments by post: %w", err)
	}
	defer rows.Close()

	return scanComments(rows)
}

// ListAll returns every comment with its post title, newest first — the
// admin moderation queue.
func (s *CommentStore) ListAll() ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.post_id, c.name, c.email, c.body, c.active,
		       c.created_at, c.updated_at, p.title
		FROM comments c
		JOIN posts p ON p.id = c.post_id
		ORDER BY c.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list all comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body, &c.Active,
			&c.CreatedAt, &c.UpdatedAt, &c.PostTitle,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// SetActive flips a comment's moderation flag.
func (s *CommentStore) SetActive(id uuid.UUID, active bool) error {
	_, err := s.db.Exec(`
		UPDATE comments SET active = $1, updated_at = NOW() WHERE id = $2
	`, active, id)
	if err != nil {
		return fmt.Errorf("set comment active: %w", err)
	}
	return nil
}

// Delete removes a comment permanently.
func (s *CommentStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func scanComments(rows *sql.Rows) ([]models.Comment, error) {
	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body, &c.Active,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
