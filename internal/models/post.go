// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Post represents a blog post. The body is Markdown source, rendered to
// HTML at display time. The (slug, publish date) pair is unique, so the
// canonical URL of a post is derived from its publish date and slug.
type Post struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug"`
	AuthorID  uuid.UUID  `json:"author_id"`
	Body      string     `json:"body"`
	Publish   time.Time  `json:"publish"`
	Status    PostStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	AuthorName    string `json:"author_name,omitempty"`
	Tags          []Tag  `json:"tags,omitempty"`
	SameTags      int    `json:"same_tags"`      // shared-tag count in similar-post rankings
	TotalComments int    `json:"total_comments"` // comment count in most-commented rankings
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// URLPath returns the canonical site-relative path of the post, built
// from the UTC publish date and the slug.
func (p *Post) URLPath() string {
	d := p.Publish.UTC()
	return fmt.Sprintf("/%d/%d/%d/%s", d.Year(), int(d.Month()), d.Day(), p.Slug)
}
