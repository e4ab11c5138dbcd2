package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin user, a handful of tagged sample posts, and a few comments.
// It is a no-op when any users already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Default admin. 2FA is not enabled — they must set it up on first login.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "admin@inkwell.local", string(hash), "Admin", "admin", false).Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// Sample tags.
	tagIDs := make(map[string]string)
	for _, tag := range []struct{ name, slug string }{
		{"Music", "music"},
		{"Film", "film"},
		{"Go", "go"},
	} {
		var id string
		err := db.QueryRow(`
			INSERT INTO tags (name, slug) VALUES ($1, $2) RETURNING id
		`, tag.name, tag.slug).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed insert tag %q: %w", tag.slug, err)
		}
		tagIDs[tag.slug] = id
	}

	// Sample posts with staggered publish dates so listings and rankings
	// have something to show.
	now := time.Now().UTC()
	posts := []struct {
		title, slug, body, status string
		publish                   time.Time
		tags                      []string
	}{
		{
			"Welcome to Inkwell", "welcome-to-inkwell",
			"This blog runs on **Inkwell**. Posts are written in Markdown.\n\nBrowse by tag, leave a comment, or share a post with a friend.",
			"published", now.AddDate(0, 0, -7), []string{"go"},
		},
		{
			"On Practice Routines", "on-practice-routines",
			"Twenty minutes a day beats four hours on Sunday.",
			"published", now.AddDate(0, 0, -5), []string{"music"},
		},
		{
			"Soundtracks Worth Rewatching For", "soundtracks-worth-rewatching-for",
			"Some films are carried by their scores. A short list.",
			"published", now.AddDate(0, 0, -3), []string{"music", "film"},
		},
		{
			"Unfinished Thoughts", "unfinished-thoughts",
			"Draft notes, not ready yet.",
			"draft", now, nil,
		},
	}

	for _, p := range posts {
		var postID string
		err := db.QueryRow(`
			INSERT INTO posts (title, slug, author_id, body, publish, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, p.title, p.slug, adminID, p.body, p.publish, p.status).Scan(&postID)
		if err != nil {
			return fmt.Errorf("seed insert post %q: %w", p.slug, err)
		}

		for _, tagSlug := range p.tags {
			if _, err := db.Exec(`
				INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)
			`, postID, tagIDs[tagSlug]); err != nil {
				return fmt.Errorf("seed tag post %q: %w", p.slug, err)
			}
		}

		if p.slug == "welcome-to-inkwell" {
			if _, err := db.Exec(`
				INSERT INTO comments (post_id, name, email, body)
				VALUES ($1, 'First Reader', 'reader@example.com', 'Looking forward to more posts!')
			`, postID); err != nil {
				return fmt.Errorf("seed insert comment: %w", err)
			}
		}
	}

	slog.Info("database seeded with default admin user and sample posts",
		"email", "admin@inkwell.local",
		"note", "default password set, change it after first login",
	)

	return nil
}
