// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/cache"
	"inkwell/internal/database"
	"inkwell/internal/mail"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// recordingSender implements mail.Sender and records every message instead
// of delivering it. Setting err makes Send fail, simulating SMTP outages.
type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) messages() []mail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mail.Message(nil), s.sent...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB           *sql.DB
	Valkey       *redis.Client
	Renderer     *render.Renderer
	Sessions     *session.Store
	PostStore    *store.PostStore
	TagStore     *store.TagStore
	CommentStore *store.CommentStore
	UserStore    *store.UserStore
	PageCache    *cache.PageCache
	Mailer       *recordingSender
	Public       *Public
	Auth         *Auth
	Admin        *Admin
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	postStore := store.NewPostStore(db)
	tagStore := store.NewTagStore(db)
	commentStore := store.NewCommentStore(db)
	userStore := store.NewUserStore(db)
	pageCache := cache.NewPageCache(vk, 1*time.Minute)
	mailer := &recordingSender{}

	public := NewPublic(renderer, postStore, tagStore, commentStore, pageCache, mailer, "http://example.test")
	auth := NewAuth(renderer, sessions, userStore)
	admin := NewAdmin(renderer, postStore, tagStore, commentStore, userStore, pageCache)

	return &testEnv{
		DB:           db,
		Valkey:       vk,
		Renderer:     renderer,
		Sessions:     sessions,
		PostStore:    postStore,
		TagStore:     tagStore,
		CommentStore: commentStore,
		UserStore:    userStore,
		PageCache:    pageCache,
		Mailer:       mailer,
		Public:       public,
		Auth:         auth,
		Admin:        admin,
	}
}

// testAuthor creates a throwaway author for the duration of one test.
// Deleting the user cascades away their posts, comments and tag links.
func testAuthor(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()

	email := "author-" + uuid.NewString()[:8] + "@test.local"
	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name)
		VALUES ($1, 'x', 'Test Author')
		RETURNING id
	`, email).Scan(&id)
	if err != nil {
		t.Fatalf("create test author: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", id) })
	return id
}

// testPost inserts a post for the given author. Cleanup rides on the
// author cascade.
func testPost(t *testing.T, s *store.PostStore, authorID uuid.UUID, title string, publish time.Time, status models.PostStatus) *models.Post {
	t.Helper()

	created, err := s.Create(&models.Post{
		Title:    title,
		Slug:     "test-" + uuid.NewString()[:8],
		AuthorID: authorID,
		Body:     "Body of **" + title + "**.",
		Publish:  publish,
		Status:   status,
	})
	if err != nil {
		t.Fatalf("create test post %q: %v", title, err)
	}
	return created
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, email, role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// withChiURLParams adds chi URL parameters to a request from key/value pairs.
func withChiURLParams(r *http.Request, pairs ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		rctx.URLParams.Add(pairs[i], pairs[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withDetailParams addresses a request at the canonical date/slug URL of
// the given post.
func withDetailParams(r *http.Request, post *models.Post) *http.Request {
	d := post.Publish.UTC()
	return withChiURLParams(r,
		"year", strconv.Itoa(d.Year()),
		"month", strconv.Itoa(int(d.Month())),
		"day", strconv.Itoa(d.Day()),
		"slug", post.Slug,
	)
}

// clearPageCache empties the full-page cache between test steps.
func clearPageCache(t *testing.T, pc *cache.PageCache) {
	t.Helper()
	pc.InvalidateAll(context.Background())
}
