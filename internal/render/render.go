// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public blog and
// the admin interface. Templates are embedded at compile time; public
// pages can also be rendered to a byte slice so the page cache can store
// the finished HTML.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"inkwell/internal/markdown"
	"inkwell/internal/middleware"
	"inkwell/internal/session"
)

//go:embed templates/blog/*.html templates/admin/*.html
var templateFS embed.FS

// PageData holds all data passed to templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Section   string         // Active nav section (e.g. "posts", "comments")
	Session   *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken string         // CSRF token for admin forms
	Data      map[string]any // Page-specific data
	Flash     string         // One-time notification message
}

// Renderer handles template parsing and execution.
type Renderer struct {
	blog  map[string]*template.Template
	admin map[string]*template.Template
}

// standaloneTemplates lists admin templates that render as full HTML pages
// without the base layout (they have their own <html>, <head>, etc.).
var standaloneTemplates = map[string]bool{
	"login":      true,
	"2fa_setup":  true,
	"2fa_verify": true,
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Each page template is paired with its set's base layout.
func New() (*Renderer, error) {
	funcMap := template.FuncMap{
		// markdown renders a post body to HTML. Post bodies are
		// author-supplied, so raw HTML passthrough is acceptable here.
		"markdown": func(source string) template.HTML {
			html, err := markdown.ToHTML(source)
			if err != nil {
				return template.HTML(template.HTMLEscapeString(source))
			}
			return template.HTML(html)
		},
		// longdate formats a timestamp the way post headers show it.
		"longdate": func(t time.Time) string {
			return t.UTC().Format("January 2, 2006")
		},
		// datetime formats a timestamp with time, for comment metadata
		// and admin listings.
		"datetime": func(t time.Time) string {
			return t.UTC().Format("Jan 2, 2006 15:04")
		},
		// add1 turns zero-based loop indexes into display ordinals.
		"add1": func(i int) int {
			return i + 1
		},
		"activeClass": func(current, target string) string {
			if current == target {
				return "active"
			}
			return ""
		},
	}

	r := &Renderer{
		blog:  make(map[string]*template.Template),
		admin: make(map[string]*template.Template),
	}

	if err := r.parseSet(r.blog, "blog", funcMap, nil); err != nil {
		return nil, err
	}
	if err := r.parseSet(r.admin, "admin", funcMap, standaloneTemplates); err != nil {
		return nil, err
	}

	return r, nil
}

// parseSet parses every page template of one set, pairing non-standalone
// pages with the set's base.html.
func (rn *Renderer) parseSet(dst map[string]*template.Template, set string, funcMap template.FuncMap, standalone map[string]bool) error {
	dir := "templates/" + set
	entries, err := templateFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s templates: %w", set, err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" {
			continue
		}

		tmplName := name[:len(name)-len(".html")]

		var tmpl *template.Template
		var parseErr error
		if standalone[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(funcMap).ParseFS(
				templateFS, dir+"/"+name,
			)
		} else {
			tmpl, parseErr = template.New("base.html").Funcs(funcMap).ParseFS(
				templateFS, dir+"/base.html", dir+"/"+name,
			)
		}
		if parseErr != nil {
			return fmt.Errorf("parse template %s/%s: %w", set, name, parseErr)
		}

		dst[tmplName] = tmpl
	}

	return nil
}

// BlogHTML renders a public page to a byte slice so it can be stored in
// the page cache before being written to the response.
func (rn *Renderer) BlogHTML(name string, data *PageData) ([]byte, error) {
	tmpl, ok := rn.blog[name]
	if !ok {
		return nil, fmt.Errorf("blog template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return nil, fmt.Errorf("execute template %q: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Blog renders a public page directly to the response.
func (rn *Renderer) Blog(w http.ResponseWriter, name string, data *PageData) {
	html, err := rn.BlogHTML(name, data)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// BlogStatus renders a public page with an explicit status code, used for
// validation re-renders (422) and error pages.
func (rn *Renderer) BlogStatus(w http.ResponseWriter, status int, name string, data *PageData) {
	html, err := rn.BlogHTML(name, data)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(html)
}

// Admin renders an admin page. The CSRF token and session are injected
// from the request context (set by the CSRF and LoadSession middleware).
func (rn *Renderer) Admin(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.admin[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, execName, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// NotFound renders the public 404 page.
func (rn *Renderer) NotFound(w http.ResponseWriter) {
	rn.BlogStatus(w, http.StatusNotFound, "404", &PageData{
		Title: "Page not found",
		Data:  map[string]any{},
	})
}
