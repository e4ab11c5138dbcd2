// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sitemap renders the sitemap.xml document listing all published
// posts. It is a read-only derived view: entries carry a weekly change
// frequency, a 0.9 priority, and the post's last update as lastmod.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/models"
)

const (
	xmlns      = "http://www.sitemaps.org/schemas/sitemap/0.9"
	changeFreq = "weekly"
	priority   = "0.9"
)

// urlEntry is one <url> element of the sitemap.
type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// urlSet is the <urlset> document root.
type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

// ForPosts renders the sitemap XML for the given published posts. Post
// URLs are made absolute against baseURL.
func ForPosts(baseURL string, posts []models.Post) ([]byte, error) {
	base := strings.TrimRight(baseURL, "/")

	set := urlSet{Xmlns: xmlns}
	for _, p := range posts {
		set.URLs = append(set.URLs, urlEntry{
			Loc:        base + p.URLPath(),
			LastMod:    p.UpdatedAt.UTC().Format(time.RFC3339),
			ChangeFreq: changeFreq,
			Priority:   priority,
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sitemap marshal: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
