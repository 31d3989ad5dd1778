// Package new scaffolds a single post or page source file.
package new

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"frost/builder/config"
)

// slugRegex matches characters that are unsafe for filenames and
// routes.
var slugRegex = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// sanitizeSlug converts a title to a safe filename slug.
func sanitizeSlug(title string) string {
	slug := strings.ToLower(title)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugRegex.ReplaceAllString(slug, "")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if len(slug) > 100 {
		slug = slug[:100]
	}
	return slug
}

const postTemplate = `---
title: "%s"
date: %s
description: ""
tags: []
---

## Introduction

Start writing here...
`

const pageTemplate = `---
title: "%s"
---
<p>Write your page here. Site-absolute links like
<a href="/archive/">/archive/</a> are rewritten at freeze time.</p>
`

// Run creates a post (default) or page source file. The title becomes
// the slug; an existing file is never overwritten.
func Run(cfg *config.Config, args []string) error {
	kind := "post"
	if len(args) > 0 && (args[0] == "post" || args[0] == "page") {
		kind = args[0]
		args = args[1:]
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: frost new [post|page] \"My Title\"")
	}

	title := args[0]
	slug := sanitizeSlug(title)
	if slug == "" {
		return fmt.Errorf("title %q produces an empty slug", title)
	}

	var filename, content string
	switch kind {
	case "page":
		filename = filepath.Join(cfg.PageRoot, slug+".html")
		content = fmt.Sprintf(pageTemplate, title)
	default:
		filename = filepath.Join(cfg.PostRoot, slug+".md")
		content = fmt.Sprintf(postTemplate, title, time.Now().Format("2006-01-02"))
	}

	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("file already exists: %s", filename)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(filename), err)
	}
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}

	fmt.Printf("✅ Created: %s\n", filename)
	return nil
}
