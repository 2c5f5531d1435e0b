// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"html"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/marquee-site/marquee/internal/cache"
)

var renderCacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "marquee_render_cache_lookups_total",
		Help: "Content render cache lookups by result",
	},
	[]string{"result"},
)

// ContentRenderer turns content block Markdown into sanitized HTML.
type ContentRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	cache  cache.Cache
}

// NewContentRenderer creates a renderer with GitHub-flavored Markdown and
// bluemonday's UGC policy. Rendered output is memoized in c, keyed by a
// hash of the source; c may be nil.
func NewContentRenderer(c cache.Cache) *ContentRenderer {
	return &ContentRenderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
		cache:  c,
	}
}

// Render converts src to sanitized HTML. Raw HTML in src is escaped by
// goldmark and anything unsafe left over is stripped by the policy.
func (c *ContentRenderer) Render(ctx context.Context, src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}

	var key string
	if c.cache != nil {
		sum := sha256.Sum256([]byte(src))
		key = "content:" + hex.EncodeToString(sum[:])
		cached, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			renderCacheLookups.WithLabelValues("hit").Inc()
			return string(cached), nil
		case errors.Is(err, cache.ErrCacheMiss):
			renderCacheLookups.WithLabelValues("miss").Inc()
		default:
			slog.Debug("render cache unavailable", "error", err)
		}
	}

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	out := c.policy.Sanitize(buf.String())

	if key != "" {
		if err := c.cache.Set(ctx, key, []byte(out), 0); err != nil {
			slog.Debug("render cache store failed", "error", err)
		}
	}
	return out, nil
}

// plainText strips all markup from visitor input.
var plainText = bluemonday.StrictPolicy()

// SanitizePlainText removes any HTML from s and trims surrounding space.
// Entities produced by the policy are decoded back so stored text stays
// readable.
func SanitizePlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}
