// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	csrf "filippo.io/csrf/gorilla"
)

// CSRFConfig holds configuration for CSRF protection.
// filippo.io/csrf/gorilla checks Fetch metadata and Origin headers, so no
// token cookie is involved.
type CSRFConfig struct {
	// AuthKey is a 32-byte key. The session secret is reused here.
	AuthKey []byte

	// ErrorHandler is called when CSRF validation fails.
	ErrorHandler http.Handler

	// TrustedOrigins are host[:port] values allowed to make cross-origin
	// state-changing requests.
	TrustedOrigins []string
}

// DefaultCSRFConfig returns a CSRFConfig trusting the hosts of the given
// browser origins (typically the configured CORS origins).
func DefaultCSRFConfig(authKey []byte, origins []string) CSRFConfig {
	return CSRFConfig{
		AuthKey:        authKey,
		TrustedOrigins: OriginHosts(origins),
	}
}

// OriginHosts converts full origins like "https://band.example:8443" to the
// host-only form the csrf library expects. Wildcards and unparseable values
// are dropped.
func OriginHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" || strings.Contains(o, "*") {
			continue
		}
		if !strings.Contains(o, "://") {
			hosts = append(hosts, o)
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}

// CSRF returns a middleware that provides CSRF protection.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	var opts []csrf.Option

	if cfg.ErrorHandler != nil {
		opts = append(opts, csrf.ErrorHandler(cfg.ErrorHandler))
	} else {
		opts = append(opts, csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)))
	}

	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}

	return csrf.Protect(cfg.AuthKey, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Warn("CSRF validation failed",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	WriteAPIError(w, http.StatusForbidden, "csrf_failed", "Cross-site request rejected")
}

// SkipCSRF returns a middleware that disables the CSRF check for requests
// matching skip. It must run before CSRF.
func SkipCSRF(skip func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip(r) {
				r = csrf.UnsafeSkipCheck(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsUploadPut matches the raw upload stream. Its URL is an unguessable
// capability returned by the authenticated request-url call.
func IsUploadPut(r *http.Request) bool {
	return r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/uploads/")
}

// IsLoopbackOrigin matches requests whose Origin is localhost or a loopback
// IP on any port. It backs the development CORS wildcards, which the csrf
// library cannot express as trusted origins.
func IsLoopbackOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// AnyOf matches a request when any of the predicates does.
func AnyOf(preds ...func(*http.Request) bool) func(*http.Request) bool {
	return func(r *http.Request) bool {
		for _, p := range preds {
			if p(r) {
				return true
			}
		}
		return false
	}
}
