package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/starford/menusitemap/internal/apperr"
)

const sitemapSuffix = "/sitemap.xml"

// Trigger is the query-string fallback that requests the sitemap on hosts
// that cannot route /sitemap.xml to the application.
type Trigger struct {
	Option string
	Plugin string
	Group  string
}

// SitemapSource produces the encoded sitemap for a site root.
type SitemapSource interface {
	Sitemap(ctx context.Context, baseURL string) ([]byte, error)
}

// IsSitemapRequest reports whether r asks for the sitemap: a GET or HEAD
// whose path ends in /sitemap.xml, or whose query matches the trigger.
func IsSitemapRequest(r *http.Request, trig Trigger) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	uri, _, _ := strings.Cut(r.RequestURI, "?")
	for _, p := range []string{r.URL.Path, r.URL.EscapedPath(), uri} {
		if strings.HasSuffix(strings.ToLower(p), sitemapSuffix) {
			return true
		}
	}
	if trig.Option == "" {
		return false
	}
	q := r.URL.Query()
	return q.Get("option") == trig.Option &&
		q.Get("plugin") == trig.Plugin &&
		q.Get("group") == trig.Group
}

// RequestBaseURL derives the site root from the request. An http or https
// X-Forwarded-Proto wins; any other value is ignored and TLS decides.
func RequestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ",")
	switch proto := strings.ToLower(strings.TrimSpace(first)); proto {
	case "http", "https":
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// baseURLFor returns the configured root or, when empty, the request root.
func baseURLFor(configured string, r *http.Request) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	return RequestBaseURL(r)
}

// SitemapInterceptor answers sitemap requests with the generated document
// and passes everything else down the chain. A failed pass yields 503 (data
// source down) or 500 and never a partial document.
func SitemapInterceptor(src SitemapSource, baseURL string, trig Trigger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsSitemapRequest(r, trig) {
				next.ServeHTTP(w, r)
				return
			}

			body, err := src.Sitemap(r.Context(), baseURLFor(baseURL, r))
			if err != nil {
				slog.Error("sitemap: generation failed", slog.String("error", err.Error()))
				status := http.StatusInternalServerError
				if errors.Is(err, apperr.ErrSourceUnavailable) {
					status = http.StatusServiceUnavailable
				}
				http.Error(w, http.StatusText(status), status)
				return
			}

			h := w.Header()
			h.Set("Content-Type", "application/xml; charset=utf-8")
			h.Set("X-Robots-Tag", "noindex")
			h.Set("Content-Length", strconv.Itoa(len(body)))
			w.WriteHeader(http.StatusOK)
			if r.Method != http.MethodHead {
				_, _ = w.Write(body)
			}
		})
	}
}
