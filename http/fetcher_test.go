package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/brawl"
	brawlhttp "github.com/fwojciec/brawl/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_FetchLinks(t *testing.T) {
	t.Parallel()

	t.Run("returns resolved anchors from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><body><a href="a.html">A</a><a href="/b.html#x">B</a></body></html>`))
		}))
		defer server.Close()

		fetcher := brawlhttp.NewFetcher()
		defer fetcher.Close()

		links, err := fetcher.FetchLinks(context.Background(), server.URL+"/docs/index.html")

		require.NoError(t, err)
		assert.Equal(t, []string{
			server.URL + "/docs/a.html",
			server.URL + "/b.html#x",
		}, links)
	})

	t.Run("resolves against the final URL after redirect", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old.html", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new/index.html", http.StatusFound)
		})
		mux.HandleFunc("/new/index.html", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<a href="page.html">P</a>`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		fetcher := brawlhttp.NewFetcher()

		links, err := fetcher.FetchLinks(context.Background(), server.URL+"/old.html")

		require.NoError(t, err)
		assert.Equal(t, []string{server.URL + "/new/page.html"}, links)
	})

	t.Run("decodes declared charset", func(t *testing.T) {
		t.Parallel()

		// Given a Latin-1 page whose href contains a non-ASCII byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			_, _ = w.Write([]byte("<a href=\"caf\xe9.html\">Cafe</a>"))
		}))
		defer server.Close()

		fetcher := brawlhttp.NewFetcher()

		// When fetching
		links, err := fetcher.FetchLinks(context.Background(), server.URL+"/")

		// Then the href is decoded to UTF-8 before resolution
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, server.URL+"/caf%C3%A9.html", links[0])
	})

	t.Run("sends user agent", func(t *testing.T) {
		t.Parallel()

		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte(`<html></html>`))
		}))
		defer server.Close()

		fetcher := brawlhttp.NewFetcher(brawlhttp.WithUserAgent("test-agent"))

		_, err := fetcher.FetchLinks(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "test-agent", got)
	})

	t.Run("returns fetch error for non-200 status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		fetcher := brawlhttp.NewFetcher()

		_, err := fetcher.FetchLinks(context.Background(), server.URL+"/missing.html")

		require.Error(t, err)
		assert.Equal(t, brawl.EFETCH, brawl.ErrorCode(err))
		assert.Contains(t, brawl.ErrorMessage(err), "HTTP 404")
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		// Use a very short timeout that will expire before server responds
		fetcher := brawlhttp.NewFetcher(brawlhttp.WithTimeout(10 * time.Millisecond))

		_, err := fetcher.FetchLinks(context.Background(), server.URL)

		require.Error(t, err)
		assert.Equal(t, brawl.EFETCH, brawl.ErrorCode(err))
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := brawlhttp.NewFetcher()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fetcher.FetchLinks(ctx, server.URL)
		require.Error(t, err)
	})

	t.Run("returns error for non-existent host", func(t *testing.T) {
		t.Parallel()

		fetcher := brawlhttp.NewFetcher(brawlhttp.WithTimeout(100 * time.Millisecond))

		_, err := fetcher.FetchLinks(context.Background(), "http://non-existent-host.invalid/page.html")

		require.Error(t, err)
	})

	t.Run("rejects malformed URL", func(t *testing.T) {
		t.Parallel()

		fetcher := brawlhttp.NewFetcher()

		_, err := fetcher.FetchLinks(context.Background(), "http://[::1")

		require.Error(t, err)
		assert.Equal(t, brawl.EINVALID, brawl.ErrorCode(err))
	})
}

func TestFetcher_Close(t *testing.T) {
	t.Parallel()

	fetcher := brawlhttp.NewFetcher()
	assert.NoError(t, fetcher.Close())
	assert.NoError(t, fetcher.Close())
}
