package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/brawl"
	"github.com/fwojciec/brawl/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newRecord(seed string, started time.Time) *brawl.CrawlRecord {
	return &brawl.CrawlRecord{
		Seed:       seed,
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
	}
}

func TestCrawlService_CreateCrawl(t *testing.T) {
	t.Parallel()

	t.Run("stores record with generated ID, count and digest", func(t *testing.T) {
		t.Parallel()

		// Given
		svc := sqlite.NewCrawlService(setupTestDB(t))
		ctx := context.Background()
		record := newRecord("https://example.com/index.html", testStart)
		record.Fetched = 3
		record.Failed = 1
		urls := []string{
			"https://example.com/index.html",
			"https://example.com/a.html",
			"https://example.com/b.html",
		}

		// When
		err := svc.CreateCrawl(ctx, record, urls)

		// Then
		require.NoError(t, err)
		assert.NotEmpty(t, record.ID)
		assert.Equal(t, 3, record.URLCount)
		assert.Equal(t, sqlite.DigestURLs(urls), record.Digest)

		found, err := svc.FindCrawlByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, record.Seed, found.Seed)
		assert.True(t, record.StartedAt.Equal(found.StartedAt))
		assert.True(t, record.FinishedAt.Equal(found.FinishedAt))
		assert.Equal(t, 3, found.URLCount)
		assert.Equal(t, 3, found.Fetched)
		assert.Equal(t, 1, found.Failed)
		assert.False(t, found.Canceled)
		assert.Equal(t, record.Digest, found.Digest)
	})

	t.Run("round-trips canceled flag", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCrawlService(setupTestDB(t))
		ctx := context.Background()
		record := newRecord("https://example.com/index.html", testStart)
		record.Canceled = true

		require.NoError(t, svc.CreateCrawl(ctx, record, []string{"https://example.com/index.html"}))

		found, err := svc.FindCrawlByID(ctx, record.ID)
		require.NoError(t, err)
		assert.True(t, found.Canceled)
	})

	t.Run("sets finish time when missing", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCrawlService(setupTestDB(t))
		record := &brawl.CrawlRecord{Seed: "https://example.com/index.html", StartedAt: testStart}

		require.NoError(t, svc.CreateCrawl(context.Background(), record, nil))

		assert.False(t, record.FinishedAt.IsZero())
	})

	t.Run("returns error for invalid record", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCrawlService(setupTestDB(t))

		err := svc.CreateCrawl(context.Background(), &brawl.CrawlRecord{}, nil)

		require.Error(t, err)
		assert.Equal(t, brawl.EINVALID, brawl.ErrorCode(err))
	})
}

func TestCrawlService_FindCrawlByID(t *testing.T) {
	t.Parallel()

	t.Run("returns ENOTFOUND for unknown ID", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCrawlService(setupTestDB(t))

		_, err := svc.FindCrawlByID(context.Background(), "missing")

		require.Error(t, err)
		assert.Equal(t, brawl.ENOTFOUND, brawl.ErrorCode(err))
	})
}

func TestCrawlService_FindCrawls(t *testing.T) {
	t.Parallel()

	seedCrawls := func(t *testing.T, svc *sqlite.CrawlService) []*brawl.CrawlRecord {
		t.Helper()
		ctx := context.Background()
		records := []*brawl.CrawlRecord{
			newRecord("https://a.example/index.html", testStart),
			newRecord("https://b.example/index.html", testStart.Add(time.Hour)),
			newRecord("https://a.example/index.html", testStart.Add(2*time.Hour)),
		}
		urls := [][]string{
			{"https://a.example/index.html"},
			{"https://b.example/index.html"},
			{"https://a.example/index.html"},
		}
		for i, r := range records {
			require.NoError(t, svc.CreateCrawl(ctx, r, urls[i]))
		}
		return records
	}

	t.Run("returns all crawls newest first", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCrawlService(setupTestDB(t))
		records := seedCrawls(t, svc)

		found, err := svc.FindCrawls(context.Background(), brawl.CrawlFilter{})

		require.NoError(t, err)
		require.Len(t, found, 3)
		assert.Equal(t, records[2].ID, found[0].ID)
		assert.Equal(t, records[1].ID, found[1].ID)
		assert.Equal(t, records[0].ID, found[2].ID)
	})

	t.Run("filters by seed", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCrawlService(setupTestDB(t))
		seedCrawls(t, svc)
		seed := "https://a.example/index.html"

		found, err := svc.FindCrawls(context.Background(), brawl.CrawlFilter{Seed: &seed})

		require.NoError(t, err)
		require.Len(t, found, 2)
		for _, r := range found {
			assert.Equal(t, seed, r.Seed)
		}
	})

	t.Run("filters by digest", func(t *testing.T) {
		t.Parallel()

		// Given two crawls that produced the same output
		svc := sqlite.NewCrawlService(setupTestDB(t))
		records := seedCrawls(t, svc)
		digest := records[0].Digest

		// When
		found, err := svc.FindCrawls(context.Background(), brawl.CrawlFilter{Digest: &digest})

		// Then
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("filters by ID", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCrawlService(setupTestDB(t))
		records := seedCrawls(t, svc)

		found, err := svc.FindCrawls(context.Background(), brawl.CrawlFilter{ID: &records[1].ID})

		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, records[1].ID, found[0].ID)
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCrawlService(setupTestDB(t))
		records := seedCrawls(t, svc)
		ctx := context.Background()

		limited, err := svc.FindCrawls(ctx, brawl.CrawlFilter{Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, limited, 2)
		assert.Equal(t, records[1].ID, limited[0].ID)

		offsetOnly, err := svc.FindCrawls(ctx, brawl.CrawlFilter{Offset: 2})
		require.NoError(t, err)
		require.Len(t, offsetOnly, 1)
		assert.Equal(t, records[0].ID, offsetOnly[0].ID)
	})

	t.Run("returns empty for no matches", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCrawlService(setupTestDB(t))
		seed := "https://none.example/"

		found, err := svc.FindCrawls(context.Background(), brawl.CrawlFilter{Seed: &seed})

		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestCrawlService_FindCrawlURLs(t *testing.T) {
	t.Parallel()

	t.Run("returns URLs in insertion order", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCrawlService(setupTestDB(t))
		ctx := context.Background()
		urls := []string{
			"https://example.com/index.html",
			"https://example.com/z.html",
			"https://example.com/a.html",
		}
		record := newRecord(urls[0], testStart)
		require.NoError(t, svc.CreateCrawl(ctx, record, urls))

		got, err := svc.FindCrawlURLs(ctx, record.ID)

		require.NoError(t, err)
		assert.Equal(t, urls, got)
	})

	t.Run("keeps crawls separate", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCrawlService(setupTestDB(t))
		ctx := context.Background()
		first := newRecord("https://a.example/index.html", testStart)
		second := newRecord("https://b.example/index.html", testStart)
		require.NoError(t, svc.CreateCrawl(ctx, first, []string{"https://a.example/index.html"}))
		require.NoError(t, svc.CreateCrawl(ctx, second, []string{"https://b.example/index.html", "https://b.example/x.html"}))

		got, err := svc.FindCrawlURLs(ctx, first.ID)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example/index.html"}, got)
	})

	t.Run("returns ENOTFOUND for unknown crawl", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCrawlService(setupTestDB(t))

		_, err := svc.FindCrawlURLs(context.Background(), "missing")

		assert.Equal(t, brawl.ENOTFOUND, brawl.ErrorCode(err))
	})
}

func TestCrawlService_DeleteCrawl(t *testing.T) {
	t.Parallel()

	t.Run("removes crawl and its URLs", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewCrawlService(db)
		ctx := context.Background()
		record := newRecord("https://example.com/index.html", testStart)
		require.NoError(t, svc.CreateCrawl(ctx, record, []string{"https://example.com/index.html", "https://example.com/a.html"}))

		err := svc.DeleteCrawl(ctx, record.ID)

		require.NoError(t, err)
		_, err = svc.FindCrawlByID(ctx, record.ID)
		assert.Equal(t, brawl.ENOTFOUND, brawl.ErrorCode(err))

		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM crawl_urls WHERE crawl_id = ?", record.ID).Scan(&n))
		assert.Zero(t, n)
	})

	t.Run("returns ENOTFOUND for unknown crawl", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewCrawlService(setupTestDB(t))

		err := svc.DeleteCrawl(context.Background(), "missing")

		assert.Equal(t, brawl.ENOTFOUND, brawl.ErrorCode(err))
	})
}

func TestDigestURLs(t *testing.T) {
	t.Parallel()

	t.Run("is stable for the same list", func(t *testing.T) {
		t.Parallel()
		urls := []string{"https://example.com/a.html", "https://example.com/b.html"}
		assert.Equal(t, sqlite.DigestURLs(urls), sqlite.DigestURLs(append([]string(nil), urls...)))
	})

	t.Run("depends on order", func(t *testing.T) {
		t.Parallel()
		a := sqlite.DigestURLs([]string{"https://example.com/a.html", "https://example.com/b.html"})
		b := sqlite.DigestURLs([]string{"https://example.com/b.html", "https://example.com/a.html"})
		assert.NotEqual(t, a, b)
	})

	t.Run("separates entries", func(t *testing.T) {
		t.Parallel()
		assert.NotEqual(t, sqlite.DigestURLs([]string{"ab"}), sqlite.DigestURLs([]string{"a", "b"}))
	})

	t.Run("is 16 hex characters", func(t *testing.T) {
		t.Parallel()
		assert.Len(t, sqlite.DigestURLs(nil), 16)
	})
}
