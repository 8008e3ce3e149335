package preview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yockii/notion_blog/internal/constant"
	"github.com/yockii/notion_blog/pkg/blockrender"
	"github.com/yockii/notion_blog/pkg/notion"
)

func TestClient_Fetch(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Go","description":"The Go language","image":"https://go.dev/i.png","site_name":"go.dev"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/og", time.Second)
	p, err := c.Fetch(context.Background(), "https://go.dev/?a=1&b=2")
	require.NoError(t, err)
	assert.Equal(t, "https://go.dev/?a=1&b=2", gotURL)
	assert.Equal(t, &Preview{
		URL:         "https://go.dev/?a=1&b=2",
		Title:       "Go",
		Description: "The Go language",
		Image:       "https://go.dev/i.png",
		SiteName:    "go.dev",
	}, p)
}

func TestClient_FetchFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("url") {
		case "https://status.example":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "https://slow.example":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{}`))
		default:
			_, _ = w.Write([]byte(`<html>`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond)
	for _, target := range []string{"https://status.example", "https://slow.example", "https://html.example"} {
		_, err := c.Fetch(context.Background(), target)
		assert.ErrorIs(t, err, constant.ErrPreviewUnavailable, target)
	}

	_, err := NewClient("", time.Second).Fetch(context.Background(), "https://x.example")
	assert.ErrorIs(t, err, constant.ErrPreviewUnavailable)
}

func TestFallback(t *testing.T) {
	p := Fallback("https://blog.example.com/a/b?c=d")
	assert.Equal(t, "blog.example.com", p.Title)
	assert.Equal(t, FallbackDescription, p.Description)
	assert.Empty(t, p.Image)
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*Preview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[url]++
	if f.fail[url] {
		return nil, errors.New("unreachable")
	}
	return &Preview{URL: url, Title: "Title of " + url, Description: "desc"}, nil
}

func bookmarkBlock(url string) *notion.Block {
	return &notion.Block{Type: notion.TypeBookmark, Bookmark: &notion.BookmarkPayload{URL: url}}
}

func TestEnrich(t *testing.T) {
	nodes := blockrender.New().RenderAll([]*notion.Block{
		bookmarkBlock("https://ok.example"),
		bookmarkBlock("https://down.example/page"),
	})
	fetcher := &fakeFetcher{fail: map[string]bool{"https://down.example/page": true}}

	Enrich(context.Background(), fetcher, nodes, 2)

	assert.Equal(t, "Title of https://ok.example", nodes[0].FindElement(".//h3").Text())
	assert.Equal(t, "down.example", nodes[1].FindElement(".//h3").Text())
	assert.Equal(t, FallbackDescription, nodes[1].FindElement(".//p").Text())
	assert.Equal(t, 1, fetcher.calls["https://down.example/page"], "failure falls back without retry")
}

func TestEnrich_NoFetcher(t *testing.T) {
	nodes := blockrender.New().RenderAll([]*notion.Block{bookmarkBlock("https://a.example")})
	Enrich(context.Background(), nil, nodes, 0)
	assert.Equal(t, FallbackDescription, nodes[0].FindElement(".//p").Text())
}

func TestCachedFetcher_WithoutRedis(t *testing.T) {
	next := &fakeFetcher{}
	c := NewCachedFetcher(next, nil, time.Minute)
	p, err := c.Fetch(context.Background(), "https://a.example")
	require.NoError(t, err)
	assert.Equal(t, "Title of https://a.example", p.Title)
	assert.Equal(t, "preview:https://a.example", cacheKey("https://a.example"))
}

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestCachedFetcher_RedisDown(t *testing.T) {
	next := &fakeFetcher{fail: map[string]bool{"https://down.example": true}}
	c := NewCachedFetcher(next, unreachableRedis(t), time.Minute)
	ctx := context.Background()

	p, err := c.Fetch(ctx, "https://a.example")
	require.NoError(t, err, "cache failures are bypassed")
	assert.Equal(t, "Title of https://a.example", p.Title)

	_, err = c.Fetch(ctx, "https://down.example")
	assert.EqualError(t, err, "unreachable", "upstream errors pass through untouched")
	assert.Equal(t, 1, next.calls["https://down.example"])

	_, err = c.load(ctx, cacheKey("https://a.example"))
	assert.ErrorIs(t, err, constant.ErrCacheError)
	assert.ErrorIs(t, c.store(ctx, cacheKey("https://a.example"), p), constant.ErrCacheError)
}
