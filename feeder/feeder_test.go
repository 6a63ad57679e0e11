package feeder_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careconnect/feeder"
)

func newFeedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchRssFeeds(t *testing.T) {
	body, err := os.ReadFile("testdata/naver.xml")
	require.NoError(t, err)
	srv := newFeedServer(t, http.StatusOK, string(body))

	items, err := feeder.FetchRssFeeds(context.Background(), srv.Client(), srv.URL, "test-agent/1.0", 0)
	require.NoError(t, err)
	require.Len(t, items, 3)

	first := items[0]
	assert.Equal(t, "외국인 환자 유치 가이드", first.Title)
	assert.Equal(t, "https://blog.naver.com/meditravelconnect/223456789012?fromRss=true&trackingCode=rss", first.Link)
	assert.Equal(t, "meditravelconnect", first.Author)
	assert.Equal(t, []string{"병원마케팅"}, first.Categories)
	assert.Contains(t, first.Description, `<img src="https://blogthumb.pstatic.net/a.jpg" />`)
	assert.True(t, first.PublishedAt.Equal(time.Date(2025, 10, 13, 0, 30, 0, 0, time.UTC)))

	assert.True(t, items[2].PublishedAt.IsZero())
}

func TestFetchRssFeedsLimit(t *testing.T) {
	body, err := os.ReadFile("testdata/naver.xml")
	require.NoError(t, err)
	srv := newFeedServer(t, http.StatusOK, string(body))

	items, err := feeder.FetchRssFeeds(context.Background(), srv.Client(), srv.URL, "test-agent/1.0", 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestFetchRssFeedsNon200IsError(t *testing.T) {
	srv := newFeedServer(t, http.StatusBadGateway, "upstream down")

	_, err := feeder.FetchRssFeeds(context.Background(), srv.Client(), srv.URL, "test-agent/1.0", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, feeder.ErrFetchFailed)
	assert.Contains(t, err.Error(), "502")
}

func TestFetchRssFeedsMalformedBodyIsEmpty(t *testing.T) {
	for name, body := range map[string]string{
		"empty":   "",
		"not xml": "<html><body>blocked</body></html",
	} {
		t.Run(name, func(t *testing.T) {
			srv := newFeedServer(t, http.StatusOK, body)

			items, err := feeder.FetchRssFeeds(context.Background(), srv.Client(), srv.URL, "test-agent/1.0", 0)
			require.NoError(t, err)
			assert.Empty(t, items)
			assert.NotNil(t, items)
		})
	}
}

func TestParseFeedStripsControlCharacters(t *testing.T) {
	body := "<?xml version=\"1.0\"?><rss version=\"2.0\"><channel><item><title>a\x1Bb</title><link>https://x/1</link></item></channel></rss>"
	srv := newFeedServer(t, http.StatusOK, body)

	items, err := feeder.FetchRssFeeds(context.Background(), srv.Client(), srv.URL, "test-agent/1.0", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "ab", items[0].Title)
}

func TestParseFeedEmptyChannel(t *testing.T) {
	items := feeder.ParseFeed(strings.NewReader(`<?xml version="1.0"?><rss version="2.0"><channel><title>t</title></channel></rss>`), 0)
	assert.Empty(t, items)
}
