package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careconnect/feeder"
)

// buildFeed 는 n 개의 아이템을 가진 RSS 를 만든다. 발행일은 일부러 섞어 둔다.
func buildFeed(n int) string {
	base := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>블로그</title>`)
	for i := 0; i < n; i++ {
		// 7 과 서로소인 곱으로 순서를 섞는다.
		day := (i * 7) % n
		fmt.Fprintf(&b, `<item><title>글 %d</title><link>https://blog.naver.com/meditravelconnect/22300000%04d</link>`+
			`<description><![CDATA[<p>본문 %d</p>]]></description><category>병원마케팅</category><pubDate>%s</pubDate></item>`,
			i, i, i, base.Add(time.Duration(day)*24*time.Hour).Format(time.RFC1123Z))
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

type stubThumbnails struct{ calls atomic.Int32 }

func (s *stubThumbnails) Resolve(ctx context.Context, descriptionHTML, link string) string {
	s.calls.Add(1)
	return "https://img.example.com/" + link[strings.LastIndex(link, "/")+1:] + ".jpg"
}

type stubTags map[int64][]string

func (s stubTags) TagsByPostIDs(ctx context.Context, ids []int64) (map[int64][]string, error) {
	return s, nil
}

func newFeedServer(t *testing.T, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		assert.Equal(t, feeder.DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestPostService(url string, ttl time.Duration, thumbs ThumbnailResolver, tags TagSource) *PostService {
	return NewPostService(http.DefaultClient, PostServiceOptions{RSSURL: url, CacheTTL: ttl}, thumbs, tags)
}

func TestPostServiceListPaginationProperties(t *testing.T) {
	srv := newFeedServer(t, buildFeed(30), nil)
	svc := newTestPostService(srv.URL, time.Minute, &stubThumbnails{}, nil)
	ctx := context.Background()

	for _, limit := range []int{1, 7, 12, 50} {
		wantPages := (30 + limit - 1) / limit
		var prev time.Time
		seen := 0
		for page := 1; page <= wantPages+1; page++ {
			res, err := svc.List(ctx, page, limit)
			require.NoError(t, err)

			assert.LessOrEqual(t, len(res.Posts), limit)
			assert.Equal(t, 30, res.TotalPosts)
			assert.Equal(t, wantPages, res.TotalPages)
			assert.Equal(t, page, res.CurrentPage)

			for _, p := range res.Posts {
				ts, err := time.Parse(time.RFC3339, p.PublishedAt)
				require.NoError(t, err)
				if !prev.IsZero() {
					assert.False(t, ts.After(prev), "posts must be newest first")
				}
				prev = ts
				seen++
			}
		}
		assert.Equal(t, 30, seen)
	}
}

func TestPostServiceListClampsParams(t *testing.T) {
	srv := newFeedServer(t, buildFeed(60), nil)
	svc := newTestPostService(srv.URL, time.Minute, nil, nil)

	res, err := svc.List(context.Background(), 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CurrentPage)
	assert.Len(t, res.Posts, 50)
	assert.Equal(t, 2, res.TotalPages)

	res, err = svc.List(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Len(t, res.Posts, 1)
	assert.Equal(t, 60, res.TotalPages)
}

func TestPostServiceMapsFields(t *testing.T) {
	srv := newFeedServer(t, buildFeed(3), nil)
	svc := newTestPostService(srv.URL, 0, &stubThumbnails{}, stubTags{223000000001: {"챗봇", "예약"}})

	res, err := svc.List(context.Background(), 1, 12)
	require.NoError(t, err)
	require.Len(t, res.Posts, 3)

	byID := map[int64]int{}
	for i, p := range res.Posts {
		byID[p.ID] = i
		assert.Equal(t, "", p.Content)
		assert.False(t, p.Featured)
		assert.Equal(t, "병원마케팅", p.Category)
		assert.Equal(t, "CareConnect AI", p.Author)
		assert.Equal(t, 1, p.ReadingTime)
		assert.True(t, strings.HasSuffix(p.PublishedAt, "Z"))
	}

	first := res.Posts[byID[223000000001]]
	assert.Equal(t, "223000000001", first.Slug)
	assert.Equal(t, "글 1", first.Title)
	assert.Equal(t, "본문 1", first.Excerpt)
	assert.Equal(t, "https://img.example.com/223000000001.jpg", first.Thumbnail)
	assert.Equal(t, "https://blog.naver.com/meditravelconnect/223000000001", first.ExternalURL)
	assert.Equal(t, []string{"챗봇", "예약"}, first.Tags)

	other := res.Posts[byID[223000000000]]
	assert.NotNil(t, other.Tags)
	assert.Empty(t, other.Tags)
}

func TestPostServiceSnapshotIsCached(t *testing.T) {
	var hits atomic.Int32
	srv := newFeedServer(t, buildFeed(5), &hits)
	thumbs := &stubThumbnails{}
	svc := newTestPostService(srv.URL, time.Minute, thumbs, nil)

	now := time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	for page := 1; page <= 3; page++ {
		_, err := svc.List(context.Background(), page, 2)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, int32(5), thumbs.calls.Load())

	now = now.Add(2 * time.Minute)
	_, err := svc.List(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestPostServiceEmptyAndMalformedFeeds(t *testing.T) {
	for name, body := range map[string]string{
		"empty body":    "",
		"not xml":       "<<< definitely not a feed",
		"empty channel": `<?xml version="1.0"?><rss version="2.0"><channel><title>x</title></channel></rss>`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := newFeedServer(t, body, nil)
			svc := newTestPostService(srv.URL, 0, nil, nil)

			res, err := svc.List(context.Background(), 1, 12)
			require.NoError(t, err)
			assert.NotNil(t, res.Posts)
			assert.Empty(t, res.Posts)
			assert.Equal(t, 1, res.TotalPages)
			assert.Equal(t, 0, res.TotalPosts)
		})
	}
}

func TestPostServiceFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := newTestPostService(srv.URL, time.Minute, nil, nil)
	_, err := svc.List(context.Background(), 1, 12)
	require.Error(t, err)
	assert.ErrorIs(t, err, feeder.ErrFetchFailed)

	// 실패는 캐시되지 않는다.
	_, err = svc.List(context.Background(), 1, 12)
	assert.Error(t, err)
}

func TestPostServiceGetByIDAndSlug(t *testing.T) {
	srv := newFeedServer(t, buildFeed(4), nil)
	svc := newTestPostService(srv.URL, time.Minute, nil, nil)
	ctx := context.Background()

	p, err := svc.GetByID(ctx, 223000000002)
	require.NoError(t, err)
	assert.Equal(t, "글 2", p.Title)

	p, err = svc.GetBySlug(ctx, "223000000003")
	require.NoError(t, err)
	assert.Equal(t, int64(223000000003), p.ID)

	_, err = svc.GetByID(ctx, 1)
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = svc.GetBySlug(ctx, "")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestFormatISOTime(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)
	assert.Equal(t, "2025-10-13T00:30:00.000Z", FormatISOTime(time.Date(2025, 10, 13, 9, 30, 0, 0, kst)))
}
