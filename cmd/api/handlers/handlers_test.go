package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careconnect/cmd/api/dto"
	"careconnect/cmd/api/handlers"
	"careconnect/cmd/api/services"
	"careconnect/mailer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func rssFeed(n int) string {
	base := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>블로그</title>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<item><title>글 %d</title><link>https://blog.naver.com/meditravelconnect/22300000%04d?fromRss=true</link>`+
			`<description><![CDATA[<p>본문 %d</p>]]></description><pubDate>%s</pubDate></item>`,
			i, i, i, base.Add(time.Duration(i)*time.Hour).Format(time.RFC1123Z))
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func newPostService(t *testing.T, status int, body string) *services.PostService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return services.NewPostService(srv.Client(), services.PostServiceOptions{RSSURL: srv.URL}, nil, nil)
}

func serve(r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestParseIntOr(t *testing.T) {
	assert.Equal(t, 3, handlers.ParseIntOr("3", 1))
	assert.Equal(t, -2, handlers.ParseIntOr(" -2 ", 1))
	assert.Equal(t, 1, handlers.ParseIntOr("", 1))
	assert.Equal(t, 12, handlers.ParseIntOr("abc", 12))
	assert.Equal(t, 12, handlers.ParseIntOr("2.5", 12))
}

func TestListPostsHandler(t *testing.T) {
	svc := newPostService(t, http.StatusOK, rssFeed(5))
	r := gin.New()
	r.GET("/api/posts", handlers.ListPostsHandler(svc))

	w := serve(r, http.MethodGet, "/api/posts?page=2&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, s-maxage=1800, stale-while-revalidate=3600", w.Header().Get("Cache-Control"))

	var page dto.PostPageDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 5, page.TotalPosts)
	require.Len(t, page.Posts, 2)
	// 최신순: 글 4, 3 이 1페이지, 글 2, 1 이 2페이지
	assert.Equal(t, "글 2", page.Posts[0].Title)
	assert.Equal(t, int64(223000000002), page.Posts[0].ID)

	w = serve(r, http.MethodGet, "/api/posts?page=x&limit=999", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Posts, 5)
}

func TestListPostsHandlerFetchFailure(t *testing.T) {
	svc := newPostService(t, http.StatusBadGateway, "")
	r := gin.New()
	r.GET("/api/posts", handlers.ListPostsHandler(svc))

	w := serve(r, http.MethodGet, "/api/posts", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Failed to load posts from Naver RSS"}`, w.Body.String())
	assert.Empty(t, w.Header().Get("Cache-Control"))
}

func TestGetPostHandlers(t *testing.T) {
	svc := newPostService(t, http.StatusOK, rssFeed(3))
	r := gin.New()
	r.GET("/api/posts/:id", handlers.GetPostHandler(svc))
	r.GET("/api/posts/slug/:slug", handlers.GetPostBySlugHandler(svc))

	w := serve(r, http.MethodGet, "/api/posts/223000000001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var post dto.BlogPostDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	assert.Equal(t, "글 1", post.Title)

	w = serve(r, http.MethodGet, "/api/posts/slug/223000000002", nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, path := range []string{"/api/posts/999", "/api/posts/abc", "/api/posts/slug/nope"} {
		w = serve(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestSitemapHandler(t *testing.T) {
	posts := newPostService(t, http.StatusOK, rssFeed(2))
	r := gin.New()
	r.GET("/api/sitemap.xml", handlers.SitemapHandler(services.NewSitemapService("https://careconnect-ai.com", posts, 50)))

	w := serve(r, http.MethodGet, "/api/sitemap.xml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, s-maxage=3600, stale-while-revalidate=86400", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Body.String(), "<loc>https://careconnect-ai.com/blog/223000000001</loc>")
	assert.Contains(t, w.Body.String(), "<loc>https://careconnect-ai.com/pricing</loc>")
}

type failingSitemap struct{}

func (failingSitemap) Generate(ctx context.Context) ([]byte, error) {
	return nil, errors.New("xml encode failed")
}

func TestSitemapHandlerFailure(t *testing.T) {
	r := gin.New()
	r.GET("/api/sitemap.xml", handlers.SitemapHandler(failingSitemap{}))

	w := serve(r, http.MethodGet, "/api/sitemap.xml", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Error generating sitemap"}`, w.Body.String())
	assert.Empty(t, w.Header().Get("Cache-Control"))
}

type memSender struct {
	err  error
	sent int
}

func (m *memSender) Send(ctx context.Context, msg mailer.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent++
	return "id", nil
}

func TestRequestDemoHandler(t *testing.T) {
	sender := &memSender{}
	r := gin.New()
	r.POST("/api/request-demo", handlers.RequestDemoHandler(services.NewDemoService(nil, nil, sender, "ops@example.com")))

	ok := []byte(`{"name":"김철수","hospitalName":"서울치과","email":"kim@clinic.kr","phone":"010-1234-5678"}`)
	w := serve(r, http.MethodPost, "/api/request-demo", ok)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.DemoResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, services.DemoSuccessMessage, resp.Message)
	assert.Equal(t, 1, sender.sent)

	w = serve(r, http.MethodPost, "/api/request-demo", []byte(`{"name":"김철수","email":"bad"}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	var verr dto.DemoValidationErrorDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verr))
	assert.False(t, verr.Success)
	assert.Equal(t, "올바른 이메일 형식을 입력해주세요.", verr.Errors["email"])
	assert.Contains(t, verr.Errors, "hospitalName")
	assert.Contains(t, verr.Errors, "phone")

	w = serve(r, http.MethodPost, "/api/request-demo", []byte(`{not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestDemoHandlerMailFailure(t *testing.T) {
	r := gin.New()
	svc := services.NewDemoService(nil, nil, &memSender{err: errors.New("mailgun 500")}, "ops@example.com")
	r.POST("/api/request-demo", handlers.RequestDemoHandler(svc))

	w := serve(r, http.MethodPost, "/api/request-demo",
		[]byte(`{"name":"김철수","hospitalName":"서울치과","email":"kim@clinic.kr","phone":"010-1234-5678"}`))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"success":false,"message":%q}`, services.DemoFailureMessage), w.Body.String())
}

func TestCalculatorHandler(t *testing.T) {
	r := gin.New()
	r.POST("/api/calculator", handlers.CalculatorHandler(services.NewCalculatorService()))

	w := serve(r, http.MethodPost, "/api/calculator",
		[]byte(`{"monthlyPatients":500,"avgRevenue":150000,"marketingCost":5000000,"consultantCount":3}`))
	require.Equal(t, http.StatusOK, w.Code)
	var out dto.CalculatorResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, int64(175), out.NewPatients)
	assert.Equal(t, int64(1313), out.ROI)
	assert.Len(t, out.MonthlyGrowth, 12)

	w = serve(r, http.MethodPost, "/api/calculator", []byte(`{"monthlyPatients":-1}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPost, "/api/calculator", []byte(`{"monthlyPatients":"many"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthHandler(t *testing.T) {
	r := gin.New()
	r.GET("/ok", handlers.HealthHandler(nil))
	r.GET("/down", handlers.HealthHandler(handlers.PingerFunc(func(ctx context.Context) error {
		return errors.New("no primary")
	})))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ok", nil).Code)
	w := serve(r, http.MethodGet, "/down", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"mongo":"down"`)
}
