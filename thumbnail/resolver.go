package thumbnail

import (
	"context"
	"io"
	"net/http"
	"strings"

	"careconnect/internal/httpclient"
	"careconnect/internal/logger"
	"careconnect/parser"
)

const maxPageBytes = 2 << 20

// PageRenderer 는 스크립트 실행 후의 HTML 을 돌려주는 렌더러다. (renderer.Renderer)
type PageRenderer interface {
	RenderHTML(ctx context.Context, url string) (string, error)
}

// Resolver 는 게시글 썸네일을 찾는다.
// 실패는 모두 "썸네일 없음" 으로 취급하고 에러를 돌려주지 않는다.
type Resolver struct {
	client   *http.Client
	renderer PageRenderer
}

// NewResolver 는 Resolver 를 만든다. renderer 가 nil 이면 렌더링 fallback 을 하지 않는다.
func NewResolver(client *http.Client, renderer PageRenderer) *Resolver {
	if client == nil {
		client = httpclient.NewDefault()
	}
	return &Resolver{client: client, renderer: renderer}
}

// Resolve 는 RSS description 의 첫 이미지를, 없으면 원문 페이지의 OG/Twitter 이미지를 반환한다.
func (r *Resolver) Resolve(ctx context.Context, descriptionHTML, link string) string {
	if img := parser.ExtractFirstImage(descriptionHTML); img != "" {
		return img
	}
	return r.FetchPageImage(ctx, link)
}

// FetchPageImage 는 link 페이지를 받아 대표 이미지를 찾는다.
func (r *Resolver) FetchPageImage(ctx context.Context, link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	if img := r.fromHTTP(ctx, link); img != "" {
		return img
	}
	if r.renderer == nil {
		return ""
	}

	rendered, err := r.renderer.RenderHTML(ctx, link)
	if err != nil {
		logger.Log.Debugf("render fallback failed for %s: %v", link, err)
		return ""
	}
	img, err := parser.ParseTopImageFromHTML(rendered, link)
	if err != nil {
		return ""
	}
	return img
}

func (r *Resolver) fromHTTP(ctx context.Context, link string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", httpclient.BrowserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		logger.Log.Debugf("thumbnail page fetch failed for %s: %v", link, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return ""
	}

	img, err := parser.ParseTopImageFromHTML(string(body), link)
	if err != nil {
		return ""
	}
	return img
}
