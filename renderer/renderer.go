package renderer

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"careconnect/internal/httpclient"
)

const renderTimeout = 30 * time.Second

// Renderer 는 headless chrome 으로 페이지를 렌더링한 뒤 최종 HTML 을 돌려준다.
// 네이버 블로그 본문은 iframe(mainFrame) 안에서 스크립트로 그려지기 때문에
// 단순 GET 으로는 OG 메타나 본문을 얻지 못하는 경우가 있다.
type Renderer struct {
	chromePath string
}

func New(chromePath string) *Renderer {
	if chromePath == "" {
		chromePath = "/usr/bin/chromium-browser" // Docker/Linux 기본
	}
	return &Renderer{chromePath: chromePath}
}

func (r *Renderer) RenderHTML(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(r.chromePath),
		chromedp.UserAgent(httpclient.BrowserUserAgent),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-crashpad", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	browserCtx, cancel = context.WithTimeout(browserCtx, renderTimeout)
	defer cancel()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		return "", err
	}
	return htmlContent, nil
}
