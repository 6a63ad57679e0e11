package httpclient

import (
	"net/http"
	"time"

	"careconnect/internal/logger"
	"careconnect/internal/trace"
)

// BrowserUserAgent 는 외부 블로그 페이지를 긁을 때 쓰는 브라우저 유사 UA 이다.
// 네이버 블로그는 기본 Go UA 에 모바일/차단 페이지를 내려주는 경우가 있다.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Config 는 아웃바운드 HTTP 클라이언트 공통 설정이다.
type Config struct {
	Timeout time.Duration
	// UserAgent 가 비어 있지 않으면 요청에 User-Agent 헤더가 없을 때 채워 넣는다.
	UserAgent string
}

// loggingRoundTripper 는 모든 아웃바운드 호출에 X-Request-Id/X-Span-Id 를 붙이고 결과를 로깅한다.
type loggingRoundTripper struct {
	inner     http.RoundTripper
	userAgent string
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	requestID, spanID := trace.NextSpanID(req.Context())

	// RoundTripper 는 원본 요청을 변경하면 안 되므로 헤더를 복제한다.
	req = req.Clone(req.Context())
	req.Header.Set(trace.HeaderRequestID, requestID)
	req.Header.Set(trace.HeaderSpanID, spanID)
	if l.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.inner.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		logger.ErrorWithFields("httpclient request failed", logger.Fields{
			"method":     req.Method,
			"url":        req.URL.String(),
			"duration":   duration.String(),
			"request_id": requestID,
			"span_id":    spanID,
			"error":      err.Error(),
		})
		return nil, err
	}

	logger.DebugWithFields("httpclient request success", logger.Fields{
		"method":     req.Method,
		"url":        req.URL.String(),
		"status":     resp.StatusCode,
		"duration":   duration.String(),
		"request_id": requestID,
		"span_id":    spanID,
	})
	return resp, nil
}

// New 는 주어진 설정으로 http.Client 를 만든다. Timeout 이 0 이면 10초를 쓴다.
func New(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingRoundTripper{inner: http.DefaultTransport, userAgent: cfg.UserAgent},
	}
}

// NewDefault 는 기본 설정(Timeout 10초)의 http.Client 를 만든다.
func NewDefault() *http.Client {
	return New(Config{})
}
