package feeder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"careconnect/internal/logger"
)

// ErrFetchFailed 는 RSS 를 가져오지 못한 경우(네트워크 오류, 200 이외 응답)다.
// 본문 파싱 실패는 에러가 아니라 빈 목록으로 취급한다.
var ErrFetchFailed = errors.New("failed to fetch rss feed")

const DefaultUserAgent = "CareConnectAI/1.0 (+https://careconnect.ai)"

type RssFeedItem struct {
	Title       string
	Link        string
	Description string
	Author      string
	Categories  []string
	GUID        string
	PublishedAt time.Time
}

// FetchRssFeeds 는 rssURL 의 피드를 가져와 파싱한다.
// limit 가 0보다 크면 앞에서부터 limit 개만 반환한다.
func FetchRssFeeds(ctx context.Context, client *http.Client, rssURL string, userAgent string, limit int) ([]RssFeedItem, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rssURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create rss request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodySample, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, fmt.Errorf("%w: status code %d, url: %s, body: %s", ErrFetchFailed, resp.StatusCode, rssURL, string(bodySample))
	}

	cleaned, err := cleanControlCharacters(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	return ParseFeed(cleaned, limit), nil
}

// ParseFeed 는 RSS/Atom 본문을 RssFeedItem 목록으로 변환한다.
// 형식이 깨졌거나 비어 있는 피드는 빈 목록을 반환한다.
func ParseFeed(r io.Reader, limit int) []RssFeedItem {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		logger.Log.Warnf("rss feed is not parseable, treating as empty: %v", err)
		return []RssFeedItem{}
	}

	items := make([]RssFeedItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		items = append(items, RssFeedItem{
			Title:       strings.TrimSpace(item.Title),
			Link:        strings.TrimSpace(item.Link),
			Description: item.Description,
			Author:      authorOf(item),
			Categories:  item.Categories,
			GUID:        item.GUID,
			PublishedAt: published,
		})
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return items
}

func authorOf(item *gofeed.Item) string {
	if item.Author != nil {
		if name := strings.TrimSpace(item.Author.Name); name != "" {
			return name
		}
		if email := strings.TrimSpace(item.Author.Email); email != "" {
			return email
		}
	}
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		return strings.TrimSpace(item.DublinCoreExt.Creator[0])
	}
	return ""
}

// XML 에서 허용되지 않는 제어 문자 (탭, LF, CR 제외)
var invalidControlCharRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)

func cleanControlCharacters(r io.Reader) (io.Reader, error) {
	bodyBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read body for cleaning: %w", err)
	}

	return bytes.NewReader(invalidControlCharRegex.ReplaceAll(bodyBytes, nil)), nil
}
