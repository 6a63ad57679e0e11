package posts

import (
	"math/rand/v2"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"careconnect/feeder"
	"careconnect/parser"
)

const (
	DefaultAuthor   = "CareConnect AI"
	DefaultTitle    = "제목 없음"
	DefaultCategory = "naver"

	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 50

	// 링크에서 글 번호를 찾지 못했을 때 쓰는 임의 ID 의 상한(미포함)
	randomIDBound = 1_000_000
)

// Post 는 RSS 아이템을 사이트 블로그 글 형태로 정규화한 결과다.
type Post struct {
	ID          int64
	Slug        string
	Title       string
	Excerpt     string
	Thumbnail   string
	Author      string
	PublishedAt time.Time
	ReadingTime int
	Category    string
	Link        string
	Tags        []string
}

// PostIDFromLink 는 링크 마지막 경로 조각의 숫자만 모은 문자열과 그 값을 반환한다.
// 숫자가 없거나 0 이면 id 는 0 이다.
// 예: https://blog.naver.com/meditravelconnect/223456789012?fromRss=true -> "223456789012"
func PostIDFromLink(link string) (string, int64) {
	p := link
	if u, err := url.Parse(link); err == nil && u.Path != "" {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}

	var b strings.Builder
	for _, r := range p {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return "", 0
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return digits, 0
	}
	return digits, id
}

// Normalizer 는 RssFeedItem 을 Post 로 바꾼다. now, randID 는 테스트에서 바꿔 끼운다.
type Normalizer struct {
	Now    func() time.Time
	RandID func() int64
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		Now:    time.Now,
		RandID: func() int64 { return rand.Int64N(randomIDBound) },
	}
}

// Normalize 는 thumbnail 을 이미 결정된 값으로 받는다. (thumbnail.Resolver)
func (n *Normalizer) Normalize(item feeder.RssFeedItem, thumbnail string) Post {
	slug, id := PostIDFromLink(item.Link)
	if id == 0 {
		id = n.RandID()
	}

	text := parser.StripHTML(item.Description)

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = DefaultTitle
	}
	author := strings.TrimSpace(item.Author)
	if author == "" {
		author = DefaultAuthor
	}
	category := DefaultCategory
	if len(item.Categories) > 0 && strings.TrimSpace(item.Categories[0]) != "" {
		category = strings.TrimSpace(item.Categories[0])
	}
	publishedAt := item.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = n.Now()
	}

	return Post{
		ID:          id,
		Slug:        slug,
		Title:       title,
		Excerpt:     parser.Excerpt(text, parser.ExcerptMaxRunes),
		Thumbnail:   thumbnail,
		Author:      author,
		PublishedAt: publishedAt.UTC(),
		ReadingTime: parser.EstimateReadingTime(text),
		Category:    category,
		Link:        item.Link,
		Tags:        []string{},
	}
}

// SortByPublishedDesc 는 최신 글이 앞에 오도록 정렬한다. 같은 시각이면 피드 순서를 유지한다.
func SortByPublishedDesc(list []Post) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].PublishedAt.After(list[j].PublishedAt)
	})
}

// ClampPageParams 는 page >= 1, 1 <= limit <= 50 으로 맞춘다.
func ClampPageParams(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// TotalPages 는 ceil(total/limit) 이며 최소 1 이다.
func TotalPages(total, limit int) int {
	if limit < 1 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

// PageBounds 는 page 에 해당하는 [start, end) 를 total 범위 안으로 잘라 반환한다.
func PageBounds(total, page, limit int) (int, int) {
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return start, end
}
