package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"careconnect/cmd/api/dto"
	"careconnect/feeder"
	"careconnect/internal/logger"
	"careconnect/posts"
)

var ErrPostNotFound = errors.New("post not found")

// ThumbnailResolver 는 글의 썸네일 URL 을 찾는다. 못 찾으면 "" 이다. (thumbnail.Resolver)
type ThumbnailResolver interface {
	Resolve(ctx context.Context, descriptionHTML, link string) string
}

// TagSource 는 워처가 분류해 둔 태그를 글 번호로 조회한다. (repositories.PostRepository)
type TagSource interface {
	TagsByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]string, error)
}

type PostServiceOptions struct {
	RSSURL               string
	UserAgent            string
	ThumbnailConcurrency int
	// CacheTTL 이 0 이면 매 요청마다 피드를 다시 가져온다.
	CacheTTL time.Duration
}

// PostService 는 블로그 RSS 를 정규화된 글 목록으로 제공한다.
//
// 정규화 결과는 CacheTTL 동안 스냅샷으로 보관한다. 같은 스냅샷의 페이지들은 totalPosts 가 같다.
type PostService struct {
	client     *http.Client
	opts       PostServiceOptions
	thumbnails ThumbnailResolver
	tags       TagSource
	normalizer *posts.Normalizer
	now        func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	snapshot  []posts.Post
	fetchedAt time.Time
}

// NewPostService 는 tags 가 nil 이면 태그 보강 없이 동작한다.
func NewPostService(client *http.Client, opts PostServiceOptions, thumbnails ThumbnailResolver, tags TagSource) *PostService {
	if opts.ThumbnailConcurrency <= 0 {
		opts.ThumbnailConcurrency = 8
	}
	if opts.UserAgent == "" {
		opts.UserAgent = feeder.DefaultUserAgent
	}
	return &PostService{
		client:     client,
		opts:       opts,
		thumbnails: thumbnails,
		tags:       tags,
		normalizer: posts.NewNormalizer(),
		now:        time.Now,
	}
}

// List 는 page, limit 를 보정한 뒤 최신순 목록의 해당 페이지를 반환한다.
func (s *PostService) List(ctx context.Context, page, limit int) (dto.PostPageDTO, error) {
	page, limit = posts.ClampPageParams(page, limit)

	all, err := s.Snapshot(ctx)
	if err != nil {
		return dto.PostPageDTO{}, err
	}

	total := len(all)
	start, end := posts.PageBounds(total, page, limit)

	out := make([]dto.BlogPostDTO, 0, end-start)
	for _, p := range all[start:end] {
		out = append(out, mapPost(p))
	}

	return dto.PostPageDTO{
		Posts:       out,
		TotalPages:  posts.TotalPages(total, limit),
		CurrentPage: page,
		TotalPosts:  total,
	}, nil
}

func (s *PostService) GetByID(ctx context.Context, id int64) (*dto.BlogPostDTO, error) {
	all, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if p.ID == id {
			d := mapPost(p)
			return &d, nil
		}
	}
	return nil, ErrPostNotFound
}

func (s *PostService) GetBySlug(ctx context.Context, slug string) (*dto.BlogPostDTO, error) {
	if slug == "" {
		return nil, ErrPostNotFound
	}
	all, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if p.Slug == slug {
			d := mapPost(p)
			return &d, nil
		}
	}
	return nil, ErrPostNotFound
}

// Snapshot 은 정규화/정렬된 전체 글 목록을 반환한다. 반환된 슬라이스는 수정하면 안 된다.
func (s *PostService) Snapshot(ctx context.Context) ([]posts.Post, error) {
	if cached, ok := s.cached(); ok {
		return cached, nil
	}

	// 동시에 들어온 요청은 한 번의 피드 수집을 공유한다.
	v, err, _ := s.group.Do("snapshot", func() (any, error) {
		if cached, ok := s.cached(); ok {
			return cached, nil
		}
		list, err := s.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.snapshot = list
		s.fetchedAt = s.now()
		s.mu.Unlock()
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]posts.Post), nil
}

func (s *PostService) cached() ([]posts.Post, bool) {
	if s.opts.CacheTTL <= 0 {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil || s.now().Sub(s.fetchedAt) >= s.opts.CacheTTL {
		return nil, false
	}
	return s.snapshot, true
}

func (s *PostService) load(ctx context.Context) ([]posts.Post, error) {
	items, err := feeder.FetchRssFeeds(ctx, s.client, s.opts.RSSURL, s.opts.UserAgent, 0)
	if err != nil {
		logger.ErrorWithFields("rss fetch failed", logger.Fields{
			"rss_url": s.opts.RSSURL,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("load posts: %w", err)
	}

	list := make([]posts.Post, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.ThumbnailConcurrency)
	for i, item := range items {
		g.Go(func() error {
			thumb := ""
			if s.thumbnails != nil {
				thumb = s.thumbnails.Resolve(gctx, item.Description, item.Link)
			}
			list[i] = s.normalizer.Normalize(item, thumb)
			return nil
		})
	}
	_ = g.Wait()

	posts.SortByPublishedDesc(list)
	s.enrichTags(ctx, list)

	logger.InfoWithFields("rss snapshot loaded", logger.Fields{
		"rss_url": s.opts.RSSURL,
		"posts":   len(list),
	})
	return list, nil
}

// enrichTags 는 분류된 글에 태그를 채운다. 저장소 오류는 로그만 남긴다.
func (s *PostService) enrichTags(ctx context.Context, list []posts.Post) {
	if s.tags == nil || len(list) == 0 {
		return
	}
	ids := make([]int64, 0, len(list))
	for _, p := range list {
		if p.Slug != "" {
			ids = append(ids, p.ID)
		}
	}
	tags, err := s.tags.TagsByPostIDs(ctx, ids)
	if err != nil {
		logger.WarnWithFields("tag enrichment skipped", logger.Fields{"error": err.Error()})
		return
	}
	for i := range list {
		if t, ok := tags[list[i].ID]; ok {
			list[i].Tags = t
		}
	}
}

func mapPost(p posts.Post) dto.BlogPostDTO {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.BlogPostDTO{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Content:     "",
		Thumbnail:   p.Thumbnail,
		Author:      p.Author,
		PublishedAt: FormatISOTime(p.PublishedAt),
		ReadingTime: p.ReadingTime,
		Tags:        tags,
		Category:    p.Category,
		Featured:    false,
		ExternalURL: p.Link,
	}
}

// FormatISOTime 은 밀리초 정밀도의 UTC ISO-8601 문자열을 만든다. (예: 2025-10-13T00:30:00.000Z)
func FormatISOTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
