package services

import (
	"context"
	"time"

	"careconnect/cmd/api/dto"
	"careconnect/internal/logger"
	"careconnect/sitemap"
)

// PostLister 는 사이트맵이 글 목록을 페이지 단위로 읽어오는 출처다. (PostService)
type PostLister interface {
	List(ctx context.Context, page, limit int) (dto.PostPageDTO, error)
}

type SitemapService struct {
	siteURL  string
	posts    PostLister
	pageSize int
	now      func() time.Time
}

func NewSitemapService(siteURL string, posts PostLister, pageSize int) *SitemapService {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &SitemapService{siteURL: siteURL, posts: posts, pageSize: pageSize, now: time.Now}
}

// Generate 는 정적 페이지와 블로그 글로 sitemap XML 을 만든다.
// 글 목록 조회가 실패하면 로그만 남기고 그때까지 모은 엔트리로 응답한다.
func (s *SitemapService) Generate(ctx context.Context) ([]byte, error) {
	b := sitemap.NewBuilder(s.siteURL, s.now())

	for page := 1; ; page++ {
		res, err := s.posts.List(ctx, page, s.pageSize)
		if err != nil {
			logger.ErrorWithFields("sitemap blog posts fetch failed", logger.Fields{
				"page":  page,
				"error": err.Error(),
			})
			break
		}

		entries := make([]sitemap.Post, 0, len(res.Posts))
		for _, p := range res.Posts {
			published, perr := time.Parse(time.RFC3339, p.PublishedAt)
			if perr != nil {
				published = s.now()
			}
			entries = append(entries, sitemap.Post{ID: p.ID, PublishedAt: published})
		}
		b.AddPosts(entries)

		if res.CurrentPage >= res.TotalPages || len(res.Posts) == 0 {
			break
		}
	}

	return b.XML()
}
