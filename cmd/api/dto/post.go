package dto

// BlogPostDTO 는 /api/posts 응답의 글 하나다. 필드 이름은 프론트엔드 BlogPost 타입과 같다.
type BlogPostDTO struct {
	ID          int64    `json:"id" example:"223456789012"`
	Title       string   `json:"title" example:"AI 상담으로 신환 35% 늘리기"`
	Slug        string   `json:"slug" example:"223456789012"`
	Excerpt     string   `json:"excerpt"`
	Content     string   `json:"content"`
	Thumbnail   string   `json:"thumbnail,omitempty" example:"https://blogthumb.pstatic.net/a.jpg"`
	Author      string   `json:"author" example:"CareConnect AI"`
	PublishedAt string   `json:"publishedAt" example:"2025-10-13T00:30:00.000Z"`
	ReadingTime int      `json:"readingTime" example:"3"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category" example:"naver"`
	Featured    bool     `json:"featured"`
	ExternalURL string   `json:"externalUrl" example:"https://blog.naver.com/meditravelconnect/223456789012"`
}

// PostPageDTO 는 페이지 단위 목록 응답이다.
type PostPageDTO struct {
	Posts       []BlogPostDTO `json:"posts"`
	TotalPages  int           `json:"totalPages" example:"3"`
	CurrentPage int           `json:"currentPage" example:"1"`
	TotalPosts  int           `json:"totalPosts" example:"30"`
}
