package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"careconnect/cmd/api/dto"
	"careconnect/cmd/api/services"
	"careconnect/internal/logger"
)

const (
	postsCacheControl   = "public, s-maxage=1800, stale-while-revalidate=3600"
	sitemapCacheControl = "public, s-maxage=3600, stale-while-revalidate=86400"

	postsFailureMessage = "Failed to load posts from Naver RSS"
	sitemapFailure      = "Error generating sitemap"
)

// ParseIntOr 는 정수로 해석되지 않는 값에 대해 def 를 반환한다.
func ParseIntOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}

// ListPostsHandler godoc
// @Summary      블로그 글 목록
// @Description  네이버 블로그 RSS 를 정규화해 최신순으로 페이지 단위로 반환합니다. limit 은 1~50 으로 보정됩니다.
// @Tags         posts
// @Param        page   query  int  false  "페이지 번호 (기본 1)"
// @Param        limit  query  int  false  "페이지 크기 (기본 12, 최대 50)"
// @Produce      json
// @Success      200  {object}  dto.PostPageDTO
// @Failure      500  {object}  dto.MessageResponseDTO
// @Router       /posts [get]
func ListPostsHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := ParseIntOr(c.Query("page"), 1)
		limit := ParseIntOr(c.Query("limit"), 12)

		resp, err := svc.List(c.Request.Context(), page, limit)
		if err != nil {
			logger.ErrorWithFields("list posts failed", logger.Fields{
				"error":      err.Error(),
				"request_id": c.Request.Header.Get("X-Request-Id"),
			})
			c.JSON(http.StatusInternalServerError, dto.MessageResponseDTO{Message: postsFailureMessage})
			return
		}
		c.Header("Cache-Control", postsCacheControl)
		c.JSON(http.StatusOK, resp)
	}
}

// GetPostHandler godoc
// @Summary      블로그 글 단건 조회
// @Description  블로그 글 번호(logNo)로 글 하나를 조회합니다.
// @Tags         posts
// @Param        id   path  int  true  "글 번호"
// @Produce      json
// @Success      200  {object}  dto.BlogPostDTO
// @Failure      404  {object}  dto.MessageResponseDTO
// @Failure      500  {object}  dto.MessageResponseDTO
// @Router       /posts/{id} [get]
func GetPostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusNotFound, dto.MessageResponseDTO{Message: "Post not found"})
			return
		}
		post, err := svc.GetByID(c.Request.Context(), id)
		writePost(c, post, err)
	}
}

// GetPostBySlugHandler godoc
// @Summary      블로그 글 slug 조회
// @Tags         posts
// @Param        slug  path  string  true  "원문 링크의 마지막 경로 조각"
// @Produce      json
// @Success      200  {object}  dto.BlogPostDTO
// @Failure      404  {object}  dto.MessageResponseDTO
// @Failure      500  {object}  dto.MessageResponseDTO
// @Router       /posts/slug/{slug} [get]
func GetPostBySlugHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		writePost(c, post, err)
	}
}

func writePost(c *gin.Context, post *dto.BlogPostDTO, err error) {
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, dto.MessageResponseDTO{Message: "Post not found"})
			return
		}
		logger.ErrorWithFields("get post failed", logger.Fields{
			"error":      err.Error(),
			"request_id": c.Request.Header.Get("X-Request-Id"),
		})
		c.JSON(http.StatusInternalServerError, dto.MessageResponseDTO{Message: postsFailureMessage})
		return
	}
	c.Header("Cache-Control", postsCacheControl)
	c.JSON(http.StatusOK, post)
}

// SitemapGenerator 는 services.SitemapService 다.
type SitemapGenerator interface {
	Generate(ctx context.Context) ([]byte, error)
}

// SitemapHandler godoc
// @Summary      sitemap.xml
// @Description  정적 페이지와 블로그 글 URL 을 담은 sitemaps.org 0.9 문서를 반환합니다.
// @Tags         sitemap
// @Produce      xml
// @Success      200  {string}  string  "sitemap XML"
// @Failure      500  {object}  dto.MessageResponseDTO
// @Router       /sitemap.xml [get]
func SitemapHandler(svc SitemapGenerator) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := svc.Generate(c.Request.Context())
		if err != nil {
			logger.ErrorWithFields("sitemap generation failed", logger.Fields{
				"error":      err.Error(),
				"request_id": c.Request.Header.Get("X-Request-Id"),
			})
			c.JSON(http.StatusInternalServerError, dto.MessageResponseDTO{Message: sitemapFailure})
			return
		}
		c.Header("Cache-Control", sitemapCacheControl)
		c.Data(http.StatusOK, "application/xml", body)
	}
}

// MethodNotAllowedHandler 는 등록되지 않은 메서드 요청에 405 를 응답한다.
func MethodNotAllowedHandler(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, dto.MessageResponseDTO{Message: "Method not allowed"})
}

// Pinger 는 헬스체크 대상이다. (*mongo.Client)
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc 는 함수를 Pinger 로 쓴다.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler godoc
// @Summary      헬스체크
// @Description  MongoDB 가 설정되어 있으면 ping 결과를 함께 확인합니다.
// @Tags         health
// @Produce      json
// @Success      200  {object}  object{status=string}
// @Failure      503  {object}  object{status=string,mongo=string,error=string}
// @Router       /health [get]
func HealthHandler(mongo Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if mongo != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := mongo.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
