package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"careconnect/eventbus"
	"careconnect/events"
	"careconnect/feeder"
	"careconnect/internal/logger"
	"careconnect/models"
	"careconnect/parser"
	"careconnect/posts"
	"careconnect/summarizer"
)

// FeedStateStore 는 repositories.FeedStateRepository 다.
type FeedStateStore interface {
	Get(ctx context.Context, feedURL string) (*models.FeedState, error)
	Touch(ctx context.Context, feedURL string) error
	SetLastPostID(ctx context.Context, feedURL string, postID int64) error
}

// PostStore 는 repositories.PostRepository 다.
type PostStore interface {
	UpsertByPostID(ctx context.Context, p *models.Post) (*mongo.UpdateResult, error)
	UpdateAISummary(ctx context.Context, postID int64, summary models.AISummary) error
	SetAnnounced(ctx context.Context, postID int64) error
	FindUnclassified(ctx context.Context, limit int64) ([]models.Post, error)
	FindUnannounced(ctx context.Context, limit int64) ([]models.Post, error)
}

type AILogStore interface {
	Insert(ctx context.Context, log models.AILog) (*mongo.InsertOneResult, error)
}

// Classifier 는 summarizer.Summarizer 다.
type Classifier interface {
	Summarize(ctx context.Context, title, text string) (*summarizer.Result, *summarizer.RequestLog, error)
}

// ArticleRenderer 는 글 페이지의 최종 HTML 을 돌려준다. (renderer.Renderer)
type ArticleRenderer interface {
	RenderHTML(ctx context.Context, url string) (string, error)
}

type ThumbnailResolver interface {
	Resolve(ctx context.Context, descriptionHTML, link string) string
}

type Publisher interface {
	Publish(ctx context.Context, topic string, event eventbus.Event) error
}

// WatchOptions 의 Backlog 는 한 번 실행에 추가로 분류하거나 다시 알릴 글 수다.
type WatchOptions struct {
	RSSURL    string
	UserAgent string
	Backlog   int64
}

type WatchService struct {
	client     *http.Client
	opts       WatchOptions
	states     FeedStateStore
	posts      PostStore
	thumbs     ThumbnailResolver
	classifier Classifier
	aiLogs     AILogStore
	articles   ArticleRenderer
	publisher  Publisher
	normalizer *posts.Normalizer
}

// NewWatchService 에서 thumbs, classifier, aiLogs, articles, publisher 는 nil 이어도 된다.
func NewWatchService(client *http.Client, opts WatchOptions, states FeedStateStore, postStore PostStore) *WatchService {
	if opts.Backlog < 0 {
		opts.Backlog = 0
	}
	return &WatchService{
		client:     client,
		opts:       opts,
		states:     states,
		posts:      postStore,
		normalizer: posts.NewNormalizer(),
	}
}

func (s *WatchService) WithThumbnails(t ThumbnailResolver) *WatchService {
	s.thumbs = t
	return s
}

func (s *WatchService) WithPublisher(p Publisher) *WatchService {
	s.publisher = p
	return s
}

func (s *WatchService) WithArticles(a ArticleRenderer) *WatchService {
	s.articles = a
	return s
}

func (s *WatchService) WithClassifier(c Classifier, logs AILogStore) *WatchService {
	s.classifier = c
	s.aiLogs = logs
	return s
}

// Report 는 한 번 실행한 결과 요약이다.
type Report struct {
	Fetched    int
	New        int
	Announced  int
	Classified int
	LastPostID int64
}

type candidate struct {
	post posts.Post
	item feeder.RssFeedItem
}

// RunOnce 는 피드를 한 번 확인하고 새 글을 저장/분류/알린다.
func (s *WatchService) RunOnce(ctx context.Context) (Report, error) {
	var report Report

	items, err := feeder.FetchRssFeeds(ctx, s.client, s.opts.RSSURL, s.opts.UserAgent, 0)
	if err != nil {
		return report, fmt.Errorf("fetch feed: %w", err)
	}
	report.Fetched = len(items)

	// 링크에 글 번호가 없는 아이템은 매번 임의 ID 를 받으므로 추적하지 않는다.
	var list []candidate
	for _, item := range items {
		p := s.normalizer.Normalize(item, "")
		if p.Slug == "" || p.ID == 0 {
			logger.WarnWithFields("skip feed item without post number", logger.Fields{"link": item.Link})
			continue
		}
		list = append(list, candidate{post: p, item: item})
	}

	state, err := s.states.Get(ctx, s.opts.RSSURL)
	if err != nil {
		return report, fmt.Errorf("load feed state: %w", err)
	}

	if len(list) == 0 {
		return report, s.states.Touch(ctx, s.opts.RSSURL)
	}

	// 지난 실행에서 발행에 실패한 글을 먼저 다시 알린다.
	report.Announced += s.retryAnnouncements(ctx)

	sort.Slice(list, func(i, j int) bool { return list[i].post.ID < list[j].post.ID })
	newest := list[len(list)-1].post.ID
	report.LastPostID = newest

	if state != nil && state.LastPostID >= newest {
		logger.InfoWithFields("no new posts", logger.Fields{"rss_url": s.opts.RSSURL, "last_post_id": state.LastPostID})
		if err := s.states.Touch(ctx, s.opts.RSSURL); err != nil {
			return report, err
		}
		report.Classified = s.classifyBacklog(ctx)
		return report, nil
	}

	var lastSeen int64
	bootstrap := state == nil
	if !bootstrap {
		lastSeen = state.LastPostID
	}

	// saved 는 실패 없이 저장된 구간의 마지막 글 번호다.
	// 저장에 실패한 글 이후로는 상태를 옮기지 않아 다음 실행에서 다시 시도한다.
	saved := lastSeen
	var storeErr error
	quotaOut := false
	for _, c := range list {
		if c.post.ID <= lastSeen {
			continue
		}
		// 첫 실행에서는 기존 글을 모두 저장하되 가장 최신 글만 알린다.
		silent := bootstrap && c.post.ID != newest
		inserted, err := s.store(ctx, &c, silent)
		if err != nil {
			logger.ErrorWithFields("post upsert failed", logger.Fields{"post_id": c.post.ID, "error": err.Error()})
			if storeErr == nil {
				storeErr = fmt.Errorf("store post %d: %w", c.post.ID, err)
			}
			continue
		}
		if storeErr == nil {
			saved = c.post.ID
		}
		if !inserted {
			continue
		}
		report.New++

		if s.classifier != nil && !quotaOut {
			err := s.classify(ctx, c.post.ID, c.post.Title, s.articleText(ctx, c.post.Link, c.item.Description))
			switch {
			case err == nil:
				report.Classified++
			case errors.Is(err, summarizer.ErrQuotaExhausted):
				quotaOut = true
			}
		}

		if silent {
			continue
		}
		if s.announce(ctx, c.post) {
			report.Announced++
		}
	}

	report.LastPostID = saved
	if saved > lastSeen {
		if err := s.states.SetLastPostID(ctx, s.opts.RSSURL, saved); err != nil {
			return report, fmt.Errorf("save feed state: %w", err)
		}
	}

	if !quotaOut {
		report.Classified += s.classifyBacklog(ctx)
	}

	logger.InfoWithFields("feed checked", logger.Fields{
		"rss_url":      s.opts.RSSURL,
		"fetched":      report.Fetched,
		"new":          report.New,
		"announced":    report.Announced,
		"classified":   report.Classified,
		"last_post_id": saved,
	})
	return report, storeErr
}

// store 는 썸네일을 채워 글을 upsert 하고 새로 들어간 문서인지 반환한다.
// silent 이면 알림 대상이 아닌 글로 저장한다.
func (s *WatchService) store(ctx context.Context, c *candidate, silent bool) (bool, error) {
	if s.thumbs != nil {
		c.post.Thumbnail = s.thumbs.Resolve(ctx, c.item.Description, c.post.Link)
	}
	res, err := s.posts.UpsertByPostID(ctx, &models.Post{
		PostID:       c.post.ID,
		Slug:         c.post.Slug,
		Title:        c.post.Title,
		Link:         c.post.Link,
		Category:     c.post.Category,
		Author:       c.post.Author,
		PublishedAt:  c.post.PublishedAt,
		ThumbnailURL: c.post.Thumbnail,
		Status:       models.StatusFlags{Announced: silent},
	})
	if err != nil {
		return false, err
	}
	return res != nil && res.UpsertedCount > 0, nil
}

// articleText 는 렌더러가 있으면 글 페이지 본문을, 없거나 실패하면 RSS 설명을 텍스트로 돌려준다.
func (s *WatchService) articleText(ctx context.Context, link, descriptionHTML string) string {
	if s.articles != nil && link != "" {
		html, err := s.articles.RenderHTML(ctx, link)
		if err == nil {
			if text, err := parser.ExtractPlainText(html); err == nil {
				return text
			}
		} else {
			logger.WarnWithFields("article render failed", logger.Fields{"link": link, "error": err.Error()})
		}
	}
	return parser.StripHTML(descriptionHTML)
}

// classify 는 분류 결과를 저장한다. 일일 한도가 소진됐으면 summarizer.ErrQuotaExhausted 를 반환한다.
// 그 밖의 실패는 로그를 남긴 뒤 에러로 돌려준다.
func (s *WatchService) classify(ctx context.Context, postID int64, title, text string) error {
	if strings.TrimSpace(text) == "" {
		text = title
	}

	requestedAt := time.Now()
	result, reqLog, err := s.classifier.Summarize(ctx, title, text)
	s.logAICall(ctx, postID, requestedAt, reqLog, err)
	if err != nil {
		if !errors.Is(err, summarizer.ErrQuotaExhausted) {
			logger.ErrorWithFields("post classification failed", logger.Fields{"post_id": postID, "error": err.Error()})
		}
		return err
	}

	summary := models.AISummary{
		Categories:  result.Categories,
		Tags:        result.Tags,
		Summary:     result.Summary,
		GeneratedAt: time.Now(),
	}
	if reqLog != nil {
		summary.ModelName = reqLog.ModelName
		summary.GeneratedAt = reqLog.GeneratedAt
	}
	// 봇 체크 페이지 등 읽을 수 없는 글도 분류된 것으로 표시해 재시도하지 않는다.
	if result.Error != nil {
		logger.WarnWithFields("post not classifiable", logger.Fields{"post_id": postID, "reason": *result.Error})
		summary.Tags = []string{}
	}

	if err := s.posts.UpdateAISummary(ctx, postID, summary); err != nil {
		logger.ErrorWithFields("ai summary update failed", logger.Fields{"post_id": postID, "error": err.Error()})
		return err
	}
	return nil
}

func (s *WatchService) logAICall(ctx context.Context, postID int64, requestedAt time.Time, reqLog *summarizer.RequestLog, callErr error) {
	if s.aiLogs == nil || (reqLog == nil && callErr == nil) {
		return
	}
	if errors.Is(callErr, summarizer.ErrQuotaExhausted) {
		return
	}
	entry := models.AILog{
		PostID:      postID,
		RequestedAt: requestedAt,
		CompletedAt: time.Now(),
	}
	if reqLog != nil {
		entry.ModelName = reqLog.ModelName
		entry.ModelVersion = reqLog.ModelVersion
		entry.InputTokens = reqLog.InputTokens
		entry.OutputTokens = reqLog.OutputTokens
		entry.TotalTokens = reqLog.TotalTokens
		entry.DurationMs = reqLog.LatencyMs
		entry.OutputResponse = reqLog.Response
		entry.CompletedAt = reqLog.GeneratedAt
	}
	if callErr != nil {
		msg := callErr.Error()
		entry.ErrorMessage = &msg
	}
	if _, err := s.aiLogs.Insert(ctx, entry); err != nil {
		logger.WarnWithFields("ai log insert failed", logger.Fields{"post_id": postID, "error": err.Error()})
	}
}

// classifyBacklog 는 이전 실행에서 분류하지 못한 글을 Backlog 개까지 다시 분류한다.
// 일일 한도가 소진되면 멈춘다.
func (s *WatchService) classifyBacklog(ctx context.Context) int {
	if s.classifier == nil || s.opts.Backlog == 0 {
		return 0
	}
	pending, err := s.posts.FindUnclassified(ctx, s.opts.Backlog)
	if err != nil {
		logger.ErrorWithFields("load unclassified posts failed", logger.Fields{"error": err.Error()})
		return 0
	}

	done := 0
	for _, p := range pending {
		if ctx.Err() != nil {
			break
		}
		err := s.classify(ctx, p.PostID, p.Title, s.articleText(ctx, p.Link, ""))
		if err == nil {
			done++
			continue
		}
		if errors.Is(err, summarizer.ErrQuotaExhausted) {
			logger.InfoWithFields("summary quota exhausted, backlog deferred", logger.Fields{"remaining": len(pending) - done})
			break
		}
	}
	return done
}

// retryAnnouncements 는 announced 가 false 로 남은 글을 오래된 순으로 Backlog 개까지 다시 알린다.
// 발행이 한 번이라도 실패하면 다음 실행으로 미룬다.
func (s *WatchService) retryAnnouncements(ctx context.Context) int {
	if s.publisher == nil || s.opts.Backlog == 0 {
		return 0
	}
	pending, err := s.posts.FindUnannounced(ctx, s.opts.Backlog)
	if err != nil {
		logger.ErrorWithFields("load unannounced posts failed", logger.Fields{"error": err.Error()})
		return 0
	}

	done := 0
	for _, p := range pending {
		ok := s.announce(ctx, posts.Post{
			ID:          p.PostID,
			Slug:        p.Slug,
			Title:       p.Title,
			Link:        p.Link,
			Thumbnail:   p.ThumbnailURL,
			PublishedAt: p.PublishedAt,
		})
		if !ok {
			break
		}
		done++
	}
	return done
}

// announce 는 post.published 를 발행하고 성공하면 announced 로 표시한다.
func (s *WatchService) announce(ctx context.Context, p posts.Post) bool {
	if s.publisher == nil {
		return false
	}
	evt := events.PostPublishedEvent{
		BaseEvent:    events.NewBaseEvent(events.PostPublished, "watcher"),
		PostID:       p.ID,
		Title:        p.Title,
		Link:         p.Link,
		ThumbnailURL: p.Thumbnail,
		PublishedAt:  p.PublishedAt,
	}
	busEvt, err := eventbus.NewJSONEvent(fmt.Sprintf("post-%d", p.ID), string(events.PostPublished), evt, 0)
	if err != nil {
		logger.ErrorWithFields("post event encode failed", logger.Fields{"post_id": p.ID, "error": err.Error()})
		return false
	}
	if err := s.publisher.Publish(ctx, eventbus.TopicSiteEvents.Base(), busEvt); err != nil {
		logger.ErrorWithFields("post event publish failed", logger.Fields{"post_id": p.ID, "error": err.Error()})
		return false
	}
	if err := s.posts.SetAnnounced(ctx, p.ID); err != nil {
		logger.WarnWithFields("set announced failed", logger.Fields{"post_id": p.ID, "error": err.Error()})
	}
	return true
}
