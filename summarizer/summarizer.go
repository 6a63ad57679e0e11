package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Result 는 블로그 글 분류 결과다.
type Result struct {
	Summary    string   `json:"summary"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
	Error      *string  `json:"error,omitempty"`
}

// RequestLog 는 ai_logs 에 남길 호출 메타데이터다.
type RequestLog struct {
	Response     string
	LatencyMs    int64
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	ModelName    string
	ModelVersion string
	GeneratedAt  time.Time
}

// Categories 는 LLM 이 고를 수 있는 분류 목록이다.
var Categories = []string{
	"병원마케팅", "AI상담", "환자관리", "의료관광", "병원운영", "업계소식", "기타",
}

const systemInstruction = `
You are a content classification assistant for a Korean healthcare marketing blog.
Analyze the provided text and respond with a JSON object with four keys:

1. summary: A concise Korean summary, no more than 150 characters.
2. error: Optional string. If the text is a bot check or otherwise unreadable, describe why. Otherwise null.
3. categories: 1-2 values chosen ONLY from: %s
4. tags: 3-5 short Korean keywords that appear in or are directly implied by the text. No duplicates.

Respond with ONLY the raw JSON object. Do not wrap it in a markdown code block.
`

var ErrNotSummarizable = errors.New("content is not summarizable")

// Summarizer 는 Gemini 로 블로그 글을 요약/분류한다.
type Summarizer struct {
	client *genai.Client
	model  string
	quota  *QuotaLimiter
}

func New(ctx context.Context, apiKey, model string, quota *QuotaLimiter) (*Summarizer, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Summarizer{client: client, model: model, quota: quota}, nil
}

// Summarize 는 쿼터를 확인한 뒤 LLM 을 호출한다.
// 일일 한도가 소진됐으면 (nil, nil, ErrQuotaExhausted) 를 반환한다.
func (s *Summarizer) Summarize(ctx context.Context, title, text string) (*Result, *RequestLog, error) {
	if s.quota != nil {
		ok, err := s.quota.WaitAndReserve(ctx)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, ErrQuotaExhausted
		}
	}

	start := time.Now()
	instruction := fmt.Sprintf(systemInstruction, strings.Join(Categories, ", "))
	resp, err := s.client.Models.GenerateContent(
		ctx,
		s.model,
		genai.Text(title+"\n\n"+text),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		return nil, nil, err
	}

	raw := resp.Text()
	reqLog := &RequestLog{
		Response:     raw,
		LatencyMs:    time.Since(start).Milliseconds(),
		ModelName:    s.model,
		ModelVersion: resp.ModelVersion,
		GeneratedAt:  time.Now(),
	}
	if resp.UsageMetadata != nil {
		reqLog.InputTokens = int64(resp.UsageMetadata.PromptTokenCount)
		reqLog.OutputTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
		reqLog.TotalTokens = int64(resp.UsageMetadata.TotalTokenCount)
	}

	result, err := ParseResult(raw)
	return result, reqLog, err
}

// ParseResult 는 LLM 응답을 Result 로 해석하고 허용 목록 밖의 카테고리와 중복 태그를 걸러낸다.
func ParseResult(raw string) (*Result, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var r Result
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &r); err != nil {
		return nil, fmt.Errorf("invalid llm response: %w", err)
	}
	if r.Error != nil && *r.Error != "" {
		return &r, fmt.Errorf("%w: %s", ErrNotSummarizable, *r.Error)
	}

	allowed := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		allowed[c] = true
	}
	cats := make([]string, 0, len(r.Categories))
	for _, c := range r.Categories {
		if allowed[c] {
			cats = append(cats, c)
		}
	}
	if len(cats) == 0 {
		cats = []string{"기타"}
	}
	r.Categories = cats
	r.Tags = dedupe(r.Tags)
	return &r, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
