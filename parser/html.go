package parser

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	ExcerptMaxRunes = 180
	wordsPerMinute  = 220
)

// StripHTML 은 script/style 블록을 제거하고 태그 경계를 공백으로 바꾼 뒤 공백을 하나로 합친다.
func StripHTML(htmlStr string) string {
	if strings.TrimSpace(htmlStr) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return collapseWhitespace(htmlStr)
	}
	doc.Find("script, style, noscript").Remove()

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	return collapseWhitespace(strings.Join(parts, " "))
}

// ExtractFirstImage 는 HTML 조각에서 src 가 있는 첫 번째 <img> 의 src 를 반환한다.
func ExtractFirstImage(htmlStr string) string {
	if !strings.Contains(strings.ToLower(htmlStr), "<img") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	var src string
	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src = strings.TrimSpace(s.AttrOr("src", ""))
		return src == ""
	})
	return src
}

// Excerpt 는 text 가 maxRunes 보다 길면 (maxRunes-3) 글자 + "..." 로 자른다.
func Excerpt(text string, maxRunes int) string {
	rs := []rune(text)
	if maxRunes <= 3 || len(rs) <= maxRunes {
		return text
	}
	return string(rs[:maxRunes-3]) + "..."
}

// EstimateReadingTime 은 분당 220 단어 기준 읽기 시간(분)을 반환한다. 최소 1분.
func EstimateReadingTime(text string) int {
	words := len(strings.Fields(text))
	minutes := int(math.Round(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
