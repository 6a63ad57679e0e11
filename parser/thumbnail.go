package parser

import (
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// ParseTopImageFromHTML 은 페이지 HTML 에서 대표 이미지를 찾는다.
// 우선순위: Open Graph → Twitter 카드 → 기타 이미지 메타 → readability → <link rel="image_src">.
// 찾지 못하면 빈 문자열을 반환한다.
func ParseTopImageFromHTML(htmlStr string, pageURL string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return "", err
	}

	var baseURL *url.URL
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil {
			baseURL = u
		}
	}

	if imgURL := findTopImageFromMeta(doc); imgURL != "" {
		return resolveImageURL(imgURL, baseURL), nil
	}

	if imgURL := findTopImageWithReadability(doc, baseURL); imgURL != "" {
		return resolveImageURL(imgURL, baseURL), nil
	}

	if imgURL := findTopImageFromLink(doc); imgURL != "" {
		return resolveImageURL(imgURL, baseURL), nil
	}

	return "", nil
}

func findTopImageWithReadability(doc *html.Node, baseURL *url.URL) string {
	if doc == nil {
		return ""
	}

	article, err := readability.FromDocument(doc, baseURL)
	if err != nil {
		return ""
	}
	return article.Image
}

func findTopImageFromMeta(doc *html.Node) string {
	if url := findMetaContent(doc, "property", []string{
		"og:image",
		"og:image:url",
		"og:image:secure_url",
	}); url != "" {
		return url
	}

	// 일부 블로그는 twitter 카드를 property 로 선언한다.
	if url := findMetaContent(doc, "name", []string{
		"twitter:image",
		"twitter:image:src",
	}); url != "" {
		return url
	}
	if url := findMetaContent(doc, "property", []string{
		"twitter:image",
		"twitter:image:src",
	}); url != "" {
		return url
	}

	if url := findMetaContent(doc, "name", []string{
		"thumbnail",
		"image",
	}); url != "" {
		return url
	}

	return findMetaContent(doc, "itemprop", []string{"image"})
}

// findMetaContent 는 key 속성 값이 candidates 중 하나인 첫 <meta> 의 content 를 반환한다.
// candidates 순서가 아니라 문서 순서로 먼저 나온 meta 가 이긴다.
func findMetaContent(root *html.Node, key string, candidates []string) string {
	candidateSet := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		candidateSet[strings.ToLower(c)] = struct{}{}
	}

	var result string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil || result != "" {
			return
		}

		if n.Type == html.ElementNode && n.Data == "meta" {
			var attrValue, content string
			for _, a := range n.Attr {
				keyLower := strings.ToLower(a.Key)
				if keyLower == strings.ToLower(key) {
					attrValue = strings.ToLower(strings.TrimSpace(a.Val))
				} else if keyLower == "content" {
					content = strings.TrimSpace(a.Val)
				}
			}

			if content != "" && attrValue != "" {
				if _, ok := candidateSet[attrValue]; ok {
					result = content
					return
				}
			}
		}

		for c := n.FirstChild; c != nil && result == ""; c = c.NextSibling {
			walk(c)
		}
	}

	walk(root)
	return result
}

func findTopImageFromLink(doc *html.Node) string {
	var result string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil || result != "" {
			return
		}

		if n.Type == html.ElementNode && n.Data == "link" {
			var rel, href string
			for _, a := range n.Attr {
				switch strings.ToLower(a.Key) {
				case "rel":
					rel = strings.ToLower(a.Val)
				case "href":
					href = a.Val
				}
			}

			if href != "" && (rel == "image_src" || strings.Contains(rel, "thumbnail")) {
				result = href
				return
			}
		}

		for c := n.FirstChild; c != nil && result == ""; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return result
}

func makeAbsoluteImageURL(src string, baseURL *url.URL) (string, bool) {
	if src == "" {
		return "", false
	}

	parsed, err := url.Parse(src)
	if err != nil {
		return "", false
	}

	if parsed.IsAbs() {
		return parsed.String(), true
	}

	if baseURL == nil {
		return "", false
	}

	return baseURL.ResolveReference(parsed).String(), true
}

func resolveImageURL(src string, baseURL *url.URL) string {
	if abs, ok := makeAbsoluteImageURL(src, baseURL); ok {
		return abs
	}
	return src
}
