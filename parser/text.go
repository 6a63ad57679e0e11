package parser

import (
	"errors"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var ErrNoText = errors.New("no article text found")

// ExtractPlainText 는 렌더링된 글 페이지에서 본문 텍스트를 뽑는다.
// readability 가 본문을 찾지 못하면 trafilatura 로 한 번 더 시도한다.
func ExtractPlainText(htmlStr string) (string, error) {
	text, rerr := ParseHtmlWithReadability(htmlStr)
	if rerr == nil && strings.TrimSpace(text) != "" {
		return collapseWhitespace(text), nil
	}

	text, terr := ParseHtmlWithTrafilatura(htmlStr)
	if terr == nil && strings.TrimSpace(text) != "" {
		return collapseWhitespace(text), nil
	}

	return "", errors.Join(ErrNoText, rerr, terr)
}

func ParseHtmlWithReadability(htmlStr string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return "", err
	}

	article, err := readability.FromDocument(doc, nil)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

func ParseHtmlWithTrafilatura(htmlStr string) (string, error) {
	article, err := trafilatura.Extract(strings.NewReader(htmlStr), trafilatura.Options{})
	if err != nil {
		return "", err
	}
	if article == nil {
		return "", ErrNoText
	}
	return article.ContentText, nil
}
