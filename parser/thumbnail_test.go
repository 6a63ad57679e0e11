package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careconnect/parser"
)

func TestParseTopImageFromHTML(t *testing.T) {
	testCases := []struct {
		name    string
		html    string
		pageURL string
		want    string
	}{
		{
			name: "og image",
			html: `<html><head>
				<meta name="twitter:image" content="https://x/twitter.png">
				<meta property="og:image" content="https://x/og.png">
			</head><body></body></html>`,
			want: "https://x/og.png",
		},
		{
			name: "twitter image when og missing",
			html: `<html><head><meta name="twitter:image" content="https://x/twitter.png"></head></html>`,
			want: "https://x/twitter.png",
		},
		{
			name:    "relative og image resolved against page",
			html:    `<html><head><meta property="og:image" content="/img/cover.jpg"></head></html>`,
			pageURL: "https://blog.naver.com/meditravelconnect/1",
			want:    "https://blog.naver.com/img/cover.jpg",
		},
		{
			name: "link image_src",
			html: `<html><head><link rel="image_src" href="https://x/link.png"></head><body></body></html>`,
			want: "https://x/link.png",
		},
		{
			name: "nothing",
			html: `<html><head><title>t</title></head><body><p>text</p></body></html>`,
			want: "",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := parser.ParseTopImageFromHTML(testCase.html, testCase.pageURL)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}
