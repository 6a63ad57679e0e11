package sitemap

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"time"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type ChangeFreq string

const (
	Daily   ChangeFreq = "daily"
	Weekly  ChangeFreq = "weekly"
	Monthly ChangeFreq = "monthly"
)

// URL 은 <url> 엔트리 하나다.
type URL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod"`
	ChangeFreq ChangeFreq `xml:"changefreq"`
	Priority   string     `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

type staticPage struct {
	path     string
	priority string
	freq     ChangeFreq
}

var staticPages = []staticPage{
	{"", "1.0", Weekly},
	{"/solutions", "0.9", Monthly},
	{"/pricing", "0.9", Monthly},
	{"/calculator", "0.8", Monthly},
	{"/blog", "0.8", Daily},
}

// Post 는 사이트맵에 들어갈 블로그 글 정보다.
type Post struct {
	ID          int64
	PublishedAt time.Time
}

// Builder 는 정적 페이지 뒤에 블로그 글을 순서대로 붙인다.
type Builder struct {
	siteURL string
	urls    []URL
}

// NewBuilder 는 정적 페이지 엔트리로 시작하는 Builder 를 만든다. lastmod 는 now 다.
func NewBuilder(siteURL string, now time.Time) *Builder {
	b := &Builder{siteURL: siteURL}
	lastMod := formatTime(now)
	for _, p := range staticPages {
		b.urls = append(b.urls, URL{
			Loc:        siteURL + p.path,
			LastMod:    lastMod,
			ChangeFreq: p.freq,
			Priority:   p.priority,
		})
	}
	return b
}

func (b *Builder) AddPosts(posts []Post) {
	for _, p := range posts {
		b.urls = append(b.urls, URL{
			Loc:        b.siteURL + "/blog/" + strconv.FormatInt(p.ID, 10),
			LastMod:    formatTime(p.PublishedAt),
			ChangeFreq: Monthly,
			Priority:   "0.7",
		})
	}
}

func (b *Builder) URLs() []URL {
	return b.urls
}

// XML 은 sitemaps.org 0.9 문서를 만든다.
func (b *Builder) XML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(urlSet{Xmlns: xmlns, URLs: b.urls}); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
