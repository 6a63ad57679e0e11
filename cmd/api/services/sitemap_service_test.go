package services

import (
	"context"
	"encoding/xml"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careconnect/cmd/api/dto"
)

type fakeLister struct {
	pages [][]dto.BlogPostDTO
	err   error
	errAt int
	calls []int
}

func (f *fakeLister) List(ctx context.Context, page, limit int) (dto.PostPageDTO, error) {
	f.calls = append(f.calls, page)
	if f.err != nil && page >= f.errAt {
		return dto.PostPageDTO{}, f.err
	}
	return dto.PostPageDTO{
		Posts:       f.pages[page-1],
		TotalPages:  len(f.pages),
		CurrentPage: page,
	}, nil
}

func parseLocs(t *testing.T, out []byte) []string {
	t.Helper()
	var doc struct {
		URLs []struct {
			Loc string `xml:"loc"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(out, &doc))
	locs := make([]string, len(doc.URLs))
	for i, u := range doc.URLs {
		locs[i] = u.Loc
	}
	return locs
}

func TestSitemapServiceWalksAllPages(t *testing.T) {
	lister := &fakeLister{pages: [][]dto.BlogPostDTO{
		{{ID: 3, PublishedAt: "2025-10-03T00:00:00.000Z"}, {ID: 2, PublishedAt: "2025-10-02T00:00:00.000Z"}},
		{{ID: 1, PublishedAt: "2025-10-01T00:00:00.000Z"}},
	}}
	svc := NewSitemapService("https://careconnect-ai.com", lister, 50)
	svc.now = func() time.Time { return time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC) }

	out, err := svc.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, lister.calls)
	assert.Equal(t, []string{
		"https://careconnect-ai.com",
		"https://careconnect-ai.com/solutions",
		"https://careconnect-ai.com/pricing",
		"https://careconnect-ai.com/calculator",
		"https://careconnect-ai.com/blog",
		"https://careconnect-ai.com/blog/3",
		"https://careconnect-ai.com/blog/2",
		"https://careconnect-ai.com/blog/1",
	}, parseLocs(t, out))
	assert.Contains(t, string(out), "<lastmod>2025-10-02T00:00:00.000Z</lastmod>")
}

func TestSitemapServiceKeepsStaticPagesOnError(t *testing.T) {
	lister := &fakeLister{err: errors.New("rss down"), errAt: 1}
	svc := NewSitemapService("https://careconnect-ai.com", lister, 50)

	out, err := svc.Generate(context.Background())
	require.NoError(t, err)

	locs := parseLocs(t, out)
	assert.Len(t, locs, 5)
	for _, l := range locs {
		assert.False(t, strings.Contains(l, "/blog/"))
	}
}

func TestSitemapServiceKeepsEarlierPagesOnLaterError(t *testing.T) {
	lister := &fakeLister{
		pages: [][]dto.BlogPostDTO{{{ID: 9, PublishedAt: "2025-10-09T00:00:00.000Z"}}, {}},
		err:   errors.New("timeout"),
		errAt: 2,
	}
	svc := NewSitemapService("https://example.com", lister, 1)

	out, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Contains(t, parseLocs(t, out), "https://example.com/blog/9")
}
