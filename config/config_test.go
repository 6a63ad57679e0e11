package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load([]byte("feed:\n  blog_id: clinicblog\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "https://careconnect-ai.com", cfg.Site.URL)
	assert.Equal(t, "https://rss.blog.naver.com/clinicblog.xml", cfg.Feed.RSSURL)
	assert.Equal(t, 10*time.Second, cfg.Feed.FetchTimeout)
	assert.Equal(t, 8, cfg.Feed.ThumbnailConcurrency)
	assert.Equal(t, 50, cfg.Sitemap.PageSize)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTTTL)
	assert.Equal(t, "@every 30m", cfg.Watcher.Schedule)
	assert.Equal(t, "careconnect", cfg.Mongo.DBName)
}

func TestLoadParsesYAMLAndSecrets(t *testing.T) {
	t.Setenv("AUTH_SECRET", "jwt-secret")
	t.Setenv("MAILGUN_DOMAIN", "mg.example.com")
	t.Setenv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092")

	data := []byte(`
site:
  url: "https://example.com/"
feed:
  rss_url: "http://localhost/rss.xml"
  cache_ttl: 90s
sitemap:
  page_size: 500
auth:
  jwt_ttl: 2h
`)
	cfg, err := Load(data)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", cfg.Site.URL)
	assert.Equal(t, "http://localhost/rss.xml", cfg.Feed.RSSURL)
	assert.Equal(t, 90*time.Second, cfg.Feed.CacheTTL)
	assert.Equal(t, 50, cfg.Sitemap.PageSize, "sitemap page size is capped at the posts API maximum")
	assert.Equal(t, 2*time.Hour, cfg.Auth.JWTTTL)
	assert.Equal(t, "jwt-secret", cfg.Secrets.AuthSecret)
	assert.Equal(t, "mg.example.com", cfg.Secrets.MailgunDomain)
	assert.Equal(t, "localhost:9092", cfg.Secrets.KafkaBrokers)
	assert.Equal(t, "CareConnect AI", cfg.Secrets.EmailFromName)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	_, err := Load([]byte("feed: [unclosed"))
	assert.Error(t, err)
}
