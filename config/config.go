package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging      LoggingConfig      `yaml:"logging"`
	Server       ServerConfig       `yaml:"server"`
	Site         SiteConfig         `yaml:"site"`
	Feed         FeedConfig         `yaml:"feed"`
	Sitemap      SitemapConfig      `yaml:"sitemap"`
	Demo         DemoConfig         `yaml:"demo"`
	Auth         AuthConfig         `yaml:"auth"`
	Watcher      WatcherConfig      `yaml:"watcher"`
	SummaryQuota SummaryQuotaConfig `yaml:"summary_quota"`
	Mongo        MongoConfig        `yaml:"mongo"`
	Kafka        KafkaConfig        `yaml:"kafka"`

	// Secrets 는 config.yaml 이 아니라 환경변수(.env 포함)에서만 읽는다.
	Secrets Secrets `yaml:"-"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr               string   `yaml:"addr"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

type SiteConfig struct {
	URL string `yaml:"url"`
}

// FeedConfig 는 블로그 RSS 수집 설정이다.
type FeedConfig struct {
	BlogID               string        `yaml:"blog_id"`
	RSSURL               string        `yaml:"rss_url"`
	UserAgent            string        `yaml:"user_agent"`
	FetchTimeout         time.Duration `yaml:"fetch_timeout"`
	CacheTTL             time.Duration `yaml:"cache_ttl"`
	ThumbnailConcurrency int           `yaml:"thumbnail_concurrency"`
	// RenderFallback 이 true 이면 OG 메타를 찾지 못한 글을 headless chrome 으로 한 번 더 렌더링한다.
	RenderFallback bool `yaml:"render_fallback"`
}

type SitemapConfig struct {
	PageSize int `yaml:"page_size"`
}

type DemoConfig struct {
	NotifyTo          string `yaml:"notify_to"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type AuthConfig struct {
	SuccessRedirect string        `yaml:"success_redirect"`
	ErrorRedirect   string        `yaml:"error_redirect"`
	JWTIssuer       string        `yaml:"jwt_issuer"`
	JWTTTL          time.Duration `yaml:"jwt_ttl"`
}

type WatcherConfig struct {
	Schedule  string `yaml:"schedule"`
	Summarize bool   `yaml:"summarize"`
}

// SummaryQuotaConfig 는 게시글 분류용 LLM 호출에 대한 속도/일일 한도를 정의한다.
// 0 이하면 제한 없음으로 간주한다.
type SummaryQuotaConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

type MongoConfig struct {
	DBName string `yaml:"db_name"`
}

type KafkaConfig struct {
	Partitions int `yaml:"partitions"`
}

// Secrets 는 배포 환경마다 달라지는 자격 증명이다.
type Secrets struct {
	MongoURI string `env:"MONGO_URI"`

	KafkaBrokers string `env:"KAFKA_BOOTSTRAP_SERVERS"`
	KafkaGroupID string `env:"KAFKA_GROUP_ID" envDefault:"careconnect"`

	GoogleClientID       string `env:"AUTH_GOOGLE_ID"`
	GoogleClientSecret   string `env:"AUTH_GOOGLE_SECRET"`
	FacebookClientID     string `env:"AUTH_FACEBOOK_ID"`
	FacebookClientSecret string `env:"AUTH_FACEBOOK_SECRET"`
	AuthSecret           string `env:"AUTH_SECRET"`
	// AuthCallbackBaseURL 은 OAuth redirect_uri 의 prefix 이다. (예: https://api.careconnect-ai.com)
	AuthCallbackBaseURL string `env:"AUTH_CALLBACK_BASE_URL"`

	MailgunDomain    string `env:"MAILGUN_DOMAIN"`
	MailgunAPIKey    string `env:"MAILGUN_API_KEY"`
	EmailFromAddress string `env:"EMAIL_FROM_ADDRESS"`
	EmailFromName    string `env:"EMAIL_FROM_NAME" envDefault:"CareConnect AI"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	ChromePath string `env:"CHROME_PATH" envDefault:"/usr/bin/chromium-browser"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	c, err := Load(data)
	if err != nil {
		panic(err)
	}
	config = c
}

// Load 는 config.yaml 내용과 현재 환경변수로 AppConfig 를 만든다.
func Load(data []byte) (*AppConfig, error) {
	var c AppConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", CONFIG_FILE, err)
	}
	if err := env.Parse(&c.Secrets); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	c.Site.URL = strings.TrimRight(c.Site.URL, "/")
	if c.Site.URL == "" {
		c.Site.URL = "https://careconnect-ai.com"
	}
	if c.Feed.BlogID == "" {
		c.Feed.BlogID = "meditravelconnect"
	}
	if c.Feed.RSSURL == "" {
		c.Feed.RSSURL = fmt.Sprintf("https://rss.blog.naver.com/%s.xml", c.Feed.BlogID)
	}
	if c.Feed.UserAgent == "" {
		c.Feed.UserAgent = "CareConnectAI/1.0 (+https://careconnect.ai)"
	}
	if c.Feed.FetchTimeout <= 0 {
		c.Feed.FetchTimeout = 10 * time.Second
	}
	if c.Feed.CacheTTL < 0 {
		c.Feed.CacheTTL = 0
	}
	if c.Feed.ThumbnailConcurrency <= 0 {
		c.Feed.ThumbnailConcurrency = 8
	}
	if c.Sitemap.PageSize <= 0 || c.Sitemap.PageSize > 50 {
		c.Sitemap.PageSize = 50
	}
	if c.Auth.JWTIssuer == "" {
		c.Auth.JWTIssuer = "careconnect"
	}
	if c.Auth.JWTTTL <= 0 {
		c.Auth.JWTTTL = 24 * time.Hour
	}
	if c.Watcher.Schedule == "" {
		c.Watcher.Schedule = "@every 30m"
	}
	if c.Mongo.DBName == "" {
		c.Mongo.DBName = "careconnect"
	}
	if c.Kafka.Partitions <= 0 {
		c.Kafka.Partitions = 3
	}
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
