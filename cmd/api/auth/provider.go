package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"careconnect/config"
)

const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

var ErrInvalidProvider = errors.New("invalid_provider")

// UserInfo 는 provider 에 관계없이 공통으로 쓰는 사용자 프로필이다.
type UserInfo struct {
	Provider string
	Sub      string
	Email    string
	Name     string
	Picture  string
}

// Provider 는 OAuth2 authorization code flow 를 제공하는 소셜 로그인 공급자다.
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchUserInfo(ctx context.Context, token *oauth2.Token) (UserInfo, error)
}

// OAuthProvider 는 oauth2.Config 와 userinfo 엔드포인트로 Provider 를 구현한다.
type OAuthProvider struct {
	name        string
	config      *oauth2.Config
	userInfoURL string
	decode      func(body []byte) (UserInfo, error)
}

func (p *OAuthProvider) Name() string { return p.name }

func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.config.Exchange(ctx, code)
}

func (p *OAuthProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (UserInfo, error) {
	httpClient := p.config.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return UserInfo{}, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return UserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return UserInfo{}, fmt.Errorf("%s userinfo: unexpected status %d", p.name, resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return UserInfo{}, err
	}
	info, err := p.decode(raw)
	if err != nil {
		return UserInfo{}, err
	}
	info.Provider = p.name
	if info.Sub == "" {
		return UserInfo{}, fmt.Errorf("%s userinfo: missing subject", p.name)
	}
	return info, nil
}

type googleUserInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func decodeGoogle(body []byte) (UserInfo, error) {
	var g googleUserInfo
	if err := json.Unmarshal(body, &g); err != nil {
		return UserInfo{}, err
	}
	return UserInfo{Sub: g.Sub, Email: g.Email, Name: g.Name, Picture: g.Picture}, nil
}

type facebookUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

func decodeFacebook(body []byte) (UserInfo, error) {
	var f facebookUserInfo
	if err := json.Unmarshal(body, &f); err != nil {
		return UserInfo{}, err
	}
	return UserInfo{Sub: f.ID, Email: f.Email, Name: f.Name, Picture: f.Picture.Data.URL}, nil
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	return &OAuthProvider{
		name: ProviderGoogle,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: "https://www.googleapis.com/oauth2/v3/userinfo",
		decode:      decodeGoogle,
	}
}

func NewFacebookProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	return &OAuthProvider{
		name: ProviderFacebook,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     facebook.Endpoint,
		},
		userInfoURL: "https://graph.facebook.com/me?fields=id,name,email,picture.type(large)",
		decode:      decodeFacebook,
	}
}

// Registry 는 이름으로 Provider 를 찾는다.
type Registry map[string]Provider

func (r Registry) Get(name string) (Provider, error) {
	p, ok := r[name]
	if !ok {
		return nil, ErrInvalidProvider
	}
	return p, nil
}

// NewRegistryFromConfig 는 client id/secret 이 설정된 provider 만 등록한다.
// redirect_uri 는 {AUTH_CALLBACK_BASE_URL}/api/auth/callback/{provider} 이다.
func NewRegistryFromConfig(cfg config.AppConfig) Registry {
	s := cfg.Secrets
	callback := func(name string) string {
		return s.AuthCallbackBaseURL + "/api/auth/callback/" + name
	}

	r := Registry{}
	if s.GoogleClientID != "" && s.GoogleClientSecret != "" {
		r[ProviderGoogle] = NewGoogleProvider(s.GoogleClientID, s.GoogleClientSecret, callback(ProviderGoogle))
	}
	if s.FacebookClientID != "" && s.FacebookClientSecret != "" {
		r[ProviderFacebook] = NewFacebookProvider(s.FacebookClientID, s.FacebookClientSecret, callback(ProviderFacebook))
	}
	return r
}
