package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.mongodb.org/mongo-driver/mongo"

	"careconnect/cmd/api/auth"
	"careconnect/cmd/api/dto"
	"careconnect/internal/trace"
	"careconnect/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserStore 는 소셜 로그인 사용자 저장소다. (repositories.UserRepository)
type UserStore interface {
	UpsertByProvider(ctx context.Context, u *models.User) (*models.User, error)
	FindByUserCode(ctx context.Context, code string) (*models.User, error)
}

type AuthService struct {
	providers       auth.Registry
	users           UserStore
	jwtManager      *auth.JWTManager
	successRedirect string
	errorRedirect   string
}

func NewAuthService(providers auth.Registry, users UserStore, jwtManager *auth.JWTManager, successRedirect, errorRedirect string) *AuthService {
	return &AuthService{
		providers:       providers,
		users:           users,
		jwtManager:      jwtManager,
		successRedirect: successRedirect,
		errorRedirect:   errorRedirect,
	}
}

// BuildLoginURL 은 provider 의 인가 URL 을 만든다. 등록되지 않은 provider 면 auth.ErrInvalidProvider 이고
// issueState 는 호출되지 않는다.
func (s *AuthService) BuildLoginURL(provider string, issueState func() string) (string, error) {
	p, err := s.providers.Get(provider)
	if err != nil {
		return "", err
	}
	return p.AuthCodeURL(issueState()), nil
}

// HandleCallback 은 code 를 교환하고 사용자를 저장한 뒤 access token 을 발급한다.
func (s *AuthService) HandleCallback(ctx context.Context, provider, code string) (string, error) {
	p, err := s.providers.Get(provider)
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", errors.New("missing authorization code")
	}

	token, err := p.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%s oauth exchange: %w", provider, err)
	}

	info, err := p.FetchUserInfo(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%s userinfo: %w", provider, err)
	}

	user, err := s.users.UpsertByProvider(ctx, &models.User{
		UserCode:     trace.GenerateID(),
		Provider:     info.Provider,
		ProviderSub:  info.Sub,
		Email:        info.Email,
		Name:         info.Name,
		ProfileImage: info.Picture,
		Role:         auth.RoleUser,
	})
	if err != nil {
		return "", fmt.Errorf("user upsert: %w", err)
	}

	accessToken, err := s.jwtManager.Sign(user.UserCode, user.Role)
	if err != nil {
		return "", fmt.Errorf("jwt sign: %w", err)
	}
	return accessToken, nil
}

// ErrorRedirectURL 은 로그인 실패 시 이동할 URL 이다. reason 은 error 쿼리로 붙는다.
func (s *AuthService) ErrorRedirectURL(reason string) string {
	return appendQuery(s.errorRedirect, "error", reason)
}

func (s *AuthService) SuccessRedirectURL(token string) string {
	return appendQuery(s.successRedirect, "token", token)
}

func (s *AuthService) ParseAccessToken(token string) (string, string, error) {
	return s.jwtManager.Parse(token)
}

func (s *AuthService) GetUserProfile(ctx context.Context, userCode string) (dto.UserProfileDTO, error) {
	u, err := s.users.FindByUserCode(ctx, userCode)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dto.UserProfileDTO{}, ErrUserNotFound
		}
		return dto.UserProfileDTO{}, err
	}
	return dto.UserProfileDTO{
		UserCode:     u.UserCode,
		Provider:     u.Provider,
		Email:        u.Email,
		Name:         u.Name,
		ProfileImage: u.ProfileImage,
		Role:         u.Role,
		CreatedAt:    FormatISOTime(u.CreatedAt),
		LastLoginAt:  FormatISOTime(u.LastLoginAt),
	}, nil
}

func appendQuery(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
