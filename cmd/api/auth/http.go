package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"careconnect/internal/trace"
)

var (
	ErrMissingHeader = errors.New("missing_authorization_header")
	ErrInvalidFormat = errors.New("invalid_authorization_header")
	ErrEmptyToken    = errors.New("empty_token")
	ErrStateMismatch = errors.New("state_mismatch")
)

const (
	stateCookiePrefix = "cc_oauth_state_"
	stateCookieMaxAge = 10 * 60
)

// ExtractBearerToken 은 Authorization 헤더에서 Bearer 토큰을 꺼낸다.
func ExtractBearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrMissingHeader
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrInvalidFormat
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

// AbortWithUnauthorized 는 401 과 error JSON 으로 요청을 중단한다.
func AbortWithUnauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
}

// IssueState 는 CSRF 방지용 state 값을 만들어 provider 별 쿠키에 저장하고 반환한다.
func IssueState(c *gin.Context, provider string) string {
	state := trace.GenerateID()
	secure := c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookiePrefix+provider, state, stateCookieMaxAge, "/api/auth", "", secure, true)
	return state
}

// VerifyState 는 콜백의 state 가 쿠키 값과 같은지 확인하고 쿠키를 지운다.
func VerifyState(c *gin.Context, provider, state string) error {
	name := stateCookiePrefix + provider
	stored, err := c.Cookie(name)
	c.SetCookie(name, "", -1, "/api/auth", "", false, true)
	if err != nil || stored == "" || state == "" {
		return ErrStateMismatch
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(state)) != 1 {
		return ErrStateMismatch
	}
	return nil
}
