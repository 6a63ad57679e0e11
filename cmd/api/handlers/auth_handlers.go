package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"careconnect/cmd/api/auth"
	"careconnect/cmd/api/dto"
	"careconnect/cmd/api/services"
	"careconnect/internal/logger"
)

var errInvalidToken = errors.New("invalid_token")

// SignInHandler godoc
// @Summary      소셜 로그인 시작
// @Description  provider 별 state 쿠키를 발급한 뒤 OAuth 인가 페이지로 리다이렉트합니다.
// @Tags         auth
// @Param        provider  path  string  true  "google | facebook"
// @Success      302  {string}  string  "provider 인가 페이지로 리다이렉트"
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /auth/signin/{provider} [get]
func SignInHandler(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		// state 쿠키는 provider 가 확인된 뒤에만 발급된다.
		loginURL, err := authSvc.BuildLoginURL(provider, func() string {
			return auth.IssueState(c, provider)
		})
		if err != nil {
			c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "unknown_provider"})
			return
		}
		logger.InfoWithFields("redirect to oauth provider", logger.Fields{
			"provider":   provider,
			"request_id": c.Request.Header.Get("X-Request-Id"),
			"span_id":    c.Request.Header.Get("X-Span-Id"),
		})
		c.Redirect(http.StatusFound, loginURL)
	}
}

// CallbackHandler godoc
// @Summary      소셜 로그인 콜백
// @Description  state 를 검증하고 code 를 교환해 사용자를 저장한 뒤 JWT 를 붙여 로그인 완료 페이지로 보냅니다. 실패하면 에러 페이지로 보냅니다.
// @Tags         auth
// @Param        provider  path   string  true   "google | facebook"
// @Param        code      query  string  false  "authorization code"
// @Param        state     query  string  false  "state"
// @Success      302  {string}  string  "로그인 완료 또는 에러 페이지로 리다이렉트"
// @Router       /auth/callback/{provider} [get]
func CallbackHandler(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")
		fields := logger.Fields{
			"provider":   provider,
			"request_id": c.Request.Header.Get("X-Request-Id"),
			"span_id":    c.Request.Header.Get("X-Span-Id"),
		}

		if providerErr := c.Query("error"); providerErr != "" {
			fields["error"] = providerErr
			logger.WarnWithFields("oauth provider returned error", fields)
			c.Redirect(http.StatusFound, authSvc.ErrorRedirectURL("OAuthCallback"))
			return
		}

		if err := auth.VerifyState(c, provider, c.Query("state")); err != nil {
			fields["error"] = err.Error()
			logger.ErrorWithFields("oauth callback invalid state", fields)
			c.Redirect(http.StatusFound, authSvc.ErrorRedirectURL("OAuthCallback"))
			return
		}

		accessToken, err := authSvc.HandleCallback(c.Request.Context(), provider, c.Query("code"))
		if err != nil {
			fields["error"] = err.Error()
			logger.ErrorWithFields("oauth callback failed", fields)
			reason := "OAuthCallback"
			if errors.Is(err, auth.ErrInvalidProvider) {
				reason = "OAuthSignin"
			}
			c.Redirect(http.StatusFound, authSvc.ErrorRedirectURL(reason))
			return
		}

		logger.InfoWithFields("oauth sign-in completed", fields)
		c.Redirect(http.StatusFound, authSvc.SuccessRedirectURL(accessToken))
	}
}

// SessionHandler godoc
// @Summary      현재 로그인 세션
// @Description  Authorization 헤더의 JWT 를 검증하고 사용자 프로필을 반환합니다.
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.UserProfileDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /auth/session [get]
func SessionHandler(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCode, ok := requireUserCodeFromHeader(c, authSvc)
		if !ok {
			return
		}

		profile, err := authSvc.GetUserProfile(c.Request.Context(), userCode)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "user_not_found"})
				return
			}
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: "failed_to_load_profile"})
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}
