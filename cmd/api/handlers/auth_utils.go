package handlers

import (
	"github.com/gin-gonic/gin"

	"careconnect/cmd/api/auth"
	"careconnect/cmd/api/services"
)

// requireUserCodeFromHeader 는 Authorization 헤더의 JWT 를 파싱해 user_code 를 꺼낸다.
// 실패하면 401 응답을 내려주고 false 를 반환한다.
func requireUserCodeFromHeader(c *gin.Context, authSvc *services.AuthService) (string, bool) {
	token, err := auth.ExtractBearerToken(c)
	if err != nil {
		auth.AbortWithUnauthorized(c, err)
		return "", false
	}

	userCode, _, err := authSvc.ParseAccessToken(token)
	if err != nil {
		auth.AbortWithUnauthorized(c, errInvalidToken)
		return "", false
	}

	return userCode, true
}
