package dto

// ErrorResponseDTO 는 인증 계열 에러 응답 형식이다.
type ErrorResponseDTO struct {
	Error string `json:"error" example:"invalid_token"`
}

// MessageResponseDTO 는 사이트 API 공통 메시지 응답 형식이다.
type MessageResponseDTO struct {
	Message string `json:"message" example:"Method not allowed"`
}
