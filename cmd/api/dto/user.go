package dto

// UserProfileDTO 는 /api/auth/session 응답 스키마다.
type UserProfileDTO struct {
	UserCode     string `json:"user_code" example:"3f9a0c2e5b7d4e1f8a6b9c0d1e2f3a4b"`
	Provider     string `json:"provider" example:"google"`
	Email        string `json:"email" example:"user@example.com"`
	Name         string `json:"name" example:"홍길동"`
	ProfileImage string `json:"profile_image" example:"https://example.com/avatar.png"`
	Role         string `json:"role" example:"user"`
	CreatedAt    string `json:"created_at" example:"2025-01-01T12:00:00Z"`
	LastLoginAt  string `json:"last_login_at" example:"2025-01-01T12:00:00Z"`
}
