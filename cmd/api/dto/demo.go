package dto

// DemoRequestDTO 는 데모 신청 폼 요청 본문이다.
type DemoRequestDTO struct {
	Name         string `json:"name" example:"김철수"`
	HospitalName string `json:"hospitalName" example:"서울치과"`
	Email        string `json:"email" example:"kim@clinic.kr"`
	Phone        string `json:"phone" example:"010-1234-5678"`
	Message      string `json:"message,omitempty" example:"AI 상담 도입을 검토 중입니다."`
}

type DemoResponseDTO struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"데모 신청이 완료되었습니다."`
}

// DemoValidationErrorDTO 는 필드별 한국어 검증 메시지를 담는다.
type DemoValidationErrorDTO struct {
	Success bool              `json:"success" example:"false"`
	Message string            `json:"message" example:"입력값을 확인해주세요."`
	Errors  map[string]string `json:"errors"`
}
