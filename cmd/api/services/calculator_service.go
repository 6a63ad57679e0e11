package services

import (
	"math"

	"careconnect/cmd/api/dto"
)

const (
	patientImprovementRate = 0.35
	costReductionRate      = 0.4
	efficiencyGainPercent  = 45
	aiMonthlyCost          = 2_000_000
	hoursSavedPerConsult   = 40
	minimumROIPercent      = 150
	growthMonths           = 12
)

type CalculatorService struct{}

func NewCalculatorService() *CalculatorService {
	return &CalculatorService{}
}

// Calculate 는 도입 효과 추정치를 계산한다. 입력이 같으면 결과도 같다.
func (s *CalculatorService) Calculate(in dto.CalculatorRequestDTO) dto.CalculatorResponseDTO {
	newPatients := roundHalfUp(float64(in.MonthlyPatients) * patientImprovementRate)
	costSavings := roundHalfUp(float64(in.MarketingCost) * costReductionRate)
	additionalRevenue := newPatients * in.AvgRevenue

	roi := roundHalfUp(float64(additionalRevenue+costSavings-aiMonthlyCost) / aiMonthlyCost * 100)
	if roi < minimumROIPercent {
		roi = minimumROIPercent
	}

	growth := make([]int64, growthMonths)
	for m := 1; m <= growthMonths; m++ {
		growth[m-1] = min(100, int64(20+6*m))
	}

	return dto.CalculatorResponseDTO{
		NewPatients:       newPatients,
		CostSavings:       costSavings,
		AdditionalRevenue: additionalRevenue,
		ROI:               roi,
		TimesSaved:        in.ConsultantCount * hoursSavedPerConsult,
		EfficiencyGain:    efficiencyGainPercent,
		MonthlyGrowth:     growth,
	}
}

// roundHalfUp 은 음수에서도 +∞ 방향으로 반올림한다.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
