package dto

type CalculatorRequestDTO struct {
	MonthlyPatients int64 `json:"monthlyPatients" example:"500"`
	AvgRevenue      int64 `json:"avgRevenue" example:"150000"`
	MarketingCost   int64 `json:"marketingCost" example:"5000000"`
	ConsultantCount int64 `json:"consultantCount" example:"3"`
	AvgConsultTime  int64 `json:"avgConsultTime" example:"15"`
	ConversionRate  int64 `json:"conversionRate" example:"30"`
	AdChannels      int64 `json:"adChannels" example:"3"`
}

type CalculatorResponseDTO struct {
	NewPatients       int64   `json:"newPatients" example:"175"`
	CostSavings       int64   `json:"costSavings" example:"2000000"`
	AdditionalRevenue int64   `json:"additionalRevenue" example:"26250000"`
	ROI               int64   `json:"roi" example:"1313"`
	TimesSaved        int64   `json:"timesSaved" example:"120"`
	EfficiencyGain    int64   `json:"efficiencyGain" example:"45"`
	MonthlyGrowth     []int64 `json:"monthlyGrowth"`
}
