package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"careconnect/cmd/api/dto"
	"careconnect/cmd/api/services"
	"careconnect/internal/logger"
)

// RequestDemoHandler godoc
// @Summary      데모 신청
// @Description  데모 신청서를 검증/저장하고 운영팀에 메일로 알립니다.
// @Tags         forms
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DemoRequestDTO  true  "신청서"
// @Success      200  {object}  dto.DemoResponseDTO
// @Failure      400  {object}  dto.DemoValidationErrorDTO
// @Failure      500  {object}  dto.DemoResponseDTO
// @Router       /request-demo [post]
func RequestDemoHandler(svc *services.DemoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in dto.DemoRequestDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, dto.DemoValidationErrorDTO{
				Success: false,
				Message: services.DemoValidationMessage,
				Errors:  map[string]string{},
			})
			return
		}

		err := svc.Submit(c.Request.Context(), in, c.ClientIP())
		if err != nil {
			var verr *services.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusBadRequest, dto.DemoValidationErrorDTO{
					Success: false,
					Message: services.DemoValidationMessage,
					Errors:  verr.Fields,
				})
				return
			}
			logger.ErrorWithFields("demo request failed", logger.Fields{
				"error":      err.Error(),
				"request_id": c.Request.Header.Get("X-Request-Id"),
			})
			c.JSON(http.StatusInternalServerError, dto.DemoResponseDTO{Success: false, Message: services.DemoFailureMessage})
			return
		}

		c.JSON(http.StatusOK, dto.DemoResponseDTO{Success: true, Message: services.DemoSuccessMessage})
	}
}

// CalculatorHandler godoc
// @Summary      도입 효과 계산
// @Description  병원 운영 지표로 신규 환자, 비용 절감, ROI 와 12개월 성장률을 추정합니다.
// @Tags         forms
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CalculatorRequestDTO  true  "병원 지표"
// @Success      200  {object}  dto.CalculatorResponseDTO
// @Failure      400  {object}  dto.MessageResponseDTO
// @Router       /calculator [post]
func CalculatorHandler(svc *services.CalculatorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in dto.CalculatorRequestDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, dto.MessageResponseDTO{Message: "Invalid calculator input"})
			return
		}
		if in.MonthlyPatients < 0 || in.AvgRevenue < 0 || in.MarketingCost < 0 || in.ConsultantCount < 0 ||
			in.AvgConsultTime < 0 || in.ConversionRate < 0 || in.AdChannels < 0 {
			c.JSON(http.StatusBadRequest, dto.MessageResponseDTO{Message: "Calculator inputs must not be negative"})
			return
		}
		c.JSON(http.StatusOK, svc.Calculate(in))
	}
}
