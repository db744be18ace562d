package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wuliu-next/internal/http/response"
)

// GetSettings 获取全局设置
func (h *Handler) GetSettings(c *gin.Context) {
	setting, err := h.SettingService.Get()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, setting)
}

// UpdateSettingsRequest 更新全局设置请求
type UpdateSettingsRequest struct {
	CompanyName        string          `json:"company_name" binding:"required"`
	HandlingFeeRatio   decimal.Decimal `json:"handling_fee_ratio" binding:"required"`
	CustomerScoreRatio decimal.Decimal `json:"customer_score_ratio" binding:"required"`
}

// UpdateSettings 更新全局设置
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	setting, err := h.SettingService.Update(req.CompanyName, req.HandlingFeeRatio, req.CustomerScoreRatio)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, setting)
}
