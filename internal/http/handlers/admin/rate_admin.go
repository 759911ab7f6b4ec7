package admin

import (
	"errors"

	handlershared "github.com/tierledger/internal/http/handlers/shared"
	"github.com/tierledger/internal/http/response"
	"github.com/tierledger/internal/models"
	"github.com/tierledger/internal/service"

	"github.com/gin-gonic/gin"
)

// RateUpdateRequest 费率更新载荷
type RateUpdateRequest struct {
	RatePercent models.Money `json:"rate_percent" binding:"required"`
}

// GetRates 获取完整费率表 (Admin)
func (h *Handler) GetRates(c *gin.Context) {
	items, err := h.RateService.ListRates()
	if err != nil {
		respondError(c, response.CodeInternal, "rate fetch failed", err)
		return
	}
	response.Success(c, items)
}

// PutRate 更新层级费率 (Admin)
func (h *Handler) PutRate(c *gin.Context) {
	adminName, ok := handlershared.GetContextString(c, "admin_name")
	if !ok {
		return
	}
	tier := c.Param("tier")

	var req RateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}

	row, err := h.RateService.UpdateRate(c.Request.Context(), tier, req.RatePercent.Decimal, adminName)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(c, response.CodeBadRequest, "invalid tier or rate", nil)
			return
		}
		respondError(c, response.CodeInternal, "rate update failed", err)
		return
	}

	handlershared.RequestLog(c).Infow("rate_updated",
		"tier", row.Tier,
		"rate_percent", row.RatePercent.String(),
		"updated_by", adminName,
	)
	response.Success(c, row)
}
