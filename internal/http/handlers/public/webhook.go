package public

import (
	"errors"

	handlershared "github.com/tierledger/internal/http/handlers/shared"
	"github.com/tierledger/internal/http/response"
	"github.com/tierledger/internal/models"
	"github.com/tierledger/internal/service"

	"github.com/gin-gonic/gin"
)

// CommissionWebhookRequest 订单系统佣金事件回调载荷
type CommissionWebhookRequest struct {
	OrderID       string       `json:"order_id" binding:"required"`
	ReferringCode string       `json:"referring_code" binding:"required"`
	GrossAmount   models.Money `json:"gross_amount" binding:"required"`
	ProductID     string       `json:"product_id"`
	ProductName   string       `json:"product_name"`
	Quantity      int          `json:"quantity"`
	UnitPrice     models.Money `json:"unit_price"`
	OrderAmount   models.Money `json:"order_amount"`
	CustomerName  string       `json:"customer_name"`
	Delivered     bool         `json:"delivered"`
}

// OrderEventWebhookRequest 订单状态事件回调载荷
type OrderEventWebhookRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	Reason  string `json:"reason"`
}

// PostCommissionEvent 接收佣金事件（订单系统回调）
func (h *Handler) PostCommissionEvent(c *gin.Context) {
	var req CommissionWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}

	entry, err := h.CommissionService.RecordCommission(c.Request.Context(), service.RecordCommissionInput{
		OrderID:       req.OrderID,
		ReferringCode: req.ReferringCode,
		GrossAmount:   req.GrossAmount.Decimal,
		ProductID:     req.ProductID,
		ProductName:   req.ProductName,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice.Decimal,
		OrderAmount:   req.OrderAmount.Decimal,
		CustomerName:  req.CustomerName,
		Delivered:     req.Delivered,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "invalid payload", nil)
		case errors.Is(err, service.ErrParticipantNotFound):
			respondError(c, response.CodeNotFound, "referring code not found", nil)
		case errors.Is(err, service.ErrParticipantDisabled):
			respondError(c, response.CodeConflict, "referring code disabled", nil)
		default:
			respondError(c, response.CodeInternal, "commission event failed", err)
		}
		return
	}

	handlershared.RequestLog(c).Infow("commission_event_recorded",
		"order_id", entry.OrderID,
		"referring_code", entry.ReferringCode,
		"tier_share", entry.TierShare.String(),
	)
	response.Success(c, entry)
}

// PostOrderDelivered 订单确认交付回调：订单下 pending 佣金入账
func (h *Handler) PostOrderDelivered(c *gin.Context) {
	var req OrderEventWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}

	credited, err := h.CommissionService.ConfirmDelivery(c.Request.Context(), req.OrderID)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(c, response.CodeBadRequest, "invalid payload", nil)
			return
		}
		respondError(c, response.CodeInternal, "confirm delivery failed", err)
		return
	}
	response.Success(c, gin.H{"order_id": req.OrderID, "credited_count": credited})
}

// PostOrderCancelled 订单取消/退款回调：订单下 pending 佣金作废
func (h *Handler) PostOrderCancelled(c *gin.Context) {
	var req OrderEventWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}

	rejected, err := h.CommissionService.CancelOrder(c.Request.Context(), req.OrderID, req.Reason)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(c, response.CodeBadRequest, "invalid payload", nil)
			return
		}
		respondError(c, response.CodeInternal, "cancel order failed", err)
		return
	}
	response.Success(c, gin.H{"order_id": req.OrderID, "rejected_count": rejected})
}
