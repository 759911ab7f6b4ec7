package admin

import (
	"errors"
	"strconv"
	"time"

	handlershared "github.com/tierledger/internal/http/handlers/shared"
	"github.com/tierledger/internal/http/response"
	"github.com/tierledger/internal/models"
	"github.com/tierledger/internal/repository"
	"github.com/tierledger/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentRecordRequest 打款登记载荷
type PaymentRecordRequest struct {
	RecipientCode string       `json:"recipient_code" binding:"required"`
	GrossAmount   models.Money `json:"gross_amount"`
	FeeAmount     models.Money `json:"fee_amount"`
	Amount        models.Money `json:"amount" binding:"required"`
	TransactionID string       `json:"transaction_id" binding:"required"`
	Notes         string       `json:"notes"`
	PaidAt        string       `json:"paid_at"`
}

// PostPayment 登记一笔线下打款 (Admin)
func (h *Handler) PostPayment(c *gin.Context) {
	adminName, ok := handlershared.GetContextString(c, "admin_name")
	if !ok {
		return
	}

	var req PaymentRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}

	var paidAt time.Time
	if req.PaidAt != "" {
		parsed, err := time.Parse("2006-01-02", req.PaidAt)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid paid_at date", nil)
			return
		}
		paidAt = parsed
	}

	record, err := h.PaymentService.RecordPayment(c.Request.Context(), service.RecordPaymentInput{
		RecipientCode: req.RecipientCode,
		GrossAmount:   req.GrossAmount.Decimal,
		FeeAmount:     req.FeeAmount.Decimal,
		Amount:        req.Amount.Decimal,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
		RecordedBy:    adminName,
		PaidAt:        paidAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "invalid payment fields", nil)
		case errors.Is(err, service.ErrParticipantNotFound):
			respondError(c, response.CodeNotFound, "recipient not found", nil)
		default:
			respondError(c, response.CodeInternal, "payment record failed", err)
		}
		return
	}

	handlershared.RequestLog(c).Infow("payment_recorded",
		"recipient_code", record.RecipientCode,
		"amount", record.Amount.String(),
		"transaction_id", record.TransactionID,
	)
	response.Success(c, record)
}

// GetPayments 获取打款记录列表 (Admin)
func (h *Handler) GetPayments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.PaymentService.ListPayments(repository.PaymentListFilter{
		Page:          page,
		PageSize:      pageSize,
		RecipientCode: c.Query("recipient_code"),
		RecipientTier: c.Query("recipient_tier"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "payment fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetManagementEarnings 获取管理层级团队收益 (Admin)
func (h *Handler) GetManagementEarnings(c *gin.Context) {
	code := c.Param("code")

	earnings, err := h.PaymentService.ComputeManagementEarnings(c.Request.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "code is not a management tier", nil)
		case errors.Is(err, service.ErrParticipantNotFound):
			respondError(c, response.CodeNotFound, "participant not found", nil)
		default:
			respondError(c, response.CodeInternal, "earnings query failed", err)
		}
		return
	}
	response.Success(c, earnings)
}

// GetReconciliation 核对已打款提现与打款记录 (Admin)
func (h *Handler) GetReconciliation(c *gin.Context) {
	discrepancies, err := h.PaymentService.ReconcilePayments(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "reconcile failed", err)
		return
	}
	response.Success(c, gin.H{
		"discrepancy_count": len(discrepancies),
		"discrepancies":     discrepancies,
	})
}
