package public

import (
	"errors"
	"strconv"

	handlershared "github.com/tierledger/internal/http/handlers/shared"
	"github.com/tierledger/internal/http/response"
	"github.com/tierledger/internal/models"
	"github.com/tierledger/internal/repository"
	"github.com/tierledger/internal/service"

	"github.com/gin-gonic/gin"
)

// WithdrawalApplyRequest 提现申请载荷
type WithdrawalApplyRequest struct {
	Amount        models.Money `json:"amount" binding:"required"`
	PayoutMethod  string       `json:"payout_method"`
	PayoutAccount string       `json:"payout_account"`
}

// PostMyWithdrawal 提交提现申请
func (h *Handler) PostMyWithdrawal(c *gin.Context) {
	code, ok := handlershared.GetContextString(c, "participant_code")
	if !ok {
		return
	}

	var req WithdrawalApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}

	created, err := h.WithdrawalService.Request(c.Request.Context(), service.WithdrawalRequestInput{
		ParticipantCode: code,
		Amount:          req.Amount.Decimal,
		PayoutMethod:    req.PayoutMethod,
		PayoutAccount:   req.PayoutAccount,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "invalid amount", nil)
		case errors.Is(err, service.ErrBelowMinimum):
			respondError(c, response.CodeBadRequest, "amount below minimum withdrawal", nil)
		case errors.Is(err, service.ErrDuplicatePendingRequest):
			respondError(c, response.CodeConflict, "pending withdrawal already exists", nil)
		case errors.Is(err, service.ErrInsufficientBalance):
			respondError(c, response.CodeConflict, "insufficient available balance", nil)
		case errors.Is(err, service.ErrParticipantNotFound), errors.Is(err, service.ErrParticipantDisabled):
			respondError(c, response.CodeForbidden, "participant not eligible", nil)
		default:
			respondError(c, response.CodeInternal, "withdrawal request failed", err)
		}
		return
	}

	handlershared.RequestLog(c).Infow("withdrawal_requested",
		"participant_code", code,
		"reference_no", created.ReferenceNo,
		"amount", created.RequestedAmount.String(),
	)
	response.Success(c, created)
}

// GetMyWithdrawals 查询当前参与者提现申请记录
func (h *Handler) GetMyWithdrawals(c *gin.Context) {
	code, ok := handlershared.GetContextString(c, "participant_code")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.WithdrawalService.List(repository.WithdrawalListFilter{
		Page:            page,
		PageSize:        pageSize,
		ParticipantCode: code,
		Status:          c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "withdrawal query failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
