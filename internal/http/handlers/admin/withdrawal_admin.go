package admin

import (
	"errors"
	"strconv"

	handlershared "github.com/tierledger/internal/http/handlers/shared"
	"github.com/tierledger/internal/http/response"
	"github.com/tierledger/internal/repository"
	"github.com/tierledger/internal/service"

	"github.com/gin-gonic/gin"
)

// WithdrawalApproveRequest 提现批准载荷
type WithdrawalApproveRequest struct {
	Notes string `json:"notes"`
}

// WithdrawalRejectRequest 提现驳回载荷，驳回原因必填
type WithdrawalRejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// WithdrawalMarkPaidRequest 打款完成登记载荷
type WithdrawalMarkPaidRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
}

// GetWithdrawals 获取提现申请列表 (Admin)
func (h *Handler) GetWithdrawals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.WithdrawalService.List(repository.WithdrawalListFilter{
		Page:            page,
		PageSize:        pageSize,
		ParticipantCode: c.Query("participant_code"),
		Status:          c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "withdrawal fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetWithdrawal 获取提现申请详情 (Admin)
func (h *Handler) GetWithdrawal(c *gin.Context) {
	id := parseIDParam(c)
	if id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return
	}
	row, err := h.WithdrawalService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "withdrawal not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "withdrawal fetch failed", err)
		return
	}
	response.Success(c, row)
}

// PostWithdrawalApprove 批准提现申请 (Admin)
func (h *Handler) PostWithdrawalApprove(c *gin.Context) {
	adminName, ok := handlershared.GetContextString(c, "admin_name")
	if !ok {
		return
	}
	id := parseIDParam(c)
	if id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return
	}

	var req WithdrawalApproveRequest
	_ = c.ShouldBindJSON(&req)

	row, err := h.WithdrawalService.Approve(c.Request.Context(), id, adminName, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "withdrawal not found", nil)
		case errors.Is(err, service.ErrAlreadyProcessed):
			respondError(c, response.CodeConflict, "withdrawal already processed", nil)
		case errors.Is(err, service.ErrInsufficientBalance):
			respondError(c, response.CodeConflict, "insufficient available balance", nil)
		default:
			respondError(c, response.CodeInternal, "withdrawal approve failed", err)
		}
		return
	}

	handlershared.RequestLog(c).Infow("withdrawal_approved",
		"withdrawal_id", row.ID,
		"reference_no", row.ReferenceNo,
		"reviewed_by", adminName,
	)
	response.Success(c, row)
}

// PostWithdrawalReject 驳回提现申请 (Admin)
func (h *Handler) PostWithdrawalReject(c *gin.Context) {
	adminName, ok := handlershared.GetContextString(c, "admin_name")
	if !ok {
		return
	}
	id := parseIDParam(c)
	if id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return
	}

	var req WithdrawalRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "reject reason required", err)
		return
	}

	row, err := h.WithdrawalService.Reject(c.Request.Context(), id, adminName, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "withdrawal not found", nil)
		case errors.Is(err, service.ErrAlreadyProcessed):
			respondError(c, response.CodeConflict, "withdrawal already processed", nil)
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "reject reason required", nil)
		default:
			respondError(c, response.CodeInternal, "withdrawal reject failed", err)
		}
		return
	}
	response.Success(c, row)
}

// PostWithdrawalMarkPaid 登记提现打款完成 (Admin)
func (h *Handler) PostWithdrawalMarkPaid(c *gin.Context) {
	adminName, ok := handlershared.GetContextString(c, "admin_name")
	if !ok {
		return
	}
	id := parseIDParam(c)
	if id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return
	}

	var req WithdrawalMarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}

	row, err := h.WithdrawalService.MarkPaid(c.Request.Context(), id, req.TransactionID, adminName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "withdrawal not found", nil)
		case errors.Is(err, service.ErrNotApproved):
			respondError(c, response.CodeConflict, "withdrawal not approved", nil)
		case errors.Is(err, service.ErrValidation):
			respondError(c, response.CodeBadRequest, "transaction id required", nil)
		default:
			respondError(c, response.CodeInternal, "mark paid failed", err)
		}
		return
	}

	handlershared.RequestLog(c).Infow("withdrawal_marked_paid",
		"withdrawal_id", row.ID,
		"transaction_id", row.TransactionID,
		"operated_by", adminName,
	)
	response.Success(c, row)
}

func parseIDParam(c *gin.Context) uint {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
