package public

import (
	"errors"
	"strconv"

	handlershared "github.com/tierledger/internal/http/handlers/shared"
	"github.com/tierledger/internal/http/response"
	"github.com/tierledger/internal/repository"
	"github.com/tierledger/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMyBalance 查询当前参与者余额全景
func (h *Handler) GetMyBalance(c *gin.Context) {
	code, ok := handlershared.GetContextString(c, "participant_code")
	if !ok {
		return
	}

	summary, err := h.BalanceService.Summary(code)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(c, response.CodeBadRequest, "invalid participant", nil)
			return
		}
		respondError(c, response.CodeInternal, "balance query failed", err)
		return
	}
	response.Success(c, summary)
}

// GetMyLedger 查询当前参与者佣金流水
func (h *Handler) GetMyLedger(c *gin.Context) {
	code, ok := handlershared.GetContextString(c, "participant_code")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	entries, total, err := h.CommissionService.ListEntries(repository.LedgerListFilter{
		Page:          page,
		PageSize:      pageSize,
		ReferringCode: code,
		Status:        c.Query("status"),
		OrderID:       c.Query("order_id"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "ledger query failed", err)
		return
	}
	response.SuccessWithPage(c, entries, response.BuildPagination(page, pageSize, total))
}
